package store

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
	"github.com/noah-isme/college-catalog/internal/service"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

const catalogStoreName = "catalog"

const (
	sliceColleges            = "colleges"
	sliceCollegesWithCourses = "colleges_with_courses"
)

// Snapshot cache keys for the two catalog views.
const (
	SnapshotKeyPrefix              = "catalog:"
	SnapshotKeyColleges            = "catalog:colleges"
	SnapshotKeyCollegesWithCourses = "catalog:colleges:courses"
)

// CatalogTransport is the remote side of the catalog store.
type CatalogTransport interface {
	ListColleges(ctx context.Context) ([]models.College, error)
	ListCollegesWithCourses(ctx context.Context) ([]models.CollegeCourseItem, error)
	CreateCollege(ctx context.Context, req dto.CreateCollegeRequest) (*models.CreatedCollege, error)
	AddCourse(ctx context.Context, req dto.AddCourseRequest) (*models.Course, error)
}

// SnapshotCache persists fetched views between processes.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// CatalogSnapshot is a copy of the catalog store state. Error is empty when no error
// is displayed.
type CatalogSnapshot struct {
	Colleges            []models.College
	CollegesWithCourses []models.CollegeCourseItem
	Loading             bool
	Error               string
}

// CatalogStore owns the colleges view and the colleges-with-courses view. The two
// views are fetched independently and may disagree until both are re-fetched.
type CatalogStore struct {
	transport     CatalogTransport
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *service.MetricsService
	cache         SnapshotCache
	refreshJoined bool
	life          lifetime
	listeners     listeners[CatalogSnapshot]

	mu                  sync.Mutex
	colleges            []models.College
	collegesWithCourses []models.CollegeCourseItem
	inflight            int
	err                 string
	generations         map[string]uint64
}

// CatalogOption customises a CatalogStore.
type CatalogOption func(*CatalogStore)

// WithCatalogLogger sets the logger.
func WithCatalogLogger(l *zap.Logger) CatalogOption {
	return func(s *CatalogStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalogMetrics records store actions.
func WithCatalogMetrics(m *service.MetricsService) CatalogOption {
	return func(s *CatalogStore) { s.metrics = m }
}

// WithSnapshotCache writes every applied fetch to cache and enables Hydrate.
func WithSnapshotCache(c SnapshotCache) CatalogOption {
	return func(s *CatalogStore) { s.cache = c }
}

// WithJoinedRefresh makes successful writes re-fetch the views they affect:
// CreateCollege refreshes both views, AddCourse refreshes the joined view.
func WithJoinedRefresh(enabled bool) CatalogOption {
	return func(s *CatalogStore) { s.refreshJoined = enabled }
}

// WithCatalogValidator shares a validator instance.
func WithCatalogValidator(v *validator.Validate) CatalogOption {
	return func(s *CatalogStore) {
		if v != nil {
			s.validator = v
		}
	}
}

// NewCatalogStore constructs an empty CatalogStore.
func NewCatalogStore(transport CatalogTransport, opts ...CatalogOption) *CatalogStore {
	s := &CatalogStore{
		transport:           transport,
		validator:           validator.New(),
		logger:              zap.NewNop(),
		life:                newLifetime(),
		colleges:            []models.College{},
		collegesWithCourses: []models.CollegeCourseItem{},
		generations:         make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *CatalogStore) Snapshot() CatalogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CatalogStore) snapshotLocked() CatalogSnapshot {
	return CatalogSnapshot{
		Colleges:            append([]models.College(nil), s.colleges...),
		CollegesWithCourses: append([]models.CollegeCourseItem(nil), s.collegesWithCourses...),
		Loading:             s.inflight > 0,
		Error:               s.err,
	}
}

// Colleges returns a copy of the colleges view.
func (s *CatalogStore) Colleges() []models.College {
	return s.Snapshot().Colleges
}

// CollegesWithCourses returns a copy of the joined view.
func (s *CatalogStore) CollegesWithCourses() []models.CollegeCourseItem {
	return s.Snapshot().CollegesWithCourses
}

// Loading reports whether any action is in flight.
func (s *CatalogStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the displayed error message, or "" when there is none.
func (s *CatalogStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetError overrides the displayed error; an empty message clears it.
func (s *CatalogStore) SetError(message string) {
	s.mu.Lock()
	s.err = message
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)
}

// ClearError removes the displayed error without fetching.
func (s *CatalogStore) ClearError() {
	s.SetError("")
}

// Subscribe registers fn to receive a snapshot after every state change.
func (s *CatalogStore) Subscribe(fn func(CatalogSnapshot)) func() {
	return s.listeners.add(fn)
}

// Close aborts in-flight calls and rejects further actions.
func (s *CatalogStore) Close() {
	s.life.cancel()
	s.listeners.clear()
}

// FetchColleges replaces the colleges view. Failures are stored, not returned; the
// previous view is kept.
func (s *CatalogStore) FetchColleges(ctx context.Context) {
	s.fetch(ctx, sliceColleges, func(ctx context.Context) (func(), interface{}, error) {
		colleges, err := s.transport.ListColleges(ctx)
		if err != nil {
			return nil, nil, err
		}
		return func() { s.colleges = colleges }, colleges, nil
	})
}

// FetchCollegesWithCourses replaces the joined view with the same contract as
// FetchColleges.
func (s *CatalogStore) FetchCollegesWithCourses(ctx context.Context) {
	s.fetch(ctx, sliceCollegesWithCourses, func(ctx context.Context) (func(), interface{}, error) {
		items, err := s.transport.ListCollegesWithCourses(ctx)
		if err != nil {
			return nil, nil, err
		}
		return func() { s.collegesWithCourses = items }, items, nil
	})
}

// fetch runs load and applies its result only when no newer fetch of the same slice
// was issued meanwhile.
func (s *CatalogStore) fetch(ctx context.Context, slice string, load func(context.Context) (func(), interface{}, error)) {
	ctx, release, err := s.life.bind(ctx)
	if err != nil {
		return
	}
	defer release()

	s.mu.Lock()
	s.generations[slice]++
	gen := s.generations[slice]
	s.inflight++
	s.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)

	apply, value, err := load(ctx)

	s.mu.Lock()
	s.inflight--
	stale := s.generations[slice] != gen
	closed := s.life.closed()
	switch {
	case stale || closed:
	case err != nil:
		s.err = appErrors.Message(err)
	default:
		apply()
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()

	action := "fetch_" + slice
	switch {
	case stale:
		s.metrics.RecordStaleResponse(catalogStoreName, slice)
		s.logger.Debug("discarded superseded response", zap.String("slice", slice), zap.Uint64("generation", gen))
	case err != nil:
		s.logger.Warn("catalog fetch failed", zap.String("slice", slice), zap.Error(err))
	case !closed:
		s.writeSnapshot(ctx, slice, value)
	}
	s.metrics.RecordStoreAction(catalogStoreName, action, outcome(err))
	s.listeners.notify(snap)
}

func (s *CatalogStore) writeSnapshot(ctx context.Context, slice string, value interface{}) {
	if s.cache == nil {
		return
	}
	key := SnapshotKeyColleges
	if slice == sliceCollegesWithCourses {
		key = SnapshotKeyCollegesWithCourses
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
	}
}

// Hydrate seeds views that have never been fetched from the snapshot cache.
func (s *CatalogStore) Hydrate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	var colleges []models.College
	collegesHit, err := s.cache.Get(ctx, SnapshotKeyColleges, &colleges)
	if err != nil {
		s.logger.Warn("snapshot read failed", zap.String("key", SnapshotKeyColleges), zap.Error(err))
	}
	var items []models.CollegeCourseItem
	itemsHit, err := s.cache.Get(ctx, SnapshotKeyCollegesWithCourses, &items)
	if err != nil {
		s.logger.Warn("snapshot read failed", zap.String("key", SnapshotKeyCollegesWithCourses), zap.Error(err))
	}

	s.mu.Lock()
	if collegesHit && s.generations[sliceColleges] == 0 && colleges != nil {
		s.colleges = colleges
	}
	if itemsHit && s.generations[sliceCollegesWithCourses] == 0 && items != nil {
		s.collegesWithCourses = items
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)
}

// CreateCollege registers a college with optional courses. Name and location are
// trimmed; course rows missing a name or fee are dropped. When a college with the same
// name exists the remote attaches the courses to it and returns that college. On
// failure the message is stored and the error returned so the form keeps its fields.
func (s *CatalogStore) CreateCollege(ctx context.Context, name, location string, courses []dto.CourseInput) (*models.CreatedCollege, error) {
	req := dto.NewCreateCollegeRequest(name, location, courses)
	var created *models.CreatedCollege
	err := s.write(ctx, "create_college", req, "College name and location are required", func(ctx context.Context) error {
		var err error
		created, err = s.transport.CreateCollege(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.refreshJoined {
		s.FetchColleges(ctx)
		s.FetchCollegesWithCourses(ctx)
	}
	return created, nil
}

// AddCourse attaches a course to an existing college. The views are not patched;
// callers re-fetch unless joined refresh is enabled.
func (s *CatalogStore) AddCourse(ctx context.Context, collegeID int64, courseName string, fee models.Fee) (*models.Course, error) {
	req := dto.NewAddCourseRequest(collegeID, courseName, fee)
	var course *models.Course
	err := s.write(ctx, "add_course", req, "Course name and fee are required", func(ctx context.Context) error {
		var err error
		course, err = s.transport.AddCourse(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.refreshJoined {
		s.FetchCollegesWithCourses(ctx)
	}
	return course, nil
}

func (s *CatalogStore) write(ctx context.Context, action string, req interface{}, invalidMessage string, do func(context.Context) error) error {
	ctx, release, err := s.life.bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	if verr := s.validator.Struct(req); verr != nil {
		appErr := appErrors.Wrap(verr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, invalidMessage)
		s.SetError(appErr.Message)
		s.metrics.RecordStoreAction(catalogStoreName, action, service.OutcomeFailure)
		return appErr
	}

	s.mu.Lock()
	s.inflight++
	s.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)

	err = do(ctx)

	s.mu.Lock()
	s.inflight--
	if err != nil && !s.life.closed() {
		s.err = appErrors.Message(err)
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("catalog write failed", zap.String("action", action), zap.Error(err))
	}
	s.metrics.RecordStoreAction(catalogStoreName, action, outcome(err))
	s.listeners.notify(snap)
	return err
}
