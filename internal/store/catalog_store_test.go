package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
	"github.com/noah-isme/college-catalog/internal/service"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

type fakeCatalogTransport struct {
	mu    sync.Mutex
	calls map[string]int

	listColleges func(ctx context.Context) ([]models.College, error)
	listJoined   func(ctx context.Context) ([]models.CollegeCourseItem, error)
	create       func(ctx context.Context, req dto.CreateCollegeRequest) (*models.CreatedCollege, error)
	addCourse    func(ctx context.Context, req dto.AddCourseRequest) (*models.Course, error)

	lastCreate    dto.CreateCollegeRequest
	lastAddCourse dto.AddCourseRequest
}

func (f *fakeCatalogTransport) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeCatalogTransport) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalogTransport) ListColleges(ctx context.Context) ([]models.College, error) {
	f.record("list_colleges")
	if f.listColleges == nil {
		return []models.College{}, nil
	}
	return f.listColleges(ctx)
}

func (f *fakeCatalogTransport) ListCollegesWithCourses(ctx context.Context) ([]models.CollegeCourseItem, error) {
	f.record("list_joined")
	if f.listJoined == nil {
		return []models.CollegeCourseItem{}, nil
	}
	return f.listJoined(ctx)
}

func (f *fakeCatalogTransport) CreateCollege(ctx context.Context, req dto.CreateCollegeRequest) (*models.CreatedCollege, error) {
	f.record("create_college")
	f.mu.Lock()
	f.lastCreate = req
	f.mu.Unlock()
	if f.create == nil {
		return &models.CreatedCollege{College: models.College{CollegeID: 1, CollegeName: req.CollegeName, Location: req.Location}}, nil
	}
	return f.create(ctx, req)
}

func (f *fakeCatalogTransport) AddCourse(ctx context.Context, req dto.AddCourseRequest) (*models.Course, error) {
	f.record("add_course")
	f.mu.Lock()
	f.lastAddCourse = req
	f.mu.Unlock()
	if f.addCourse == nil {
		return &models.Course{CourseID: 1, CourseName: req.CourseName, Fee: req.Fee, CollegeID: req.CollegeID}, nil
	}
	return f.addCourse(ctx, req)
}

type memorySnapshotCache struct {
	mu    sync.Mutex
	items map[string][]byte
	err   error
}

func (c *memorySnapshotCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memorySnapshotCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.items == nil {
		c.items = make(map[string][]byte)
	}
	c.items[key] = raw
	return nil
}

func acme() models.College {
	return models.College{CollegeID: 1, CollegeName: "Acme Tech", Location: "New York"}
}

func TestFetchCollegesLoadingWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		close(entered)
		<-release
		return []models.College{acme()}, nil
	}}
	s := NewCatalogStore(tr)
	s.SetError("old failure")

	done := make(chan struct{})
	go func() {
		s.FetchColleges(context.Background())
		close(done)
	}()

	<-entered
	assert.True(t, s.Loading())
	assert.Empty(t, s.Err())

	close(release)
	<-done
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, []models.College{acme()}, snap.Colleges)
	assert.Empty(t, snap.Error)
}

func TestFetchFailureKeepsPreviousViewAndStoresMessage(t *testing.T) {
	fail := false
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	tr := &fakeCatalogTransport{listJoined: func(ctx context.Context) ([]models.CollegeCourseItem, error) {
		if !fail {
			return []models.CollegeCourseItem{{CollegeID: 1, CollegeName: "Acme Tech", Course: "CS", Fee: "100"}}, nil
		}
		entered <- struct{}{}
		<-release
		return nil, appErrors.Clone(appErrors.ErrTransport, "Failed to fetch colleges with courses")
	}}
	s := NewCatalogStore(tr)
	s.FetchCollegesWithCourses(context.Background())
	require.Len(t, s.CollegesWithCourses(), 1)

	fail = true
	done := make(chan struct{})
	go func() {
		s.FetchCollegesWithCourses(context.Background())
		close(done)
	}()
	<-entered
	assert.True(t, s.Loading())
	close(release)
	<-done

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "Failed to fetch colleges with courses", snap.Error)
	assert.Len(t, snap.CollegesWithCourses, 1)
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	first := make(chan struct{})
	firstEntered := make(chan struct{})
	var n int
	var mu sync.Mutex
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		mu.Lock()
		n++
		call := n
		mu.Unlock()
		if call == 1 {
			close(firstEntered)
			<-first
			return []models.College{{CollegeID: 1, CollegeName: "Old"}}, nil
		}
		return []models.College{{CollegeID: 2, CollegeName: "New"}}, nil
	}}
	metrics := service.NewMetricsService()
	s := NewCatalogStore(tr, WithCatalogMetrics(metrics))

	done := make(chan struct{})
	go func() {
		s.FetchColleges(context.Background())
		close(done)
	}()
	<-firstEntered

	s.FetchColleges(context.Background())
	assert.True(t, s.Loading(), "older fetch still in flight")

	close(first)
	<-done

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	require.Len(t, snap.Colleges, 1)
	assert.Equal(t, "New", snap.Colleges[0].CollegeName)
	assert.Equal(t, uint64(1), metrics.Snapshot().StaleResponsesDiscarded)
}

func TestCreateCollegeTrimsAndOmitsIncompleteCourses(t *testing.T) {
	tr := &fakeCatalogTransport{}
	s := NewCatalogStore(tr)

	created, err := s.CreateCollege(context.Background(), "  Acme Tech ", " New York ", []dto.CourseInput{
		{CourseName: "  ", Fee: "100"},
		{CourseName: "CS", Fee: " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Tech", created.CollegeName)
	assert.Equal(t, "New York", created.Location)
	assert.Nil(t, tr.lastCreate.Courses)

	raw, err := json.Marshal(tr.lastCreate)
	require.NoError(t, err)
	assert.JSONEq(t, `{"collegeName":"Acme Tech","location":"New York"}`, string(raw))
}

func TestCreateCollegeKeepsCompleteCourses(t *testing.T) {
	tr := &fakeCatalogTransport{}
	s := NewCatalogStore(tr)

	_, err := s.CreateCollege(context.Background(), "Acme", "NY", []dto.CourseInput{
		{CourseName: " CS ", Fee: " 1500.50 "},
		{CourseName: "", Fee: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []dto.CourseInput{{CourseName: "CS", Fee: "1500.50"}}, tr.lastCreate.Courses)
}

func TestCreateCollegeValidationFailsWithoutRemoteCall(t *testing.T) {
	tr := &fakeCatalogTransport{}
	s := NewCatalogStore(tr)

	_, err := s.CreateCollege(context.Background(), "   ", "NY", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "College name and location are required", s.Err())
	assert.Zero(t, tr.count("create_college"))
	assert.False(t, s.Loading())
}

func TestWriteFailureIsStoredAndReturned(t *testing.T) {
	tr := &fakeCatalogTransport{addCourse: func(ctx context.Context, req dto.AddCourseRequest) (*models.Course, error) {
		return nil, appErrors.FromStatus(http.StatusNotFound, "College not found", nil)
	}}
	s := NewCatalogStore(tr)

	course, err := s.AddCourse(context.Background(), 42, "CS", "100")
	require.Error(t, err)
	assert.Nil(t, course)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "College not found", s.Err())
	assert.False(t, s.Loading())
}

func TestAddCourseTrimsAndRequiresFields(t *testing.T) {
	tr := &fakeCatalogTransport{}
	s := NewCatalogStore(tr)

	_, err := s.AddCourse(context.Background(), 3, " Physics ", " 250 ")
	require.NoError(t, err)
	assert.Equal(t, dto.AddCourseRequest{CollegeID: 3, CourseName: "Physics", Fee: "250"}, tr.lastAddCourse)

	_, err = s.AddCourse(context.Background(), 3, "Physics", "  ")
	require.Error(t, err)
	assert.Equal(t, "Course name and fee are required", s.Err())
	assert.Equal(t, 1, tr.count("add_course"))
}

func TestWritesLeaveViewsUntouchedByDefault(t *testing.T) {
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		return []models.College{acme()}, nil
	}}
	s := NewCatalogStore(tr)
	s.FetchColleges(context.Background())

	_, err := s.CreateCollege(context.Background(), "Beta Institute", "Boston", []dto.CourseInput{{CourseName: "Math", Fee: "10"}})
	require.NoError(t, err)
	_, err = s.AddCourse(context.Background(), 1, "CS", "100")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, []models.College{acme()}, snap.Colleges)
	assert.Empty(t, snap.CollegesWithCourses)
	assert.Equal(t, 1, tr.count("list_colleges"))
	assert.Zero(t, tr.count("list_joined"))
}

func TestJoinedRefreshAfterWrites(t *testing.T) {
	tr := &fakeCatalogTransport{listJoined: func(ctx context.Context) ([]models.CollegeCourseItem, error) {
		return []models.CollegeCourseItem{{CollegeID: 1, CollegeName: "Acme Tech", Course: "CS", Fee: "100"}}, nil
	}}
	s := NewCatalogStore(tr, WithJoinedRefresh(true))

	_, err := s.CreateCollege(context.Background(), "Acme Tech", "NY", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.count("list_colleges"))
	assert.Equal(t, 1, tr.count("list_joined"))

	_, err = s.AddCourse(context.Background(), 1, "CS", "100")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.count("list_colleges"))
	assert.Equal(t, 2, tr.count("list_joined"))
	assert.Len(t, s.CollegesWithCourses(), 1)
}

func TestJoinedRefreshSkippedOnFailure(t *testing.T) {
	tr := &fakeCatalogTransport{create: func(ctx context.Context, req dto.CreateCollegeRequest) (*models.CreatedCollege, error) {
		return nil, appErrors.Clone(appErrors.ErrTransport, "Failed to create college")
	}}
	s := NewCatalogStore(tr, WithJoinedRefresh(true))

	_, err := s.CreateCollege(context.Background(), "Acme", "NY", nil)
	require.Error(t, err)
	assert.Zero(t, tr.count("list_colleges"))
	assert.Equal(t, "Failed to create college", s.Err())
}

func TestCloseCancelsInFlightFetch(t *testing.T) {
	entered := make(chan struct{})
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		close(entered)
		<-ctx.Done()
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "Failed to fetch colleges")
	}}
	s := NewCatalogStore(tr)

	done := make(chan struct{})
	go func() {
		s.FetchColleges(context.Background())
		close(done)
	}()
	<-entered
	s.Close()
	<-done

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	assert.Empty(t, snap.Colleges)

	_, err := s.CreateCollege(context.Background(), "Acme", "NY", nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
	s.FetchColleges(context.Background())
	assert.Equal(t, 1, tr.count("list_colleges"))
}

func TestSubscribeReceivesEveryChange(t *testing.T) {
	s := NewCatalogStore(&fakeCatalogTransport{})
	var mu sync.Mutex
	var seen []bool
	unsubscribe := s.Subscribe(func(snap CatalogSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, snap.Loading)
	})

	s.FetchColleges(context.Background())
	unsubscribe()
	s.FetchColleges(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, seen)
}

func TestSetAndClearError(t *testing.T) {
	s := NewCatalogStore(&fakeCatalogTransport{})
	s.SetError("Please log in")
	assert.Equal(t, "Please log in", s.Err())
	s.ClearError()
	assert.Empty(t, s.Err())
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		return []models.College{acme()}, nil
	}}
	s := NewCatalogStore(tr)
	s.FetchColleges(context.Background())

	snap := s.Snapshot()
	snap.Colleges[0].CollegeName = "mutated"
	assert.Equal(t, "Acme Tech", s.Colleges()[0].CollegeName)
}

func TestHydrateSeedsUnfetchedViews(t *testing.T) {
	cache := &memorySnapshotCache{}
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		return []models.College{acme()}, nil
	}}
	first := NewCatalogStore(tr, WithSnapshotCache(cache))
	first.FetchColleges(context.Background())
	first.Close()

	second := NewCatalogStore(&fakeCatalogTransport{}, WithSnapshotCache(cache))
	second.Hydrate(context.Background())
	assert.Equal(t, []models.College{acme()}, second.Colleges())
	assert.Empty(t, second.CollegesWithCourses())
}

func TestHydrateDoesNotOverwriteFetchedView(t *testing.T) {
	cache := &memorySnapshotCache{}
	require.NoError(t, cache.Set(context.Background(), SnapshotKeyColleges, []models.College{{CollegeID: 9, CollegeName: "Cached"}}))
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		return []models.College{acme()}, nil
	}}
	s := NewCatalogStore(tr)
	s.FetchColleges(context.Background())

	s.cache = cache
	s.Hydrate(context.Background())
	assert.Equal(t, []models.College{acme()}, s.Colleges())
}

func TestSnapshotCacheFailuresAreNotStoreErrors(t *testing.T) {
	cache := &memorySnapshotCache{err: errors.New("disk full")}
	tr := &fakeCatalogTransport{listColleges: func(ctx context.Context) ([]models.College, error) {
		return []models.College{acme()}, nil
	}}
	s := NewCatalogStore(tr, WithSnapshotCache(cache))

	s.Hydrate(context.Background())
	s.FetchColleges(context.Background())
	assert.Empty(t, s.Err())
	assert.Len(t, s.Colleges(), 1)
}
