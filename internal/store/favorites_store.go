package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/models"
	"github.com/noah-isme/college-catalog/internal/service"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

const (
	favoritesStoreName = "favorites"
	sliceFavorites     = "favorites"
)

// FavoriteState tags one college in the favorites set.
type FavoriteState int

const (
	FavoriteAbsent FavoriteState = iota
	FavoritePendingAdd
	FavoritePresent
	FavoritePendingRemove
)

func (s FavoriteState) String() string {
	switch s {
	case FavoritePendingAdd:
		return "pending_add"
	case FavoritePresent:
		return "present"
	case FavoritePendingRemove:
		return "pending_remove"
	default:
		return "absent"
	}
}

// Pending reports whether a change is outstanding.
func (s FavoriteState) Pending() bool {
	return s == FavoritePendingAdd || s == FavoritePendingRemove
}

// Favorite reports whether the college is shown as a favorite.
func (s FavoriteState) Favorite() bool {
	return s == FavoritePresent || s == FavoritePendingAdd
}

// FavoritesTransport is the remote side of the favorites store.
type FavoritesTransport interface {
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, collegeID int64) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, collegeID int64) error
}

// FavoritesSnapshot is a copy of the favorites store state. IDs lists favorite
// colleges in insertion order, pending adds included.
type FavoritesSnapshot struct {
	IDs     []int64
	States  map[int64]FavoriteState
	Loading bool
	Error   string
}

// FavoritesStore tracks the current user's favorite colleges with optimistic updates.
type FavoritesStore struct {
	transport FavoritesTransport
	logger    *zap.Logger
	metrics   *service.MetricsService
	life      lifetime
	listeners listeners[FavoritesSnapshot]

	mu         sync.Mutex
	order      []int64
	states     map[int64]FavoriteState
	inflight   int
	err        string
	generation uint64
}

// FavoritesOption customises a FavoritesStore.
type FavoritesOption func(*FavoritesStore)

// WithFavoritesLogger sets the logger.
func WithFavoritesLogger(l *zap.Logger) FavoritesOption {
	return func(s *FavoritesStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFavoritesMetrics records store actions.
func WithFavoritesMetrics(m *service.MetricsService) FavoritesOption {
	return func(s *FavoritesStore) { s.metrics = m }
}

// NewFavoritesStore constructs an empty FavoritesStore.
func NewFavoritesStore(transport FavoritesTransport, opts ...FavoritesOption) *FavoritesStore {
	s := &FavoritesStore{
		transport: transport,
		logger:    zap.NewNop(),
		life:      newLifetime(),
		states:    make(map[int64]FavoriteState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FavoritesStore) snapshotLocked() FavoritesSnapshot {
	snap := FavoritesSnapshot{
		IDs:     make([]int64, 0, len(s.order)),
		States:  make(map[int64]FavoriteState, len(s.states)),
		Loading: s.inflight > 0,
		Error:   s.err,
	}
	for _, id := range s.order {
		state := s.states[id]
		snap.States[id] = state
		if state.Favorite() {
			snap.IDs = append(snap.IDs, id)
		}
	}
	return snap
}

// Snapshot returns a copy of the current state.
func (s *FavoritesStore) Snapshot() FavoritesSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// FavoriteIDs returns favorite colleges in insertion order.
func (s *FavoritesStore) FavoriteIDs() []int64 {
	return s.Snapshot().IDs
}

// State returns the tag for collegeID; unknown ids are FavoriteAbsent.
func (s *FavoritesStore) State(collegeID int64) FavoriteState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[collegeID]
}

// IsFavorite reports whether the college is shown as a favorite.
func (s *FavoritesStore) IsFavorite(collegeID int64) bool {
	return s.State(collegeID).Favorite()
}

// IsPending reports whether a change for the college is outstanding. Views disable
// the toggle while it is.
func (s *FavoritesStore) IsPending(collegeID int64) bool {
	return s.State(collegeID).Pending()
}

// Loading reports whether a list fetch is in flight.
func (s *FavoritesStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the displayed error message.
func (s *FavoritesStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetError overrides the displayed error; an empty message clears it.
func (s *FavoritesStore) SetError(message string) {
	s.mu.Lock()
	s.err = message
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)
}

// ClearError removes the displayed error.
func (s *FavoritesStore) ClearError() {
	s.SetError("")
}

// Subscribe registers fn to receive a snapshot after every state change.
func (s *FavoritesStore) Subscribe(fn func(FavoritesSnapshot)) func() {
	return s.listeners.add(fn)
}

// Close aborts in-flight calls and rejects further actions.
func (s *FavoritesStore) Close() {
	s.life.cancel()
	s.listeners.clear()
}

// FetchFavorites replaces every settled entry with the server list. Pending entries
// keep their state until their own call settles.
func (s *FavoritesStore) FetchFavorites(ctx context.Context) {
	ctx, release, err := s.life.bind(ctx)
	if err != nil {
		return
	}
	defer release()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inflight++
	s.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)

	favorites, err := s.transport.ListFavorites(ctx)

	s.mu.Lock()
	s.inflight--
	stale := s.generation != gen
	closed := s.life.closed()
	switch {
	case stale || closed:
	case err != nil:
		s.err = appErrors.Message(err)
	default:
		s.replaceSettledLocked(favorites)
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()

	switch {
	case stale:
		s.metrics.RecordStaleResponse(favoritesStoreName, sliceFavorites)
		s.logger.Debug("discarded superseded favorites response", zap.Uint64("generation", gen))
	case err != nil:
		s.logger.Warn("favorites fetch failed", zap.Error(err))
	}
	s.metrics.RecordStoreAction(favoritesStoreName, "fetch_favorites", outcome(err))
	s.listeners.notify(snap)
}

func (s *FavoritesStore) replaceSettledLocked(favorites []models.Favorite) {
	order := make([]int64, 0, len(favorites)+len(s.order))
	states := make(map[int64]FavoriteState, len(favorites)+len(s.order))
	for _, id := range s.order {
		if state := s.states[id]; state.Pending() {
			order = append(order, id)
			states[id] = state
		}
	}
	for _, f := range favorites {
		if _, seen := states[f.CollegeID]; seen {
			continue
		}
		order = append(order, f.CollegeID)
		states[f.CollegeID] = FavoritePresent
	}
	s.order = order
	s.states = states
}

// AddFavorite marks the college as favorite optimistically and rolls back when the
// remote rejects it. Adding a settled favorite makes no remote call. Any change still
// outstanding for the college, including an earlier add, fails with ErrTogglePending.
func (s *FavoritesStore) AddFavorite(ctx context.Context, collegeID int64) error {
	return s.change(ctx, collegeID, true)
}

// RemoveFavorite unmarks the college optimistically and restores it when the remote
// rejects the removal. It mirrors AddFavorite for settled and pending states.
func (s *FavoritesStore) RemoveFavorite(ctx context.Context, collegeID int64) error {
	return s.change(ctx, collegeID, false)
}

// Toggle adds the college when it is not a favorite and removes it otherwise.
func (s *FavoritesStore) Toggle(ctx context.Context, collegeID int64) error {
	if s.IsFavorite(collegeID) {
		return s.RemoveFavorite(ctx, collegeID)
	}
	return s.AddFavorite(ctx, collegeID)
}

func (s *FavoritesStore) change(ctx context.Context, collegeID int64, add bool) error {
	action, pending, settled, previous := "remove_favorite", FavoritePendingRemove, FavoriteAbsent, FavoritePresent
	if add {
		action, pending, settled, previous = "add_favorite", FavoritePendingAdd, FavoritePresent, FavoriteAbsent
	}

	ctx, release, err := s.life.bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	current := s.states[collegeID]
	switch {
	case current == settled:
		s.mu.Unlock()
		s.metrics.RecordStoreAction(favoritesStoreName, action, service.OutcomeSkipped)
		return nil
	case current.Pending():
		s.mu.Unlock()
		s.metrics.RecordStoreAction(favoritesStoreName, action, service.OutcomeSkipped)
		return ErrTogglePending
	}
	s.setLocked(collegeID, pending)
	s.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.listeners.notify(snap)

	if add {
		_, err = s.transport.AddFavorite(ctx, collegeID)
	} else {
		err = s.transport.RemoveFavorite(ctx, collegeID)
	}

	s.mu.Lock()
	// A fetch issued before this change settled carries a stale view of it.
	s.generation++
	if s.states[collegeID] == pending {
		if err != nil {
			s.setLocked(collegeID, previous)
		} else {
			s.setLocked(collegeID, settled)
		}
	}
	if err != nil && !s.life.closed() {
		s.err = appErrors.Message(err)
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("favorite change failed", zap.String("action", action), zap.Int64("college_id", collegeID), zap.Error(err))
	}
	s.metrics.RecordStoreAction(favoritesStoreName, action, outcome(err))
	s.listeners.notify(snap)
	return err
}

func (s *FavoritesStore) setLocked(collegeID int64, state FavoriteState) {
	if state == FavoriteAbsent {
		delete(s.states, collegeID)
		for i, id := range s.order {
			if id == collegeID {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
		return
	}
	if _, ok := s.states[collegeID]; !ok {
		s.order = append(s.order, collegeID)
	}
	s.states[collegeID] = state
}
