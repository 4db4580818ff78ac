package nav

import (
	"errors"
	"sync"
)

// Repository defines the concurrency-safe contract for accessing and mutating
// in-memory session state. Every mutation returns the resulting Snapshot so a
// caller can evaluate all per-video decisions against one consistent view.
type Repository interface {
	// ReplaceVideos replaces the whole video list (never merges), resets
	// per-index player state, and applies the given selection.
	ReplaceVideos(videos []VideoItem, sel Selection) Snapshot

	// SetSelection applies the given selection unchanged.
	SetSelection(sel Selection) Snapshot

	// SetPlayerLoaded marks the player at index as loaded (ready) or not.
	// Returns ErrNoSuchPlayer if index is outside the current video list.
	SetPlayerLoaded(index int, loaded bool) (Snapshot, error)

	// SetNotFound writes back per-index not-found flags. Indices outside the
	// current video list are ignored.
	SetNotFound(flags map[int]bool) Snapshot

	// Snapshot returns a consistent copy of the current session state.
	Snapshot() Snapshot
}

// ErrNoSuchPlayer is returned when a player status report names an index
// outside the current video list.
var ErrNoSuchPlayer = errors.New("no player at index")

// InMemoryRepository is a concurrency-safe in-memory implementation of
// Repository. It uses a Store for persistence; by default that is an
// InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
// Useful for testing or for plugging in a different persistence backend.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// ReplaceVideos implements Repository.ReplaceVideos.
func (r *InMemoryRepository) ReplaceVideos(videos []VideoItem, sel Selection) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := &SessionState{
		Videos:    append([]VideoItem(nil), videos...),
		Selection: sel,
		Players:   make([]PlayerState, len(videos)),
	}
	r.store.SetSession(session)
	return snapshotLocked(session)
}

// SetSelection implements Repository.SetSelection.
func (r *InMemoryRepository) SetSelection(sel Selection) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.store.GetSession()
	session.Selection = sel
	return snapshotLocked(session)
}

// SetPlayerLoaded implements Repository.SetPlayerLoaded.
func (r *InMemoryRepository) SetPlayerLoaded(index int, loaded bool) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.store.GetSession()
	if index < 0 || index >= len(session.Players) {
		return snapshotLocked(session), ErrNoSuchPlayer
	}
	session.Players[index].Loaded = loaded
	return snapshotLocked(session), nil
}

// SetNotFound implements Repository.SetNotFound.
func (r *InMemoryRepository) SetNotFound(flags map[int]bool) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.store.GetSession()
	for index, notFound := range flags {
		if index < 0 || index >= len(session.Players) {
			continue
		}
		session.Players[index].NotFound = notFound
	}
	return snapshotLocked(session)
}

// Snapshot implements Repository.Snapshot.
func (r *InMemoryRepository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshotLocked(r.store.GetSession())
}

// snapshotLocked builds a deep-enough copy so callers never alias stored
// slices. Caller must hold r.mu.
func snapshotLocked(session *SessionState) Snapshot {
	return Snapshot{
		Videos:    append([]VideoItem(nil), session.Videos...),
		Selection: session.Selection,
		Players:   append([]PlayerState(nil), session.Players...),
	}
}
