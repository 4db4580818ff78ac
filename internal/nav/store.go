package nav

// Store is the persistence abstraction for session state.
// Implementations can be in-memory, file-based, or remote.
// The Repository uses Store for all reads and writes; callers of Repository
// do not need to know which Store is used.
type Store interface {
	GetSession() *SessionState
	SetSession(s *SessionState)
}

// InMemoryStore is an in-memory implementation of Store holding a single
// session.
type InMemoryStore struct {
	session *SessionState
}

// NewInMemoryStore returns a new store with an empty session.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{session: &SessionState{}}
}

// GetSession implements Store.GetSession.
func (s *InMemoryStore) GetSession() *SessionState {
	return s.session
}

// SetSession implements Store.SetSession.
func (s *InMemoryStore) SetSession(st *SessionState) {
	s.session = st
}
