package session

import (
	"sync"

	"go.dedis.ch/mpcnet/types"
)

// safeSessionStore implements a thread-safe session store. It also parks
// input contributions that arrive before their session is constructed
// locally. Sessions and parked contributions share one mutex, so a
// contribution is either parked before the session registers, and drained by
// add, or handed the session directly. It can never be stranded between the
// two.
type safeSessionStore struct {
	*sync.Mutex
	store   map[string]*Session
	pending map[string][]types.SessionInputMessage
}

func newSafeSessionStore() *safeSessionStore {
	return &safeSessionStore{
		Mutex:   &sync.Mutex{},
		store:   make(map[string]*Session),
		pending: make(map[string][]types.SessionInputMessage),
	}
}

// add registers the session and drains the contributions parked for it, in
// arrival order. It returns false if the id is already taken.
func (t *safeSessionStore) add(id string, s *Session) ([]types.SessionInputMessage, bool) {
	t.Lock()
	defer t.Unlock()

	_, found := t.store[id]
	if found {
		return nil, false
	}
	t.store[id] = s

	msgs := t.pending[id]
	delete(t.pending, id)
	return msgs, true
}

func (t *safeSessionStore) get(id string) (*Session, bool) {
	t.Lock()
	s, ok := t.store[id]
	t.Unlock()
	return s, ok
}

// getOrPark returns the session with the given id. If it does not exist yet
// the contribution is parked for replay and ok is false.
func (t *safeSessionStore) getOrPark(id string, msg types.SessionInputMessage) (*Session, bool) {
	t.Lock()
	defer t.Unlock()

	s, ok := t.store[id]
	if ok {
		return s, true
	}
	t.pending[id] = append(t.pending[id], msg)
	return nil, false
}
