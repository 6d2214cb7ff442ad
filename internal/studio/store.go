package studio

import "sync"

type Key struct {
	ChatID int64
	UserID int64
}

// Store keeps one Session per chat/user pair behind a mutex. All session
// mutation goes through Update so pipeline goroutines never touch live state
// directly; reads hand out clones.
type Store struct {
	mu sync.Mutex
	m  map[Key]*Session
}

func NewStore() *Store {
	return &Store{m: make(map[Key]*Session)}
}

func (s *Store) Get(key Key) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(key).clone()
}

func (s *Store) Update(key Key, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key)
	if fn != nil {
		fn(sess)
	}
	return sess.clone()
}

// Reset replaces the session with a fresh default one.
func (s *Store) Reset(key Key) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession()
	s.m[key] = sess
	return sess.clone()
}

func (s *Store) getOrCreateLocked(key Key) *Session {
	if sess, ok := s.m[key]; ok {
		return sess
	}
	sess := newSession()
	s.m[key] = sess
	return sess
}
