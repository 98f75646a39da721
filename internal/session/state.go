package session

import "sync"

// AuthState is the shared "is the user authenticated" flag. The Manager is
// its only writer; everything else observes.
//
// Subscriptions are conflated: each subscriber holds a one-slot channel that
// always carries the most recent value. The current value is delivered
// immediately on subscribe, an undelivered value is overwritten by a newer
// one, and Set never blocks on a slow subscriber.
type AuthState struct {
	mu            sync.Mutex
	authenticated bool
	subs          map[int]chan bool
	nextID        int
}

// NewAuthState creates a broadcaster with the initial value false
// ("not yet checked" is treated as unauthenticated).
func NewAuthState() *AuthState {
	return &AuthState{subs: make(map[int]chan bool)}
}

// Authenticated returns the current value.
func (s *AuthState) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Set updates the value and fans it out to all subscribers.
func (s *AuthState) Set(authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = authenticated
	for _, ch := range s.subs {
		// Drop a value the subscriber hasn't consumed yet; only the
		// latest one matters.
		select {
		case <-ch:
		default:
		}
		ch <- authenticated
	}
}

// Subscribe registers an observer. The returned channel yields the current
// value immediately, then every subsequent change (conflated to the latest).
// The cancel function removes the subscription and closes the channel.
func (s *AuthState) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan bool, 1)
	ch <- s.authenticated
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
