package service

import (
	"sync"
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

const (
	// AttemptRetention is how long a finished attempt stays readable for the
	// confirmation view.
	AttemptRetention = time.Hour

	// CleanupInterval is how often finished attempts are swept.
	CleanupInterval = time.Minute
)

// AttemptStore tracks checkout attempts in memory. It allows at most one
// unfinished attempt per session.
type AttemptStore struct {
	mu        sync.RWMutex
	attempts  map[string]*d.Attempt // attempt id -> attempt
	bySession map[string]string     // session id -> latest attempt id
	retention time.Duration

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewAttemptStore(retention time.Duration) *AttemptStore {
	if retention <= 0 {
		retention = AttemptRetention
	}
	s := &AttemptStore{
		attempts:    make(map[string]*d.Attempt),
		bySession:   make(map[string]string),
		retention:   retention,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *AttemptStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire(time.Now())
		case <-s.stopCleanup:
			return
		}
	}
}

// expire drops finished attempts that have not changed within the retention window.
func (s *AttemptStore) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.attempts {
		if a.State.IsTerminal() && now.Sub(a.UpdatedAt) > s.retention {
			delete(s.attempts, id)
			if s.bySession[a.SessionID] == id {
				delete(s.bySession, a.SessionID)
			}
		}
	}
}

// Start registers a new attempt, refusing it while the session's previous
// attempt is unfinished.
func (s *AttemptStore) Start(a *d.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prevID, ok := s.bySession[a.SessionID]; ok {
		if prev, exists := s.attempts[prevID]; exists && !prev.State.IsTerminal() {
			return ErrSubmissionInFlight
		}
	}

	s.attempts[a.ID] = a
	s.bySession[a.SessionID] = a.ID
	return nil
}

func (s *AttemptStore) Get(id string) (*d.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return a.Clone(), nil
}

// Apply runs fn on the stored attempt under the store lock and returns a copy
// of the result. fn must leave the attempt unchanged when it returns an error.
func (s *AttemptStore) Apply(id string, fn func(a *d.Attempt) error) (*d.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if err := fn(a); err != nil {
		return a.Clone(), err
	}
	return a.Clone(), nil
}

// Close stops the background sweep.
func (s *AttemptStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopCleanup) })
	s.wg.Wait()
	return nil
}
