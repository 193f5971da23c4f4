package pending

import (
	"context"
	"errors"
	"sync"
	"time"
)

type entry struct {
	attempt   Attempt
	expiresAt time.Time
}

// MemoryStore keeps attempts in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string]entry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string]entry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Put(_ context.Context, a Attempt, ttl time.Duration) error {
	if a.State == "" {
		return errors.New("pending: missing state")
	}
	if ttl <= 0 {
		return errors.New("pending: ttl must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.attempts[a.State]; exists {
		return errors.New("pending: state collision")
	}
	m.attempts[a.State] = entry{attempt: a, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Claim(_ context.Context, state string) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.attempts[state]
	if !ok {
		return nil, nil
	}
	delete(m.attempts, state)

	if !m.now().Before(e.expiresAt) {
		return nil, nil
	}
	return &e.attempt, nil
}

// Sweep drops expired attempts. Abandoned logins are never claimed, so
// without it they would accumulate.
func (m *MemoryStore) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for state, e := range m.attempts {
		if !now.Before(e.expiresAt) {
			delete(m.attempts, state)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

// Run sweeps every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
