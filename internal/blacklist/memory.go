package blacklist

import (
	"context"
	"sync"
	"time"
)

// Memory is the process-local fallback: a mutex-guarded map of token to
// eviction deadline with a background sweep. It is an explicit, injectable
// component rather than package-level state so tests can run it
// deterministically and shutdown can stop the sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time

	stop     chan struct{}
	stopOnce sync.Once

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

// NewMemory starts the sweep goroutine; call Close to stop it.
func NewMemory(sweepEvery time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
	go m.sweep(sweepEvery)
	return m
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *Memory) Add(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[token] = m.now().Add(ttl)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Contains(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	deadline, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if m.now().After(deadline) {
		// Expired but not yet swept; report absent.
		return false, nil
	}
	return true, nil
}

func (m *Memory) Remove(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.entries, token)
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries currently held, swept or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Evict drops every entry past its deadline. The sweep calls this on a
// ticker; tests call it directly.
func (m *Memory) Evict() {
	now := m.now()
	m.mu.Lock()
	for token, deadline := range m.entries {
		if now.After(deadline) {
			delete(m.entries, token)
		}
	}
	m.mu.Unlock()
}

func (m *Memory) sweep(every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.Evict()
		case <-m.stop:
			return
		}
	}
}

// Close stops the sweep goroutine. Safe to call more than once.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
