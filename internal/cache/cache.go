package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache is the read-through surface services depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string) int
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps the registered caches until its context ends.
type Manager struct {
	mu     sync.Mutex
	caches map[string]Cleaner
	logger *slog.Logger
	done   chan struct{}
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		caches: make(map[string]Cleaner),
		logger: logger,
	}
}

// Register adds a named cache to the sweep.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// Sweep cleans every registered cache once and returns the number of
// entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for name, c := range m.caches {
		n := c.CleanExpired()
		if n > 0 {
			m.logger.Debug("Expired cache entries removed", "cache", name, "count", n)
		}
		total += n
	}
	return total
}

// Start sweeps every interval in the background until ctx is cancelled.
// Wait blocks until that goroutine has exited.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) Wait() {
	if m.done != nil {
		<-m.done
	}
}
