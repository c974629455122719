package cache

import (
	"context"
	"sync"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
)

// InMemoryDebounceGuard implements DebounceGuard with an in-process map.
// Claims are not shared across instances.
type InMemoryDebounceGuard struct {
	mu        sync.Mutex
	claims    map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryDebounceGuard creates a guard and starts its cleanup loop
func NewInMemoryDebounceGuard() *InMemoryDebounceGuard {
	g := &InMemoryDebounceGuard{
		claims:   make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	g.wg.Add(1)
	go g.cleanupLoop()
	return g
}

// Claim returns true if key was not claimed within ttl
func (g *InMemoryDebounceGuard) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expiresAt, ok := g.claims[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	g.claims[key] = now.Add(ttl)
	return true, nil
}

// Release deletes the claim on key
func (g *InMemoryDebounceGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claims, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (g *InMemoryDebounceGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *InMemoryDebounceGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemoryDebounceGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, expiresAt := range g.claims {
		if !now.Before(expiresAt) {
			delete(g.claims, key)
		}
	}
}

// Size returns the number of live claims (for testing/monitoring)
func (g *InMemoryDebounceGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}

var _ integration.DebounceGuard = (*InMemoryDebounceGuard)(nil)
