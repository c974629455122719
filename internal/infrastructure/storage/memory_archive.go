package storage

import (
	"context"
	"sync"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/google/uuid"
)

var _ integration.PayloadArchive = (*MemoryPayloadArchive)(nil)

// MemoryPayloadArchive keeps payloads in process memory.
// Use it in development when no bucket is configured.
type MemoryPayloadArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
	// MaxObjects bounds memory use; the archive stops storing when reached
	MaxObjects int
}

// NewMemoryPayloadArchive creates a MemoryPayloadArchive
func NewMemoryPayloadArchive() *MemoryPayloadArchive {
	return &MemoryPayloadArchive{objects: make(map[string][]byte), MaxObjects: 1000}
}

// Archive stores a copy of body
func (a *MemoryPayloadArchive) Archive(_ context.Context, tenantID, event string, body []byte) (string, error) {
	key := ObjectKey("webhooks", tenantID, event, time.Now(), uuid.New())

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.MaxObjects > 0 && len(a.objects) >= a.MaxObjects {
		return key, nil
	}
	a.objects[key] = append([]byte(nil), body...)
	return key, nil
}

// Get returns an archived payload
func (a *MemoryPayloadArchive) Get(key string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.objects[key]
	return b, ok
}

// Len returns the number of archived payloads
func (a *MemoryPayloadArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.objects)
}
