// Package revocation keeps a denylist of token ids that must be rejected
// before their natural expiry.
package revocation

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close()
}

type memoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemory returns a process-local Denylist that sweeps expired entries.
func NewMemory() Denylist {
	d := newMemory(time.Now)
	go d.sweepLoop()
	return d
}

func newMemory(now func() time.Time) *memoryDenylist {
	return &memoryDenylist{
		entries: make(map[string]time.Time),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (d *memoryDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" || !expiresAt.After(d.now()) {
		return nil
	}
	d.mu.Lock()
	d.entries[tokenID] = expiresAt
	d.mu.Unlock()
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if d.now().After(until) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func (d *memoryDenylist) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.cleanup(d.now())
		case <-d.stopCh:
			return
		}
	}
}

func (d *memoryDenylist) cleanup(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, until := range d.entries {
		if now.After(until) {
			delete(d.entries, id)
		}
	}
}

func (d *memoryDenylist) Close() {
	d.once.Do(func() {
		close(d.stopCh)
	})
}
