package revocation

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryDenylistRevokesUntilExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)}
	d := newMemory(clock.Now)
	defer d.Close()
	ctx := context.Background()

	if err := d.Revoke(ctx, "jti-1", clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := d.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected token revoked, got %v err=%v", revoked, err)
	}
	if revoked, _ := d.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("expected unrelated token to be allowed")
	}

	clock.Advance(2 * time.Hour)
	if revoked, _ := d.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected entry to lapse after expiry")
	}
}

func TestMemoryDenylistIgnoresExpiredTokens(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)}
	d := newMemory(clock.Now)
	defer d.Close()

	if err := d.Revoke(context.Background(), "old", clock.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(d.entries) != 0 {
		t.Fatalf("expected no entry for already-expired token")
	}
}

func TestMemoryDenylistCleanup(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)}
	d := newMemory(clock.Now)
	defer d.Close()
	ctx := context.Background()

	_ = d.Revoke(ctx, "short", clock.Now().Add(time.Minute))
	_ = d.Revoke(ctx, "long", clock.Now().Add(time.Hour))
	d.cleanup(clock.Now().Add(10 * time.Minute))

	if _, ok := d.entries["short"]; ok {
		t.Fatalf("expected short-lived entry swept")
	}
	if _, ok := d.entries["long"]; !ok {
		t.Fatalf("expected long-lived entry kept")
	}
}

func TestMemoryDenylistCloseIsIdempotent(t *testing.T) {
	d := NewMemory()
	d.Close()
	d.Close()
}
