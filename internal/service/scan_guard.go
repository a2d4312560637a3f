package service

import (
	"context"
	"sync"
	"time"
)

// ScanGuard claims a scanned code for a short window so a double scan is refused.
type ScanGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryScanGuard suppresses repeated scans inside one process. It is used when Redis
// is disabled.
type MemoryScanGuard struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewMemoryScanGuard constructs an empty guard.
func NewMemoryScanGuard() *MemoryScanGuard {
	return &MemoryScanGuard{claims: make(map[string]time.Time), now: time.Now}
}

// Acquire claims key until ttl elapses. Expired claims are pruned on the way.
func (g *MemoryScanGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for k, until := range g.claims {
		if !now.Before(until) {
			delete(g.claims, k)
		}
	}
	if _, held := g.claims[key]; held {
		return false, nil
	}
	g.claims[key] = now.Add(ttl)
	return true, nil
}

// Release drops a claim.
func (g *MemoryScanGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.claims, key)
	g.mu.Unlock()
	return nil
}
