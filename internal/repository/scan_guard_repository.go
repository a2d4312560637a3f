package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanGuardPrefix = "checkin:scan:"

// ScanGuardRepository suppresses repeated scans of the same code across every API
// instance using Redis SET NX with a TTL.
type ScanGuardRepository struct {
	client *redis.Client
}

// NewScanGuardRepository constructs a ScanGuardRepository.
func NewScanGuardRepository(client *redis.Client) *ScanGuardRepository {
	return &ScanGuardRepository{client: client}
}

// Acquire claims key for ttl. It returns false when the key was claimed inside the window.
func (r *ScanGuardRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, scanGuardPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so a scan that failed for system reasons can be retried at once.
func (r *ScanGuardRepository) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, scanGuardPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
