package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type summaryStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SummaryCache keeps per service type subscription summaries for a short TTL. Every
// ledger write drops the entry for its service type.
type SummaryCache struct {
	store   summaryStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewSummaryCache constructs a SummaryCache. A disabled cache always misses.
func NewSummaryCache(store summaryStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *SummaryCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryCache{store: store, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

func (c *SummaryCache) active() bool {
	return c != nil && c.enabled && c.store != nil
}

// Load fills dest from the cache and reports a hit. Storage errors count as a miss.
func (c *SummaryCache) Load(ctx context.Context, serviceType models.ServiceType, dest *models.SubscriptionSummary) bool {
	if !c.active() {
		return false
	}
	key := summaryKey(serviceType)
	started := time.Now()
	err := c.store.Get(ctx, key, dest)
	c.metrics.RecordCacheOperation(err == nil, time.Since(started))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		c.logger.Warn("summary cache read failed", zap.String("service_type", string(serviceType)), zap.Error(err))
	}
	return err == nil
}

// Store caches summary for its service type.
func (c *SummaryCache) Store(ctx context.Context, serviceType models.ServiceType, summary *models.SubscriptionSummary) {
	if !c.active() || summary == nil {
		return
	}
	if err := c.store.Set(ctx, summaryKey(serviceType), summary, c.ttl); err != nil {
		c.logger.Warn("summary cache write failed", zap.String("service_type", string(serviceType)), zap.Error(err))
	}
}

// Invalidate drops the cached summary of serviceType. Failures are only logged; the
// entry expires with its TTL anyway.
func (c *SummaryCache) Invalidate(ctx context.Context, serviceType models.ServiceType) {
	if !c.active() {
		return
	}
	if err := c.store.Delete(ctx, summaryKey(serviceType)); err != nil {
		c.logger.Warn("summary cache invalidate failed", zap.String("service_type", string(serviceType)), zap.Error(err))
	}
}

func summaryKey(serviceType models.ServiceType) string {
	return "subscriptions:summary:" + string(serviceType)
}
