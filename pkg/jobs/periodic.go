// Package jobs runs background maintenance tasks on a fixed interval.
package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// PeriodicConfig configures a periodic job.
type PeriodicConfig struct {
	Interval   time.Duration
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Periodic invokes a task every interval until stopped. A failed run is retried up to
// MaxRetries times before waiting for the next tick.
type Periodic struct {
	name       string
	task       Task
	interval   time.Duration
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewPeriodic builds a periodic job.
func NewPeriodic(name string, task Task, cfg PeriodicConfig) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Periodic{
		name:       name,
		task:       task,
		interval:   cfg.Interval,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Start launches the loop. The first run happens immediately. Calling Start on a running
// job is a no-op; a stopped job may be started again.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	p.done = done
	p.started = true
	go p.loop(ctx, done)
	p.logger.Info("periodic job started", zap.String("job", p.name), zap.Duration("interval", p.interval))
}

// Stop cancels the loop and waits for the current run to return.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	done := p.done
	p.started = false
	p.mu.Unlock()
	<-done
	p.logger.Info("periodic job stopped", zap.String("job", p.name))
}

func (p *Periodic) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.runWithRetry(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Periodic) runWithRetry(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		err := p.runOnce(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		if attempt >= p.maxRetries {
			p.logger.Error("periodic job failed", zap.String("job", p.name), zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		p.logger.Warn("periodic job failed, retrying", zap.String("job", p.name), zap.Int("attempt", attempt+1), zap.Error(err))
		timer := time.NewTimer(p.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.task(runCtx)
}
