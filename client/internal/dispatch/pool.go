package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// PoolConfig sizes a Pool. Example: APIJR_BACKGROUND_MAX_IN_FLIGHT=32.
type PoolConfig struct {
	// MaxInFlight bounds how many jobs run at once. Jobs beyond it wait
	// for a slot on their own goroutine; Submit never blocks on it.
	MaxInFlight int `envconfig:"MAX_IN_FLIGHT" default:"64"`

	Name string `envconfig:"-"`
}

// LoadPoolConfig populates PoolConfig from environment variables under prefix.
func LoadPoolConfig(prefix string) (PoolConfig, error) {
	var c PoolConfig
	return c, envconfig.Process(prefix, &c)
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 64
	}
	if c.Name == "" {
		c.Name = "pool"
	}
	return c
}

// Pool runs every accepted job on its own goroutine, at most MaxInFlight at
// a time. Unlike Queue it keeps no order: a slow job never delays another.
type Pool struct {
	cfg      PoolConfig
	slots    *semaphore.Weighted
	inFlight atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool returns a ready Pool.
func NewPool(cfg PoolConfig) *Pool {
	cfg = cfg.withDefaults()
	return &Pool{cfg: cfg, slots: semaphore.NewWeighted(int64(cfg.MaxInFlight))}
}

// Name returns the metrics label of the pool.
func (p *Pool) Name() string { return p.cfg.Name }

// Submit starts job and returns immediately. It returns ErrQueueClosed after
// Stop, or ctx.Err() when ctx is already done; otherwise job runs exactly once.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.wg.Add(1)
	submissionsTotal.WithLabelValues(p.cfg.Name, "pool").Inc()
	go func() {
		defer p.wg.Done()
		// Accepted jobs always run, so waiting for a slot ignores cancellation.
		_ = p.slots.Acquire(context.WithoutCancel(ctx), 1)
		queueDepth.WithLabelValues(p.cfg.Name, "pool").Set(float64(p.inFlight.Add(1)))
		defer func() {
			queueDepth.WithLabelValues(p.cfg.Name, "pool").Set(float64(p.inFlight.Add(-1)))
			p.slots.Release(1)
		}()
		p.run(ctx, job)
	}()
	return nil
}

func (p *Pool) run(ctx context.Context, job Job) {
	if job == nil {
		return
	}
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(p.cfg.Name, "pool").Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			panicsTotal.WithLabelValues(p.cfg.Name).Inc()
			log.Error().Str("queue", p.cfg.Name).Interface("panic", r).Msg("dispatch: job panic")
		}
	}()
	if err := job.Run(ctx); err != nil {
		log.Warn().Err(err).Str("queue", p.cfg.Name).Msg("dispatch: job returned error")
	}
}

// Stop rejects further submissions and waits for accepted jobs to finish.
// It is idempotent and must not be called from inside a job of the pool.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	log.Debug().Str("queue", p.cfg.Name).Msg("dispatch: pool stopped")
}

// Close lets Pool satisfy io.Closer.
func (p *Pool) Close() error {
	p.Stop()
	return nil
}
