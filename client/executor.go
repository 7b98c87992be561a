package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/dispatch"
)

// Queue is an execution context the engine hands work to. Request cycles run
// on a background queue; results are delivered on a callback queue.
// Dispatch must either accept fn and run it exactly once, or return an error
// and never run it.
type Queue interface {
	Dispatch(ctx context.Context, key string, fn func()) error
}

// DispatchQueue is a Queue backed by a sharded FIFO executor. Work with the
// same key runs in submission order; a single-shard queue is fully serial.
type DispatchQueue struct {
	q *dispatch.Queue
}

// NewDispatchQueue starts a queue with the given number of shards and
// per-shard capacity. Zero values pick defaults.
func NewDispatchQueue(name string, shards, size int) *DispatchQueue {
	return &DispatchQueue{q: dispatch.New(dispatch.Config{Name: name, Shards: shards, QueueSize: size})}
}

// Dispatch enqueues fn under key.
func (d *DispatchQueue) Dispatch(ctx context.Context, key string, fn func()) error {
	return d.q.Submit(ctx, key, dispatch.JobFunc(func(context.Context) error {
		fn()
		return nil
	}))
}

// Close drains pending work and stops the workers. Must not be called from
// work running on the same queue.
func (d *DispatchQueue) Close() error { return d.q.Close() }

// PoolQueue is a Queue that runs each piece of work on its own goroutine,
// at most maxInFlight at once. The key is ignored: nothing is ordered.
type PoolQueue struct {
	p *dispatch.Pool
}

// NewPoolQueue returns a concurrent queue. A zero maxInFlight picks the
// default.
func NewPoolQueue(name string, maxInFlight int) *PoolQueue {
	return &PoolQueue{p: dispatch.NewPool(dispatch.PoolConfig{Name: name, MaxInFlight: maxInFlight})}
}

// Dispatch starts fn without waiting for it.
func (q *PoolQueue) Dispatch(ctx context.Context, _ string, fn func()) error {
	return q.p.Submit(ctx, dispatch.JobFunc(func(context.Context) error {
		fn()
		return nil
	}))
}

// Close waits for running work and rejects new work.
func (q *PoolQueue) Close() error { return q.p.Close() }

// InlineQueue runs work on the calling goroutine.
type InlineQueue struct{}

// Dispatch runs fn immediately.
func (InlineQueue) Dispatch(_ context.Context, _ string, fn func()) error {
	fn()
	return nil
}

var (
	mainOnce  sync.Once
	mainQueue *DispatchQueue

	backgroundOnce  sync.Once
	backgroundQueue *PoolQueue
)

// MainQueue returns the process-wide serial queue results are delivered on by
// default. Callbacks run one at a time in completion order, so a callback
// must not block waiting for another Request's callback. Do not Close it.
func MainQueue() *DispatchQueue {
	mainOnce.Do(func() {
		mainQueue = &DispatchQueue{q: dispatch.New(dispatch.Config{Name: "main", Shards: 1, QueueSize: 1024})}
	})
	return mainQueue
}

// BackgroundQueue returns the process-wide concurrent queue request cycles
// run on by default. APIJR_BACKGROUND_MAX_IN_FLIGHT caps how many run at
// once. Do not Close it.
func BackgroundQueue() *PoolQueue {
	backgroundOnce.Do(func() {
		cfg, err := dispatch.LoadPoolConfig("APIJR_BACKGROUND")
		if err != nil {
			log.Warn().Err(err).Msg("invalid background queue configuration, using defaults")
			cfg = dispatch.PoolConfig{}
		}
		cfg.Name = "background"
		backgroundQueue = &PoolQueue{p: dispatch.NewPool(cfg)}
	})
	return backgroundQueue
}
