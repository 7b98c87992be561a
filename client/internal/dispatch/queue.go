// Package dispatch provides a small sharded work queue that guarantees FIFO
// order per key while allowing parallelism across shards. A queue with a
// single shard is a serial execution context.
//
// Every accepted job runs exactly once, including jobs still queued when
// Stop is called: workers drain their shard before exiting. Jobs receive the
// context they were submitted with and decide themselves how to honour it.
package dispatch

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// Queue executes Jobs on worker goroutines partitioned by a stable hash of
// the key.
type Queue struct {
	cfg    Config
	queues []chan queuedJob // len == cfg.Shards

	// mu is held for reading while a Submit is enqueueing, and for writing
	// while Stop flips closed, so no job can land after workers drain.
	mu     sync.RWMutex
	closed bool
	done   chan struct{} // closed in Stop()

	wg sync.WaitGroup
}

// New constructs the queue and starts its shard workers.
func New(cfg Config) *Queue {
	cfg = cfg.withDefaults()

	q := &Queue{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		q.queues[i] = ch
		q.wg.Add(1)
		go q.runWorker(i, ch)
	}
	return q
}

// Name returns the metrics label of the queue.
func (q *Queue) Name() string { return q.cfg.Name }

// Submit enqueues job for the shard derived from key.
//
//   - Returns nil on success; the job will run exactly once.
//   - Returns ErrQueueClosed if the queue is stopped.
//   - Returns ErrQueueFull (wrapped in *QueueFullError) if the shard is full
//     after EnqueueTimeout elapses.
//   - Returns ctx.Err() if ctx is cancelled while waiting for space.
func (q *Queue) Submit(ctx context.Context, key string, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shard := q.shardFor(key)
	ch := q.queues[shard]
	qj := queuedJob{ctx: ctx, job: job}

	timer := time.NewTimer(q.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- qj:
		submissionsTotal.WithLabelValues(q.cfg.Name, labelFor(shard)).Inc()
		return nil

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		queueFullTotal.WithLabelValues(q.cfg.Name, labelFor(shard)).Inc()
		return &QueueFullError{
			Queue:    q.cfg.Name,
			Shard:    shard,
			Length:   len(ch),
			Capacity: cap(ch),
		}
	}
}

// Stop rejects further submissions, lets every worker drain its shard, and
// waits for them to exit. It is idempotent and safe for concurrent use, but
// must not be called from inside a job of the same queue.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	log.Debug().Str("queue", q.cfg.Name).Int("shards", q.cfg.Shards).Msg("dispatch: stopping queue")
	close(q.done)
	q.wg.Wait()
	log.Debug().Str("queue", q.cfg.Name).Msg("dispatch: queue stopped, all shards drained")
}

// Close lets Queue satisfy io.Closer.
func (q *Queue) Close() error {
	q.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (q *Queue) runWorker(idx int, ch <-chan queuedJob) {
	defer q.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			q.run(label, qj)
			queueDepth.WithLabelValues(q.cfg.Name, label).Set(float64(len(ch)))

		case <-q.done:
			// Drain remaining jobs, preserving FIFO, then exit.
			drained := 0
			for {
				select {
				case qj := <-ch:
					q.run(label, qj)
					drained++
				default:
					if drained > 0 {
						log.Debug().Str("queue", q.cfg.Name).Int("worker", idx).Int("drained", drained).Msg("dispatch: worker drained jobs")
					}
					queueDepth.WithLabelValues(q.cfg.Name, label).Set(0)
					return
				}
			}
		}
	}
}

// run executes one job. A panic is recovered so the shard keeps serving.
func (q *Queue) run(label string, qj queuedJob) {
	if qj.job == nil {
		return
	}
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(q.cfg.Name, label).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			panicsTotal.WithLabelValues(q.cfg.Name).Inc()
			log.Error().Str("queue", q.cfg.Name).Str("shard", label).Interface("panic", r).Msg("dispatch: job panic")
		}
	}()
	if err := qj.job.Run(qj.ctx); err != nil {
		log.Warn().Err(err).Str("queue", q.cfg.Name).Str("shard", label).Msg("dispatch: job returned error")
	}
}

func (q *Queue) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(q.cfg.Shards))
}
