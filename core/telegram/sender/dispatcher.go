// Package sender runs fire-and-forget Telegram calls off the update path.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the target worker's queue has no room.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

const component = "tg.sender"

// Options controls the behaviour of the outbound dispatcher. Zero values
// select the defaults.
type Options struct {
	// QueueSize is the buffer of each worker.
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job, retries included.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3+len(extra))
	attrs = append(attrs, slog.String("action", j.action))
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	if rid := logger.RIDFrom(j.ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	return append(attrs, extra...)
}

// Dispatcher executes outbound Telegram calls on a fixed set of workers.
// Jobs of one chat always go to the same worker, so they run in enqueue order.
type Dispatcher struct {
	opts   Options
	queues []chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	failed atomic.Uint64
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, queues: make([]chan job, opts.Workers)}
	for i := range d.queues {
		q := make(chan job, opts.QueueSize)
		d.queues[i] = q
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range q {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may be called several times
// when it fails with a retryable error.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queues[d.queueFor(ctx)] <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// queueFor hashes the chat id, or the user id when no chat is known.
func (d *Dispatcher) queueFor(ctx context.Context) int {
	key := logger.ChatIDFrom(ctx)
	if key == 0 {
		key = logger.UserIDFrom(ctx)
	}
	if key < 0 {
		key = -key
	}
	return int(key % int64(len(d.queues)))
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close stops accepting jobs and waits until the queued ones are done.
// Calling it again is a no-op.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	j.ctx = context.WithoutCancel(j.ctx)
	start := time.Now()
	logger.Debug(j.ctx, component, "send.start", j.attrs()...)

	attempts, err := d.deliver(j)
	elapsed := time.Since(start)
	if err == nil {
		extra := []slog.Attr{slog.Duration("elapsed", elapsed)}
		if attempts > 1 {
			extra = append(extra, slog.Int("attempt", attempts))
		}
		logger.Debug(j.ctx, component, "send.success", j.attrs(extra...)...)
		return
	}

	d.failed.Add(1)
	logger.Error(j.ctx, component, "send.fail", j.attrs(
		slog.String("err", netutil.Redact(err)),
		slog.String("err_code", netutil.Classify(err)),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", elapsed),
	)...)
}

// deliver calls j.run until it succeeds, fails permanently, runs out of
// retries or exceeds MaxDuration. It reports the number of calls made.
func (d *Dispatcher) deliver(j job) (int, error) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}
		attempt++
		err := j.run()
		if err == nil {
			return attempt, nil
		}
		if attempt > d.opts.MaxRetries || !netutil.ShouldRetry(err) {
			return attempt, err
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
		logger.Debug(j.ctx, component, "send.retry.backoff", j.attrs(
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
		)...)
	}
}
