package ingest

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/contentgrid/content-search/internal/events"
	"github.com/contentgrid/content-search/internal/index"
	"github.com/contentgrid/content-search/pkg/metrics"
	"go.uber.org/zap"
)

var ErrDispatcherStopped = errors.New("dispatcher is stopped")

const queueDepth = 128

// Dispatcher fans change events out to a fixed set of workers, sharded
// by item id hash. Events of one item always land on the same worker and
// are applied in arrival order; distinct items proceed concurrently.
// Deferred events are retried in place with exponential backoff up to
// the retry budget; cancellation mid-retry parks the event unapplied
// instead of half-applying it.
type Dispatcher struct {
	writer       *index.Writer
	queues       []chan events.ChangeEvent
	maxRetries   int
	retryBackoff time.Duration

	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once

	stopMu  sync.RWMutex
	stopped bool

	mu        sync.Mutex
	unapplied []events.ChangeEvent
}

type DispatcherOption func(d *Dispatcher)

func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queues = make([]chan events.ChangeEvent, n)
		}
	}
}

func WithMaxRetries(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxRetries = n
		}
	}
}

func WithRetryBackoff(backoff time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if backoff > 0 {
			d.retryBackoff = backoff
		}
	}
}

func NewDispatcher(writer *index.Writer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		writer:       writer,
		queues:       make([]chan events.ChangeEvent, 4),
		maxRetries:   5,
		retryBackoff: defaultRetryBackoff,
		done:         make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}
	for i := range d.queues {
		d.queues[i] = make(chan events.ChangeEvent, queueDepth)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled, draining
// their queues into the unapplied set.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := range d.queues {
		d.wg.Add(1)
		go d.run(ctx, d.queues[i])
	}

	go func() {
		<-ctx.Done()
		d.doneOnce.Do(func() { close(d.done) })
	}()
}

// Enqueue hands an event to its item's worker. Blocks when the worker's
// queue is full, providing backpressure to the source. Once Enqueue
// returns nil the event is accounted for: it ends up applied or in the
// Unapplied set, never silently lost.
func (d *Dispatcher) Enqueue(ev events.ChangeEvent) error {
	d.stopMu.RLock()
	defer d.stopMu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	q := d.queues[d.shard(ev.ItemID)]
	select {
	case q <- ev:
		return nil
	case <-d.done:
		return ErrDispatcherStopped
	}
}

// Stop waits for the workers to finish, then sweeps the queues into the
// unapplied set. Workers drain their own queue on cancellation, but an
// Enqueue racing the shutdown may still land an event in a queue whose
// worker already exited; the final sweep catches those. Call after
// cancelling the context passed to Start.
func (d *Dispatcher) Stop() {
	d.wg.Wait()
	d.doneOnce.Do(func() { close(d.done) })

	// after this no Enqueue is mid-send and new ones are refused
	d.stopMu.Lock()
	d.stopped = true
	d.stopMu.Unlock()

	for _, q := range d.queues {
		d.drain(q)
	}
}

// Unapplied returns the events the workers were holding when cancelled:
// queued events plus any event parked mid-retry. None of them is
// partially applied; they are safe to re-enqueue on restart.
func (d *Dispatcher) Unapplied() []events.ChangeEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.ChangeEvent, len(d.unapplied))
	copy(out, d.unapplied)
	return out
}

func (d *Dispatcher) shard(itemID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(itemID))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) run(ctx context.Context, q chan events.ChangeEvent) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			d.drain(q)
			return
		case ev := <-q:
			d.process(ctx, ev)
		}
	}
}

func (d *Dispatcher) drain(q chan events.ChangeEvent) {
	for {
		select {
		case ev := <-q:
			d.park(ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) park(ev events.ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unapplied = append(d.unapplied, ev)
}

func (d *Dispatcher) process(ctx context.Context, ev events.ChangeEvent) {
	log := zap.S().Named("ingest")

	for attempt := 1; ; attempt++ {
		result, err := d.writer.Apply(ctx, ev)
		switch result {
		case index.Committed, index.Dropped:
			return
		case index.Deferred:
			if attempt >= d.maxRetries {
				reason := "unknown"
				if err != nil {
					reason = err.Error()
				}
				log.Errorw("change event failed permanently, keeping last-known-good state",
					"item_id", ev.ItemID, "sequence", ev.Sequence, "type", ev.Type,
					"attempts", attempt, "error", err)
				d.writer.ReportFailure(ctx, ev, reason)
				return
			}

			metrics.IncreaseDeferredRetriesMetric()
			wait := Backoff(d.retryBackoff, attempt)
			log.Debugw("change event deferred, retrying",
				"item_id", ev.ItemID, "sequence", ev.Sequence, "attempt", attempt,
				"backoff", wait, "error", err)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				// cancelled mid-retry: park, never partially applied
				d.park(ev)
				return
			}
		}
	}
}
