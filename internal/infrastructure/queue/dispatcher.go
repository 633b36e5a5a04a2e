package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type task struct {
	key string
	fn  func(ctx context.Context)
}

// Dispatcher runs background effects on a fixed set of workers. Tasks are
// routed by key with consistent hashing, so tasks sharing a key run in
// submission order.
type Dispatcher struct {
	workers []chan task
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan task, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
// Tasks submitted before Start are buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Submit queues fn on the worker responsible for key.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Submit(key string, fn func(ctx context.Context)) {
	d.workers[d.shardIndex(key)] <- task{key: key, fn: fn}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan task) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			d.run(ctx, id, t)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, t task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("key", t.key).
				Int("worker_id", id).
				Msg("background task panicked")
		}
	}()
	t.fn(ctx)
}
