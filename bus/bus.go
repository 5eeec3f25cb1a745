// Package bus provides the per-symbol event queues. Each symbol lane owns
// one queue; producers on any lane may publish into it, the owning worker
// drains it non-blockingly.
package bus

import (
	"sync"

	"github.com/rustyeddy/fxengine/event"
)

// Queue is an unbounded FIFO of events. Unbounded matters: handlers push
// follow-up events into the queue that is currently being drained by the
// same goroutine, so a bounded queue could deadlock the lane.
type Queue struct {
	mu    sync.Mutex
	items []event.Event
}

// Put appends an event. It never blocks.
func (q *Queue) Put(e event.Event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
}

// Get removes and returns the oldest event, or ok=false when the queue is
// empty.
func (q *Queue) Get() (e event.Event, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	e = q.items[0]
	q.items = q.items[1:]
	return e, true
}

// Len reports the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Bus owns one queue per symbol. The queue set is fixed at construction.
type Bus struct {
	queues map[string]*Queue
}

func New(symbols []string) *Bus {
	queues := make(map[string]*Queue, len(symbols))
	for _, s := range symbols {
		queues[s] = &Queue{}
	}
	return &Bus{queues: queues}
}

// Publish enqueues e on the symbol's queue. Publishing to an unknown symbol
// is a no-op; the engine only routes events for configured symbols.
func (b *Bus) Publish(symbol string, e event.Event) {
	if q, ok := b.queues[symbol]; ok {
		q.Put(e)
	}
}

// Queue returns the symbol's queue, or nil for an unknown symbol.
func (b *Bus) Queue(symbol string) *Queue {
	return b.queues[symbol]
}
