package service

import (
	"context"
	"log"
	"sync"
	"time"

	q "github.com/iliyamo/airline-reservation/internal/queue"
)

// Emitter accepts domain events for asynchronous publishing.  Emit must
// not block: it is called right after the store lock is released.
type Emitter interface {
	Emit(events ...q.Event)
}

var _ Emitter = (*Dispatcher)(nil)

// Dispatcher decouples event publishing from command handling.  Emit
// never blocks: events go into a buffered channel drained by Run, and
// when the buffer is full the event is dropped and logged.  Publishing
// is best effort; a failing publisher is logged and skipped.
type Dispatcher struct {
	events     chan q.Event
	publishers []Publisher
	timeout    time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewDispatcher returns a dispatcher with the given buffer size that
// fans every event out to publishers in order.
func NewDispatcher(buffer int, publishers ...Publisher) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		events:     make(chan q.Event, buffer),
		publishers: publishers,
		timeout:    5 * time.Second,
		done:       make(chan struct{}),
	}
}

// Emit queues events for publishing.
func (d *Dispatcher) Emit(events ...q.Event) {
	for _, ev := range events {
		select {
		case d.events <- ev:
		default:
			log.Printf("dispatcher: buffer full, dropping %s event %s", ev.Type, ev.ID)
		}
	}
}

// Run publishes queued events until ctx is cancelled, then drains
// whatever is still buffered.
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.closeOnce.Do(func() { close(d.done) })
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-d.events:
					d.publish(ev)
				default:
					return
				}
			}
		case ev := <-d.events:
			d.publish(ev)
		}
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

func (d *Dispatcher) publish(ev q.Event) {
	for _, p := range d.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := p.Publish(ctx, ev); err != nil {
			log.Printf("dispatcher: publish %s event %s: %v", ev.Type, ev.ID, err)
		}
		cancel()
	}
}
