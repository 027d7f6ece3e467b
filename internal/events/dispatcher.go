package events

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	dispatchBuffer  = 100
	dispatchTimeout = 5 * time.Second
)

type pending struct {
	routingKey string
	payload    interface{}
}

// Dispatcher hands events to a Publisher on a background worker so request
// handlers never wait on the broker. When the buffer is full the event is
// published synchronously instead of being dropped.
type Dispatcher struct {
	next    Publisher
	queue   chan pending
	done    chan struct{}
	closeMu sync.Once
}

// NewDispatcher starts the background worker.
func NewDispatcher(next Publisher) *Dispatcher {
	d := &Dispatcher{
		next:  next,
		queue: make(chan pending, dispatchBuffer),
		done:  make(chan struct{}),
	}
	go d.worker()
	return d
}

// Publish enqueues the event. It never blocks on the broker.
func (d *Dispatcher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	select {
	case d.queue <- pending{routingKey: routingKey, payload: payload}:
		return nil
	default:
		// Buffer full, publish synchronously as fallback
		return d.send(ctx, pending{routingKey: routingKey, payload: payload})
	}
}

// Close stops accepting events and waits until the buffer is drained.
func (d *Dispatcher) Close() {
	d.closeMu.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		_ = d.send(ctx, ev)
		cancel()
	}
}

func (d *Dispatcher) send(ctx context.Context, ev pending) error {
	if err := d.next.Publish(ctx, ev.routingKey, ev.payload); err != nil {
		log.Printf("event %s: publish failed: %v", ev.routingKey, err)
		return err
	}
	return nil
}
