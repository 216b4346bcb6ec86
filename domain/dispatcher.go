package domain

import (
	"sync"

	"github.com/gammazero/deque"
)

// EventDispatcher fans normalized events out to every registered subscriber.
// Each subscriber owns an unbounded queue drained by its own goroutine, so
// publishing never blocks the decode/aggregate path on a slow consumer.
// Delivery is best-effort: a subscriber that unsubscribed is dropped from the
// active list without failing the publish for the others.
type EventDispatcher struct {
	mu          sync.Mutex
	subscribers []*eventSubscriber
}

func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// Subscribe registers a new consumer. Events published after this call are
// delivered in publish order on the returned stream.
func (d *EventDispatcher) Subscribe() *Subscription[LiveEventEnvelope] {
	sub := &eventSubscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan LiveEventEnvelope),
		done: make(chan struct{}),
	}
	go sub.pump()

	d.mu.Lock()
	d.subscribers = append(d.subscribers, sub)
	d.mu.Unlock()

	return &Subscription[LiveEventEnvelope]{
		Stream:      sub.out,
		Topic:       "live-events",
		Unsubscribe: sub.close,
	}
}

// Publish delivers an owned copy of the event to every live subscriber in
// registration order. Noop events are swallowed here.
func (d *EventDispatcher) Publish(exchange Exchange, event LiveEvent) {
	if event.Type == LiveEventTypeNoop {
		return
	}
	envelope := LiveEventEnvelope{Exchange: exchange, Event: event}

	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.subscribers[:0]
	for _, sub := range d.subscribers {
		if sub.isClosed() {
			continue
		}
		sub.push(envelope)
		kept = append(kept, sub)
	}
	d.subscribers = kept
}

func (d *EventDispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

type eventSubscriber struct {
	mu    sync.Mutex
	queue deque.Deque[LiveEventEnvelope]

	wake chan struct{}
	out  chan LiveEventEnvelope
	done chan struct{}
	once sync.Once
}

func (s *eventSubscriber) push(envelope LiveEventEnvelope) {
	s.mu.Lock()
	s.queue.PushBack(envelope)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *eventSubscriber) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *eventSubscriber) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *eventSubscriber) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if s.queue.Len() == 0 {
				s.mu.Unlock()
				break
			}
			envelope := s.queue.PopFront()
			s.mu.Unlock()

			select {
			case s.out <- envelope:
			case <-s.done:
				return
			}
		}
	}
}
