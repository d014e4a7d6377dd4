// Package event implements a simple in-process pub/sub bus the engine uses
// to surface state transitions to embedding hosts (CLI, tests, services).
package event

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Type names an event stream, like "proposal.resolved".
type Type string

// Event is a single published occurrence.
type Event struct {
	Type      Type
	Timestamp time.Time
	Data      any
}

// New creates a new event with the current timestamp.
func New(t Type, data any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// SubscriberID uniquely identifies one subscription on a bus.
type SubscriberID uint64

type subscriber struct {
	ch     chan Event
	cancel chan struct{}
}

// Bus fans events out to per-type subscribers. Publish never blocks the
// caller longer than each subscriber's buffer allows.
type Bus struct {
	mu            sync.Mutex
	lastSubID     SubscriberID
	subscribers   map[Type]map[SubscriberID]*subscriber
	wg            sync.WaitGroup
	eventsTotal   *prometheus.CounterVec
	subscriberCnt prometheus.Gauge
}

// NewBus creates a bus. A nil registry disables metrics.
func NewBus(reg prometheus.Registerer) *Bus {
	b := &Bus{
		subscribers: make(map[Type]map[SubscriberID]*subscriber),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vestad_events_total",
				Help: "Total number of events published by type",
			},
			[]string{"type"},
		),
		subscriberCnt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vestad_event_subscribers",
				Help: "Current number of event subscribers",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(b.eventsTotal, b.subscriberCnt)
	}
	return b
}

// Subscribe registers for events of the given type. The returned channel is
// buffered; a subscriber that falls behind loses newer events rather than
// stalling the publisher.
func (b *Bus) Subscribe(t Type) (SubscriberID, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSubID++
	id := b.lastSubID
	sub := &subscriber{
		ch:     make(chan Event, 64),
		cancel: make(chan struct{}),
	}
	if _, ok := b.subscribers[t]; !ok {
		b.subscribers[t] = make(map[SubscriberID]*subscriber)
	}
	b.subscribers[t][id] = sub
	b.subscriberCnt.Inc()
	return id, sub.ch
}

// SubscribeFunc runs the handler in its own goroutine for every event of the
// given type until Unsubscribe or Stop.
func (b *Bus) SubscribeFunc(t Type, fn func(Event)) SubscriberID {
	id, ch := b.Subscribe(t)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for evt := range ch {
			fn(evt)
		}
	}()
	return id
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(t Type, id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subscribers[t]
	if !ok {
		return
	}
	sub, ok := subs[id]
	if !ok {
		return
	}
	close(sub.cancel)
	close(sub.ch)
	delete(subs, id)
	b.subscriberCnt.Dec()
}

// Publish delivers the event to all subscribers of its type. Delivery to a
// full subscriber buffer drops the event for that subscriber.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventsTotal.WithLabelValues(string(evt.Type)).Inc()
	for _, sub := range b.subscribers[evt.Type] {
		select {
		case sub.ch <- evt:
		case <-sub.cancel:
		default:
		}
	}
}

// Stop closes all subscriptions and waits for handler goroutines to drain.
func (b *Bus) Stop() {
	b.mu.Lock()
	for t, subs := range b.subscribers {
		for id, sub := range subs {
			close(sub.cancel)
			close(sub.ch)
			delete(subs, id)
			b.subscriberCnt.Dec()
		}
		delete(b.subscribers, t)
	}
	b.mu.Unlock()
	b.wg.Wait()
}
