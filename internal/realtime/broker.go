// Package realtime provides an in-process change feed for table mutations.
//
// Repositories publish an Event after a write commits; consumers subscribe
// with a Filter (table plus an optional column equality) and receive matching
// events on a dedicated goroutine, so a single subscriber never sees two
// callbacks run concurrently.
//
// # Usage
//
//	broker := realtime.NewBroker()
//	sub := broker.Subscribe(realtime.Filter{Table: "quote_favourites", Column: "user_id", Value: uid},
//		func(ev realtime.Event) { refetch() })
//	defer sub.Unsubscribe()
package realtime

import (
	"log"
	"sync"
)

// EventType mirrors the row-level change kinds.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// DefaultQueueSize is the per-subscription buffer.
const DefaultQueueSize = 16

// Event describes one committed row change.
type Event struct {
	Table  string            `json:"table"`
	Type   EventType         `json:"type"`
	Record map[string]string `json:"record"`
}

// Filter selects events for a subscription. An empty Column matches every
// event of the table.
type Filter struct {
	Table  string
	Column string
	Value  string
}

// Matches reports whether the event passes the filter.
func (f Filter) Matches(ev Event) bool {
	if f.Table != ev.Table {
		return false
	}
	if f.Column == "" {
		return true
	}
	return ev.Record[f.Column] == f.Value
}

// Handler receives matching events.
type Handler func(Event)

// Broker fans events out to subscriptions.
type Broker struct {
	mu        sync.RWMutex
	subs      map[uint64]*Subscription
	nextID    uint64
	queueSize int
	closed    bool
}

// NewBroker creates a broker with the default queue size.
func NewBroker() *Broker {
	return NewBrokerWithQueueSize(DefaultQueueSize)
}

// NewBrokerWithQueueSize creates a broker with a custom per-subscription buffer.
func NewBrokerWithQueueSize(size int) *Broker {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Broker{
		subs:      make(map[uint64]*Subscription),
		queueSize: size,
	}
}

// Subscribe registers a handler. The returned subscription must be released
// with Unsubscribe.
func (b *Broker) Subscribe(filter Filter, handler Handler) *Subscription {
	sub := &Subscription{
		broker:  b,
		filter:  filter,
		handler: handler,
		queue:   make(chan Event, b.queueSize),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.Unsubscribe()
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go sub.run()
	return sub
}

// Publish delivers the event to every matching subscription without blocking.
// When a subscriber's queue is full the event is dropped for that subscriber:
// consumers react to any event by re-reading full state, so one pending event
// is enough to converge.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.filter.Matches(ev) {
			continue
		}
		select {
		case sub.queue <- ev:
		case <-sub.done:
		default:
			log.Printf("Realtime: queue full for %s subscription %d, coalescing %s event", ev.Table, sub.id, ev.Type)
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close unsubscribes everyone and rejects new subscriptions.
func (b *Broker) Close() {
	b.mu.Lock()
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscription is a live registration on a Broker.
type Subscription struct {
	id      uint64
	broker  *Broker
	filter  Filter
	handler Handler
	queue   chan Event
	done    chan struct{}
	once    sync.Once
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.queue:
			select {
			case <-s.done:
				return
			default:
			}
			s.handler(ev)
		}
	}
}

// Unsubscribe stops delivery. Safe to call more than once; it does not wait
// for an in-flight handler to return.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.id != 0 {
			s.broker.remove(s.id)
		}
		close(s.done)
	})
}

// Done is closed once the subscription has been released.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Filter returns the subscription's filter.
func (s *Subscription) Filter() Filter {
	return s.filter
}
