package event

import (
	"sync"
	"time"
)

// Topic names one watched collection. Subscribers of a topic observe that
// collection's writes in commit order; there is no ordering across topics.
type Topic string

const (
	TopicItems     Topic = "items"
	TopicDonations Topic = "donations"
)

// Event describes one committed mutation.
type Event struct {
	Topic   Topic
	Type    string
	ItemID  string
	Payload any
	At      time.Time
}

// Subscription is a cancellable handle onto a topic stream. Cancel is safe to
// call more than once; the channel is closed once cancelled.
type Subscription struct {
	C      chan Event
	topic  Topic
	bus    *Bus
	cancel sync.Once
}

// Cancel detaches the subscription from the bus and closes C. The close
// happens under the bus write lock so an in-flight Publish can never send on
// the closed channel.
func (s *Subscription) Cancel() {
	s.cancel.Do(func() {
		s.bus.remove(s)
	})
}

// Bus is an in-process fan-out for post-commit change notifications: the
// ledger publishes after its transaction commits, and view-layer consumers
// (the websocket hub, the activity sink) re-render from the events. A slow
// consumer never blocks a publish; its events are dropped instead.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]*Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[Topic][]*Subscription{}}
}

// Subscribe registers a consumer for one topic.
func (b *Bus) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{C: make(chan Event, 64), topic: topic, bus: b}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub
}

// Publish delivers the event to every subscriber of its topic.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	// The read lock is held across the sends: remove both detaches and
	// closes under the write lock, so a subscriber channel cannot be closed
	// while a send to it is in flight. The sends never block, so holding the
	// lock here cannot deadlock against a cancelling consumer.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[ev.Topic] {
		select {
		case sub.C <- ev:
		default:
		}
	}
}

func (b *Bus) remove(target *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[target.topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[target.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(target.C)
}
