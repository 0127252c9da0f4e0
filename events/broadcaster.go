// Package events implements the in-process publish/subscribe channel
// that pushes issue lifecycle events to connected dashboard sessions.
package events

import (
	"log"
	"sync"
)

// Event names on the dashboard stream.
const (
	EventNewIssue     = "newIssue"
	EventStatusUpdate = "statusUpdate"
)

// Event is a single lifecycle notification. Payload is the full issue
// for EventNewIssue and a models.StatusUpdate for EventStatusUpdate.
type Event struct {
	Name    string
	Payload any
}

const subscriberBuffer = 64

// Broadcaster fans events out to all current subscribers. Delivery is
// best-effort and at-most-once: subscribers joining after a publish
// never see it, and a subscriber whose buffer is full has that event
// dropped rather than blocking the publisher. Publishes are serialized,
// so each subscriber observes events in publish order.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscriber is one live dashboard connection. Close it on disconnect.
type Subscriber struct {
	C <-chan Event

	b  *Broadcaster
	ch chan Event
}

// Subscribe registers a new subscriber. It receives only events
// published after this call.
func (b *Broadcaster) Subscribe() *Subscriber {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return &Subscriber{C: ch, b: b, ch: ch}
}

// Close unregisters the subscriber and closes its channel. Safe to call
// once per subscriber.
func (s *Subscriber) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	if _, ok := s.b.subs[s.ch]; !ok {
		return
	}
	delete(s.b.subs, s.ch)
	close(s.ch)
}

// Publish delivers ev to every current subscriber without blocking.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("events: dropping %s event for slow subscriber", ev.Name)
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
