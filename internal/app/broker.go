package app

import (
	"sync"

	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/monitoring"
)

// ChannelKind names the per-room channels the relay publishes on.
type ChannelKind string

const (
	KindUserJoined ChannelKind = "user-joined"
	KindUserLeft   ChannelKind = "user-left"
	KindChat       ChannelKind = "chat"
	KindSignal     ChannelKind = "signal"
	// KindRoster marks the private roster delivery to a joining session.
	// It is never a broadcast topic.
	KindRoster ChannelKind = "roster"
)

// Topic is a channel key: room plus kind, and for signal channels the
// target user. Fan-out filtering is done by topic naming, not by
// inspecting payloads.
type Topic struct {
	Room   domain.RoomID
	Kind   ChannelKind
	Target domain.UserID
}

// Message is what subscribers receive. Data carries the typed payload for
// the topic kind (Participant, ChatMessage, SignalEnvelope, ...).
type Message struct {
	Topic Topic
	Data  any
}

// Subscription is a subscriber endpoint with a bounded inbox. Delivery is
// best-effort: when the inbox is full the message is dropped for that
// subscriber, never blocking the publisher.
type Subscription struct {
	C chan Message

	mu     sync.Mutex
	closed bool
}

// TrySend enqueues without blocking. Returns false if the subscriber is
// closed or its inbox is full.
func (s *Subscription) TrySend(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.C <- m:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.C)
}

// Broker routes published messages to topic subscribers. Rooms are
// independent: publishing on one topic never touches another.
type Broker struct {
	mu     sync.RWMutex
	topics map[Topic]map[*Subscription]struct{}
	bound  map[*Subscription][]Topic
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[Topic]map[*Subscription]struct{}),
		bound:  make(map[*Subscription][]Topic),
	}
}

func (b *Broker) Subscribe(buffer int) *Subscription {
	sub := &Subscription{C: make(chan Message, buffer)}
	b.mu.Lock()
	b.bound[sub] = nil
	b.mu.Unlock()
	return sub
}

// Bind attaches the subscription to additional topics.
func (b *Broker) Bind(sub *Subscription, topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bound[sub]; !ok {
		return // already unsubscribed
	}
	for _, t := range topics {
		set, ok := b.topics[t]
		if !ok {
			set = make(map[*Subscription]struct{})
			b.topics[t] = set
		}
		set[sub] = struct{}{}
		b.bound[sub] = append(b.bound[sub], t)
	}
}

// Unbind detaches the subscription from the given topics only.
func (b *Broker) Unbind(sub *Subscription, topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		b.removeLocked(sub, t)
	}
}

// Unsubscribe detaches the subscription from every topic and closes it.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	for _, t := range b.bound[sub] {
		if set, ok := b.topics[t]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(b.topics, t)
			}
		}
	}
	delete(b.bound, sub)
	b.mu.Unlock()
	sub.close()
}

// Publish fans the message out to the topic's current subscribers.
// Fire-and-forget: the caller never blocks on delivery.
func (b *Broker) Publish(t Topic, data any) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.topics[t]))
	for sub := range b.topics[t] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, sub := range subs {
		if sub.TrySend(Message{Topic: t, Data: data}) {
			delivered++
		} else {
			dropped++
		}
	}
	monitoring.RelayPublished(string(t.Kind), delivered, dropped)
}

func (b *Broker) removeLocked(sub *Subscription, t Topic) {
	if set, ok := b.topics[t]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.topics, t)
		}
	}
	bound := b.bound[sub]
	for i, bt := range bound {
		if bt == t {
			b.bound[sub] = append(bound[:i], bound[i+1:]...)
			break
		}
	}
}
