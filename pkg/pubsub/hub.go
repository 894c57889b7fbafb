package pubsub

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is a single live-view notification.
type Event struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
	At    time.Time       `json:"at"`
}

// Publisher emits events to live views.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// Hub fans events out to in-process subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event, and an attached relay
// only queues it.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	buffer  int
	dropped func(topic string)
	relay   func(Event)
}

// Subscription receives events for a fixed set of topics.
type Subscription struct {
	hub    *Hub
	topics map[string]struct{}
	ch     chan Event
	once   sync.Once
}

// NewHub constructs a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// OnDrop registers a callback invoked when a slow subscriber misses an event.
func (h *Hub) OnDrop(fn func(topic string)) {
	h.mu.Lock()
	h.dropped = fn
	h.mu.Unlock()
}

// Subscribe registers interest in the given topics. An empty topic list
// receives everything.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{hub: h, ch: make(chan Event, h.buffer)}
	if len(topics) > 0 {
		sub.topics = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Publish encodes payload and delivers it locally, then hands it to the relay
// when one is attached.
func (h *Hub) Publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	evt := Event{Topic: topic, Data: data, At: time.Now().UTC()}
	h.Deliver(evt)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		relay(evt)
	}
}

// Deliver fans an already encoded event out to local subscribers only.
func (h *Hub) Deliver(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.wants(evt.Topic) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			if h.dropped != nil {
				h.dropped(evt.Topic)
			}
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) setRelay(fn func(Event)) {
	h.mu.Lock()
	h.relay = fn
	h.mu.Unlock()
}

// C returns the receive channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

func (s *Subscription) wants(topic string) bool {
	if s.topics == nil {
		return true
	}
	_, ok := s.topics[topic]
	return ok
}
