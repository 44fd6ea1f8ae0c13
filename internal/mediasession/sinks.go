package mediasession

import (
	"sync"
)

const subscriberBuffer = 8

// LogSink writes each notification change to the session logger.
type LogSink struct{}

func (LogSink) Publish(n Notification) {
	log.Infow("notification",
		"visible", n.Visible,
		"state", n.State,
		"position_ms", n.PositionMS,
	)
}

// Hub keeps the latest notification and fans changes out to subscribers.
// Slow subscribers lose intermediate updates, never the latest one.
type Hub struct {
	mu          sync.Mutex
	latest      Notification
	hasLatest   bool
	nextID      int
	subscribers map[int]chan Notification
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[int]chan Notification)}
}

func (h *Hub) Publish(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = n
	h.hasLatest = true
	for _, ch := range h.subscribers {
		offer(ch, n)
	}
}

func (h *Hub) Latest() (Notification, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.hasLatest
}

// Subscribe returns a channel primed with the latest notification, if any.
// The cancel func closes the channel.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Notification, subscriberBuffer)
	if h.hasLatest {
		ch <- h.latest
	}
	h.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// offer drops the oldest queued value when ch is full.
func offer(ch chan Notification, n Notification) {
	for {
		select {
		case ch <- n:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
