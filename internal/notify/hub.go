package notify

import (
	"sync"
	"time"
)

// Hub keeps one toast queue per shopper session.
type Hub struct {
	mu       sync.Mutex
	queues   map[string]*Queue
	duration time.Duration
	closed   bool
}

func NewHub(defaultDuration time.Duration) *Hub {
	return &Hub{queues: map[string]*Queue{}, duration: defaultDuration}
}

// For returns the queue of sessionID, creating it on first use. After Close
// it hands out closed queues that drop every push.
func (h *Hub) For(sessionID string) *Queue {
	h.mu.Lock()
	defer h.mu.Unlock()
	if q, ok := h.queues[sessionID]; ok {
		return q
	}
	q := NewQueue(h.duration)
	if h.closed {
		q.Close()
		return q
	}
	h.queues[sessionID] = q
	return q
}

// Len is the number of sessions holding a queue.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queues)
}

// Close stops the timers of every queue.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, q := range h.queues {
		q.Close()
	}
	h.closed = true
}
