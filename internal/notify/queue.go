// Package notify keeps the toast messages shown to the shopper.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

const DefaultDuration = 5 * time.Second

type Toast struct {
	ID        int64         `json:"id"`
	Kind      Kind          `json:"type"`
	Title     string        `json:"title,omitempty"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Notifier is the fire-and-forget sink used by the services.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Queue holds toasts until they are dismissed or their duration elapses.
// A zero duration keeps the toast until it is dismissed.
type Queue struct {
	mu       sync.Mutex
	toasts   []Toast
	timers   map[int64]*time.Timer
	nextID   int64
	duration time.Duration
	closed   bool
}

func NewQueue(defaultDuration time.Duration) *Queue {
	if defaultDuration < 0 {
		defaultDuration = 0
	}
	return &Queue{
		timers:   map[int64]*time.Timer{},
		duration: defaultDuration,
	}
}

func (q *Queue) Notify(message string, kind Kind) {
	q.Push(Toast{Kind: kind, Message: message, Duration: q.duration})
}

// Push stores t and returns its id (starting at 1). Empty kinds default to info.
func (q *Queue) Push(t Toast) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return -1
	}
	if t.Kind == "" {
		t.Kind = KindInfo
	}
	q.nextID++
	t.ID = q.nextID
	t.CreatedAt = time.Now()
	q.toasts = append(q.toasts, t)

	if t.Duration > 0 {
		id := t.ID
		q.timers[id] = time.AfterFunc(t.Duration, func() { q.Dismiss(id) })
	}
	return t.ID
}

func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Dismiss removes the toast with id; unknown ids are ignored.
func (q *Queue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if tm, ok := q.timers[id]; ok {
		tm.Stop()
		delete(q.timers, id)
	}
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return
		}
	}
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopTimers()
	q.toasts = nil
}

// Close stops pending timers; later pushes are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopTimers()
	q.closed = true
}

func (q *Queue) stopTimers() {
	for id, tm := range q.timers {
		tm.Stop()
		delete(q.timers, id)
	}
}
