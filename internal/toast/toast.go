package toast

import "time"

// DefaultTTL is how long a notice stays on screen
const DefaultTTL = 3 * time.Second

// Kind selects a notice's style
type Kind uint8

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Toast is a short-lived notice
type Toast struct {
	ID        int
	Message   string
	Kind      Kind
	ExpiresAt time.Time
}

// Queue holds live notices in the order they were pushed.
// It is a value type: operations return a new Queue.
type Queue struct {
	ttl    time.Duration
	nextID int
	items  []Toast
}

// NewQueue returns an empty queue whose notices live for ttl
func NewQueue(ttl time.Duration) Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Queue{ttl: ttl}
}

// Push appends a notice and returns it with its assigned ID
func (q Queue) Push(msg string, kind Kind, now time.Time) (Queue, Toast) {
	if q.ttl <= 0 {
		q.ttl = DefaultTTL
	}
	t := Toast{
		ID:        q.nextID + 1,
		Message:   msg,
		Kind:      kind,
		ExpiresAt: now.Add(q.ttl),
	}

	items := make([]Toast, len(q.items), len(q.items)+1)
	copy(items, q.items)

	return Queue{ttl: q.ttl, nextID: t.ID, items: append(items, t)}, t
}

// Remove drops the notice with the given ID
func (q Queue) Remove(id int) Queue {
	items := make([]Toast, 0, len(q.items))
	for _, t := range q.items {
		if t.ID != id {
			items = append(items, t)
		}
	}
	q.items = items
	return q
}

// Expire drops every notice whose deadline is at or before now
func (q Queue) Expire(now time.Time) Queue {
	items := make([]Toast, 0, len(q.items))
	for _, t := range q.items {
		if now.Before(t.ExpiresAt) {
			items = append(items, t)
		}
	}
	q.items = items
	return q
}

// Active returns the live notices, oldest first
func (q Queue) Active() []Toast {
	out := make([]Toast, len(q.items))
	copy(out, q.items)
	return out
}

// TTL returns the lifetime given to new notices
func (q Queue) TTL() time.Duration {
	if q.ttl <= 0 {
		return DefaultTTL
	}
	return q.ttl
}
