package watch

import (
	"sync"
)

// DefaultQueueCap bounds the alert queue. The original behavior grew the
// queue without bound; here the oldest entries are evicted beyond the cap so
// an unread backlog cannot exhaust memory between drains.
const DefaultQueueCap = 256

// Queue is a bounded FIFO buffer of formatted alert messages awaiting
// retrieval. Push and Drain are atomic with respect to each other: no alert
// is ever both returned and left behind, or lost between the two.
type Queue struct {
	mu      sync.Mutex
	entries []string
	cap     int
}

// NewQueue creates a queue holding at most capacity entries. A capacity of
// zero or less uses DefaultQueueCap.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCap
	}
	return &Queue{cap: capacity}
}

// Push appends an alert, evicting the oldest entry when full.
func (q *Queue) Push(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) >= q.cap {
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, text)
}

// Drain removes and returns up to maxCount oldest entries in FIFO order.
func (q *Queue) Drain(maxCount int) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if maxCount <= 0 || len(q.entries) == 0 {
		return nil
	}
	n := maxCount
	if n > len(q.entries) {
		n = len(q.entries)
	}
	out := make([]string, n)
	copy(out, q.entries[:n])
	q.entries = q.entries[n:]
	return out
}

// Len returns the number of pending alerts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
