package trigger

// Queue is an unbounded FIFO of triggers. It is not safe for concurrent use;
// the controller pushes and pops from its runner goroutine only.
type Queue struct {
	items []Trigger
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{items: make([]Trigger, 0, 16)}
}

// Push appends t at the tail.
func (q *Queue) Push(t Trigger) {
	q.items = append(q.items, t)
}

// Pop removes and returns the head. It returns false on an empty queue.
func (q *Queue) Pop() (Trigger, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]

	// Drop the reference held by the backing array.
	q.items[0] = nil
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return t, true
}

// Len returns the number of queued triggers.
func (q *Queue) Len() int { return len(q.items) }

// Kinds returns the kinds of the queued triggers, head first.
func (q *Queue) Kinds() []Kind {
	out := make([]Kind, len(q.items))
	for i, t := range q.items {
		out[i] = t.Kind()
	}
	return out
}

// Clear drops every queued trigger.
func (q *Queue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}
