package scheduler

import "sync"

// queue is an unbounded FIFO of requests so Submit never blocks on workers.
type queue struct {
	mu      sync.Mutex
	pending []Request
}

func newQueue() *queue {
	return &queue{pending: make([]Request, 0)}
}

func (q *queue) push(req Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, req)
}

func (q *queue) pop() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Request{}, false
	}
	req := q.pending[0]
	q.pending[0] = Request{}
	q.pending = q.pending[1:]
	return req, true
}

// remove drops a not-yet-started request. It reports whether one was found.
func (q *queue) remove(id uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, req := range q.pending {
		if req.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// drain empties the queue and returns what was left.
func (q *queue) drain() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = make([]Request, 0)
	return batch
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
