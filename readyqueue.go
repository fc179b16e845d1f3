package sched

// readyQueue is the scheduler's run queue (spec.md §4.2): ordered by
// effective priority descending, FIFO within a priority. It is a thin,
// named wrapper over pqueue so call sites read as scheduler operations
// rather than generic queue operations.
type readyQueue struct {
	pq *pqueue
}

func newReadyQueue() *readyQueue {
	return &readyQueue{pq: newPQueue()}
}

// push marks t Ready and inserts it into the queue.
func (q *readyQueue) push(t *Thread) {
	t.state = Ready
	q.pq.push(t, &t.qm)
}

// popHighest removes and returns the highest-priority ready thread, or nil
// if the queue is empty.
func (q *readyQueue) popHighest() *Thread {
	return q.pq.popHighest()
}

// len reports how many threads are currently ready.
func (q *readyQueue) len() int {
	return q.pq.len()
}

// headOutranks reports whether the ready queue's head has strictly higher
// effective priority than the given thread.
func (q *readyQueue) headOutranks(t *Thread) bool {
	head, ok := q.pq.peekHighest()
	return ok && head.EffectivePriority() > t.EffectivePriority()
}

// headAtLeast reports whether the ready queue's head has effective priority
// greater than or equal to p. Used for time-slice preemption, where an
// equal-priority peer (not just a strictly higher-priority one) becomes
// eligible to run once the current thread's slice expires.
func (q *readyQueue) headAtLeast(p int) bool {
	head, ok := q.pq.peekHighest()
	return ok && head.EffectivePriority() >= p
}
