package sched

import "container/list"

// priorityBuckets is the number of distinct priority levels, [PriMin, PriMax].
const priorityBuckets = PriMax - PriMin + 1

// membership records where a thread is currently linked into a pqueue, so it
// can be removed or re-queued (after a priority change) in O(1) without a
// linear scan. Rather than reusing one link field for whichever list
// currently owns a thread, each kind of membership (current queue vs.
// donation linkage) gets its own small struct. push overwrites the given
// membership without unlinking any prior one, so callers remove a thread (or
// check queued()) before pushing it again with the same membership.
type membership struct {
	pq     *pqueue
	bucket int
	elem   *list.Element
}

func (m *membership) queued() bool { return m.pq != nil }

// pqueue is a priority queue ordered by effective priority descending, with
// FIFO tie-break, realized as one FIFO list per priority level. PriMin..
// PriMax is exactly 64 levels, so this is a literal "multi-level" queue, not
// just an analogy — selection of the highest-priority entry and insertion
// are both O(1); only a priority change on an already-queued thread costs an
// O(1) remove + O(1) re-insert (requeue), never a re-sort of the whole
// structure. One FIFO per priority level serves as both the ready queue and
// the semaphore (and so lock) wait lists and donators lists: all of them
// share the identical ordering requirement. Cond keeps its own slice of
// waiters instead.
type pqueue struct {
	buckets [priorityBuckets]list.List
	size    int
}

func newPQueue() *pqueue {
	pq := &pqueue{}
	for i := range pq.buckets {
		pq.buckets[i].Init()
	}
	return pq
}

func bucketIndex(priority int) int {
	if priority < PriMin {
		priority = PriMin
	}
	if priority > PriMax {
		priority = PriMax
	}
	return priority - PriMin
}

// push inserts t at the back of its priority's FIFO, recording membership in
// m so the thread can later be removed or re-queued.
func (pq *pqueue) push(t *Thread, m *membership) {
	b := bucketIndex(t.EffectivePriority())
	elem := pq.buckets[b].PushBack(t)
	pq.size++
	*m = membership{pq: pq, bucket: b, elem: elem}
}

// remove detaches the thread described by m from this queue. It is a no-op
// if m does not currently describe a membership in pq.
func (pq *pqueue) remove(m *membership) {
	if m.pq != pq {
		return
	}
	pq.buckets[m.bucket].Remove(m.elem)
	pq.size--
	*m = membership{}
}

// requeue re-inserts t at its current effective priority, used after a
// priority change (donation, set_priority, MLFQS recompute) on a thread that
// is already linked into this queue. FIFO position is reset to the back of
// the new bucket, matching Pintos's "remove, recompute, re-insert" idiom.
func (pq *pqueue) requeue(t *Thread, m *membership) {
	pq.remove(m)
	pq.push(t, m)
}

// popHighest removes and returns the thread in the highest non-empty
// priority bucket, FIFO within that bucket. Returns nil if empty.
func (pq *pqueue) popHighest() *Thread {
	for b := priorityBuckets - 1; b >= 0; b-- {
		if front := pq.buckets[b].Front(); front != nil {
			pq.buckets[b].Remove(front)
			pq.size--
			t := front.Value.(*Thread)
			t.qm = membership{}
			return t
		}
	}
	return nil
}

// peekHighest returns the highest non-empty bucket's front thread without
// removing it, or ok=false if empty.
func (pq *pqueue) peekHighest() (t *Thread, ok bool) {
	for b := priorityBuckets - 1; b >= 0; b-- {
		if front := pq.buckets[b].Front(); front != nil {
			return front.Value.(*Thread), true
		}
	}
	return nil, false
}

func (pq *pqueue) len() int { return pq.size }

// forEach iterates every queued thread, highest priority first, FIFO within
// a bucket. The callback must not mutate pq.
func (pq *pqueue) forEach(fn func(*Thread)) {
	for b := priorityBuckets - 1; b >= 0; b-- {
		for e := pq.buckets[b].Front(); e != nil; e = e.Next() {
			fn(e.Value.(*Thread))
		}
	}
}
