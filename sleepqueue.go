package sched

import "container/heap"

// sleepEntry pairs a thread with the tick it should wake at: a heap.Interface
// shape ordered by an int64 tick instead of a time.Time.
type sleepEntry struct {
	wakeTick int64
	thread   *Thread
}

// sleepQueue is a min-heap of sleeping threads ordered by wake-tick
// ascending (spec.md §4.3, §3 invariants).
type sleepQueue []sleepEntry

func (q sleepQueue) Len() int            { return len(q) }
func (q sleepQueue) Less(i, j int) bool  { return q[i].wakeTick < q[j].wakeTick }
func (q sleepQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *sleepQueue) Push(x any)         { *q = append(*q, x.(sleepEntry)) }
func (q *sleepQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// insert adds t to the sleep queue to wake at wakeTick.
func (q *sleepQueue) insert(t *Thread, wakeTick int64) {
	t.wakeTick = wakeTick
	heap.Push(q, sleepEntry{wakeTick: wakeTick, thread: t})
}

// popExpired removes and returns every thread whose wake-tick is <= now, in
// wake-tick order (spec.md §4.3: "bounds per-tick work to the number of
// expired sleepers").
func (q *sleepQueue) popExpired(now int64) []*Thread {
	var woken []*Thread
	for len(*q) > 0 && (*q)[0].wakeTick <= now {
		e := heap.Pop(q).(sleepEntry)
		woken = append(woken, e.thread)
	}
	return woken
}
