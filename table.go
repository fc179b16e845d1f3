package sched

// threadTable is the all-threads list (spec.md §3's all_list, "all live
// thread descriptors, independent of scheduling state"). Unlike the
// teacher's weak-pointer promise registry, this holds strong references:
// the scheduler is the thing keeping a blocked or sleeping thread's
// goroutine reachable, and it must never let GC reclaim a descriptor that
// a pending Unblock or timer wake will still reference.
type threadTable struct {
	nextID  int
	threads map[int]*Thread
}

func newThreadTable() *threadTable {
	return &threadTable{threads: make(map[int]*Thread)}
}

// allocate reserves the next thread id, or returns -1 if the id space is
// exhausted (spec.md §7's TID_ERROR-equivalent, surfaced as
// ErrThreadTableFull by the caller).
func (tt *threadTable) allocate() int {
	if tt.nextID < 0 {
		return -1
	}
	id := tt.nextID
	tt.nextID++
	return id
}

func (tt *threadTable) insert(t *Thread) {
	tt.threads[t.id] = t
}

func (tt *threadTable) remove(t *Thread) {
	delete(tt.threads, t.id)
}

func (tt *threadTable) lookup(id int) (*Thread, bool) {
	t, ok := tt.threads[id]
	return t, ok
}

// forEach applies action to every live thread, in map iteration order
// (spec.md §4.1's thread_foreach makes no ordering guarantee either).
func (tt *threadTable) forEach(action func(*Thread)) {
	for _, t := range tt.threads {
		action(t)
	}
}

func (tt *threadTable) len() int {
	return len(tt.threads)
}
