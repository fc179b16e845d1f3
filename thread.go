package sched

import "fmt"

// Task is the body of a thread, the Go realization of Pintos's
// thread_func(void *aux): it runs on its own goroutine, starting only once
// the kernel's dispatcher first resumes it, and normally ends by returning;
// Kernel.Exit() ends it early from deeper in its call stack.
type Task func(t *Thread)

// Thread is a thread descriptor (spec.md §3). In Pintos this struct sits at
// the bottom of a palloc'd page with the kernel stack growing down from the
// top of the same page; here the "stack" is a goroutine and the "saved
// execution context" is the channel used to park and resume it (see
// SPEC_FULL.md, "Go realization of the concurrency model").
type Thread struct {
	id   int
	name string

	kernel *Kernel
	state  ThreadState

	ownPriority int
	priority    int

	wakeTick int64

	nice      int
	recentCPU fp

	// ticksRunning counts ticks elapsed since this thread was last
	// dispatched, reset to 0 by dispatchLocked on every context switch.
	// Compared against kernelOptions.timeSlice to decide whether the
	// thread has exhausted its slice and should yield to an equal-priority
	// peer (spec.md §4.2(c)).
	ticksRunning int

	// donators holds threads currently donating effective priority into
	// this thread (i.e. blocked on a lock this thread holds).
	donators *pqueue
	// donateQM records this thread's own membership in some other thread's
	// donators list, mutually exclusive with being queued elsewhere only in
	// the sense that a thread can simultaneously donate into one holder
	// while also being the holder donated into by others.
	donateQM membership

	// waitingLock is non-nil only while Blocked waiting to acquire a lock;
	// used both to report contention and to walk the donation chain.
	waitingLock *Lock

	// qm records this thread's membership in whichever queue currently owns
	// it: the ready queue, or a semaphore/lock wait list. Mutually exclusive
	// with being in the sleep queue (state Blocked-for-sleep uses wakeTick
	// plus the kernel's sleep heap instead).
	qm membership

	// resume is sent to by the scheduler to dispatch this thread, and
	// received from by the thread's own goroutine whenever it blocks or
	// yields. Capacity 1 so a dispatch that races a concurrent Unblock
	// never blocks the kernel lock's holder.
	resume chan struct{}

	// done is closed once a created thread's goroutine has returned
	// (main's and idle's are never closed); nothing in this package reads it.
	done chan struct{}

	entry Task

	// ProcessData carries the USERPROG-equivalent fields (SPEC_FULL.md
	// "Supplemental features"): the scheduler never interprets it, only
	// preserves it across dispatches.
	ProcessData any

	magic uint32
}

// Tid returns the thread's unique identifier.
func (t *Thread) Tid() int { return t.id }

// Name returns the thread's debug name.
func (t *Thread) Name() string { return t.name }

// State returns the thread's current lifecycle state. Callers outside the
// kernel lock get a momentary snapshot, matching Pintos's own lack of any
// synchronized read of thread_current()->status from another thread.
func (t *Thread) State() ThreadState { return t.state }

// OwnPriority returns the thread's base priority, ignoring donation.
func (t *Thread) OwnPriority() int { return t.ownPriority }

// EffectivePriority returns max(own_priority, max donor effective priority),
// the value spec.md §3 calls simply "priority" and which drives all queue
// ordering. It is recomputed here rather than cached, per spec.md §4.5's
// "computed lazily but always re-derived" rule, which is how this field
// stays correct without a separate dirty-tracking mechanism.
func (t *Thread) EffectivePriority() int {
	best := t.ownPriority
	t.donators.forEach(func(d *Thread) {
		if dp := d.EffectivePriority(); dp > best {
			best = dp
		}
	})
	return best
}

// checkMagic panics with a StackOverflowError if the sentinel has been
// clobbered, the same fatal assertion Pintos's thread_current() performs.
func (t *Thread) checkMagic() {
	if t.magic != threadMagic {
		panic(&StackOverflowError{Tid: t.id, Name: t.name})
	}
}

func (t *Thread) String() string {
	return fmt.Sprintf("thread(%d,%q,pri=%d/%d,%s)", t.id, t.name, t.priority, t.ownPriority, t.state)
}
