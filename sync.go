package sched

// Semaphore is a counting semaphore whose wait list is priority-ordered
// (spec.md §4.4): Down blocks while the count is zero, Up wakes the
// highest-priority waiter first. Modeled directly on Pintos's sema_down/
// sema_up, with list_insert_ordered replaced by the shared pqueue.
type Semaphore struct {
	kernel  *Kernel
	value   int
	waiters *pqueue
}

// NewSemaphore creates a semaphore with the given initial value.
func NewSemaphore(k *Kernel, value int) *Semaphore {
	return &Semaphore{kernel: k, value: value, waiters: newPQueue()}
}

// Down waits for the semaphore's value to be positive, then decrements it.
func (s *Semaphore) Down() {
	k := s.kernel
	k.mu.Lock()
	for s.value == 0 {
		t := k.current
		t.state = Blocked
		s.waiters.push(t, &t.qm)
		k.dispatchLocked()
		k.mu.Unlock()
		<-t.resume
		k.mu.Lock()
	}
	s.value--
	k.mu.Unlock()
}

// Up increments the semaphore's value and wakes the highest-priority
// waiter, if any, then passes the MaybeYield safepoint, so the caller
// yields at once if the woken thread outranks it (spec.md §4.4).
func (s *Semaphore) Up() {
	k := s.kernel
	k.mu.Lock()
	s.value++
	if t := s.waiters.popHighest(); t != nil {
		t.state = Ready
		k.ready.push(t)
	}
	k.mu.Unlock()
	k.MaybeYield()
}

// Value returns the semaphore's current count.
func (s *Semaphore) Value() int {
	k := s.kernel
	k.mu.Lock()
	defer k.mu.Unlock()
	return s.value
}

// Lock is a binary semaphore with an owning thread and priority donation
// (spec.md §4.4, §4.5). The zero value is not usable; construct with
// NewLock.
type Lock struct {
	kernel *Kernel
	sema   *Semaphore
	holder *Thread
}

// NewLock creates an unheld lock.
func NewLock(k *Kernel) *Lock {
	return &Lock{kernel: k, sema: NewSemaphore(k, 1)}
}

// Acquire blocks until the lock is free, then takes it. If the lock is
// currently held, the calling thread donates its effective priority up the
// holder's waiting-lock chain first (spec.md §4.5), unless MLFQS is
// enabled, which disables donation entirely. The lock is still acquired
// normally even when donation's chain walk gets truncated; a non-nil
// *[DonationCycleError] return only reports that the holder graph is
// suspiciously deep (likely cyclic) and the donation beyond that point was
// not applied.
func (l *Lock) Acquire() error {
	k := l.kernel

	k.mu.Lock()
	t := k.current
	if l.holder == t {
		k.mu.Unlock()
		return ErrLockAlreadyHeld
	}
	var donationErr error
	if l.holder != nil && !k.mlfqs {
		t.waitingLock = l
		if k.donatePriority(t, l.holder, 0) {
			donationErr = &DonationCycleError{Tid: t.id, Depth: maxDonationChainDepth}
		}
	}
	k.mu.Unlock()

	l.sema.Down()

	k.mu.Lock()
	t.waitingLock = nil
	l.holder = t
	k.mu.Unlock()
	return donationErr
}

// Release gives up the lock, restoring the caller's priority to whatever
// it would be without donations from threads that were waiting on this
// specific lock (spec.md §4.5), then wakes the next waiter.
func (l *Lock) Release() error {
	k := l.kernel

	k.mu.Lock()
	if l.holder != k.current {
		k.mu.Unlock()
		return ErrLockNotHeld
	}
	k.restorePriorityLocked(l.holder, l)
	l.holder = nil
	k.mu.Unlock()

	l.sema.Up()
	k.MaybeYield()
	return nil
}

// IsHeldByCurrent reports whether the calling thread holds the lock.
func (l *Lock) IsHeldByCurrent() bool {
	k := l.kernel
	k.mu.Lock()
	defer k.mu.Unlock()
	return l.holder == k.current
}

// condWaiter is a one-shot rendezvous used by Cond, matching Pintos's
// cond_wait, which gives each waiter its own private semaphore rather than
// waiting on the condition variable's wait list directly. It stores the
// waiting thread itself, not a priority snapshot, so Signal/Broadcast can
// compare live EffectivePriority: a waiter that becomes a donation target
// while parked must still be woken ahead of a higher-base-priority peer
// that isn't (spec.md §4.5's donation applies everywhere priority ordering
// does).
type condWaiter struct {
	thread *Thread
	sema   *Semaphore
}

// Cond is a condition variable used with a Lock (spec.md §4.4).
type Cond struct {
	kernel  *Kernel
	waiters []*condWaiter
}

// NewCond creates a condition variable.
func NewCond(k *Kernel) *Cond {
	return &Cond{kernel: k}
}

// Wait atomically releases l and blocks the caller until Signal or
// Broadcast wakes it, then reacquires l before returning. l must be held
// by the caller.
func (c *Cond) Wait(l *Lock) {
	k := c.kernel
	k.mu.Lock()
	w := &condWaiter{
		thread: k.current,
		sema:   NewSemaphore(k, 0),
	}
	c.waiters = append(c.waiters, w)
	k.mu.Unlock()

	l.Release()
	w.sema.Down()
	l.Acquire()
}

// Signal wakes the highest-priority waiter, if any (spec.md §4.4). l must
// be held by the caller.
func (c *Cond) Signal(l *Lock) {
	k := c.kernel
	k.mu.Lock()
	if len(c.waiters) == 0 {
		k.mu.Unlock()
		return
	}
	best := 0
	for i := 1; i < len(c.waiters); i++ {
		if c.waiters[i].thread.EffectivePriority() > c.waiters[best].thread.EffectivePriority() {
			best = i
		}
	}
	w := c.waiters[best]
	c.waiters = append(c.waiters[:best], c.waiters[best+1:]...)
	k.mu.Unlock()

	w.sema.Up()
}

// Broadcast wakes every waiter (spec.md §4.4). l must be held by the
// caller.
func (c *Cond) Broadcast(l *Lock) {
	for {
		k := c.kernel
		k.mu.Lock()
		empty := len(c.waiters) == 0
		k.mu.Unlock()
		if empty {
			return
		}
		c.Signal(l)
	}
}
