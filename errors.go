package sched

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by kernel operations. Matched with errors.Is,
// mirroring Pintos's convention of a small fixed set of failure reasons
// (TID_ERROR, PANIC on list_remove of an unlinked elem, and similar) made
// explicit as values instead of magic constants.
var (
	// ErrThreadTableFull is returned by Create when no thread ids remain.
	// Pintos has no equivalent check: tid_t simply overflows. Returning an
	// error here is a deliberate hardening of that gap.
	ErrThreadTableFull = errors.New("sched: thread table full")

	// ErrNotBlocked is returned by Unblock when the target thread's state is
	// not Blocked (spec.md §4.1's state-machine invariant).
	ErrNotBlocked = errors.New("sched: thread is not blocked")

	// ErrLockNotHeld is returned by Lock.Release when called by a thread
	// other than the current holder (spec.md §4.4).
	ErrLockNotHeld = errors.New("sched: release of lock not held by caller")

	// ErrLockAlreadyHeld is returned by Lock.Acquire when the caller already
	// holds the lock; Pintos asserts this with lock_held_by_current_thread.
	ErrLockAlreadyHeld = errors.New("sched: recursive acquire of already-held lock")

	// ErrDoubleInit is returned by Init if called more than once on the same
	// Kernel.
	ErrDoubleInit = errors.New("sched: kernel already initialized")

	// ErrNotStarted is returned by Create when Start has not run yet, and by
	// Start when Init has not run yet.
	ErrNotStarted = errors.New("sched: kernel not started")

	// ErrAlreadyStarted is returned by Start if called more than once on the
	// same Kernel.
	ErrAlreadyStarted = errors.New("sched: kernel already started")
)

// StackOverflowError reports that a thread's sentinel magic value no longer
// matches what was written at descriptor creation (spec.md §3, §7): in
// Pintos this means the kernel stack, which grows down from the top of the
// same page the descriptor lives at the bottom of, has overrun into the
// descriptor. This realization has no shared stack to overrun, so the only
// way to trigger it is a caller writing through Thread's unexported fields
// via reflection or unsafe; it exists to keep CurrentThread's fatal check
// meaningful documentation of that invariant.
type StackOverflowError struct {
	Tid  int
	Name string
}

// Error implements the error interface.
func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("sched: thread %d (%q): stack overflow, magic number corrupted", e.Tid, e.Name)
}

// DonationCycleError reports that walking the priority-donation chain
// (spec.md §4.5, §7 "chain traversal and acyclicity") exceeded
// maxDonationChainDepth, which would otherwise indicate a cycle in the
// waiting_lock/holder graph.
type DonationCycleError struct {
	Tid   int
	Depth int
}

// Error implements the error interface.
func (e *DonationCycleError) Error() string {
	return fmt.Sprintf("sched: thread %d: donation chain exceeded depth %d, suspected cycle", e.Tid, e.Depth)
}

// BadFileDescriptorError reports an unsupported fd passed to console I/O
// (spec.md §9, resolving the fd 0/1/2 Open Question against
// original_source/src/userprog/syscall.c).
type BadFileDescriptorError struct {
	Fd int
}

// Error implements the error interface.
func (e *BadFileDescriptorError) Error() string {
	return fmt.Sprintf("sched: unsupported file descriptor %d", e.Fd)
}
