package sched

// Thread priority bounds and default, matching Pintos's threads/thread.h.
const (
	PriMin     = 0
	PriMax     = 63
	PriDefault = 31
)

// Niceness bounds for the MLFQS scheduler.
const (
	NiceMin = -20
	NiceMax = 20
)

// threadMagic is the fixed sentinel written at descriptor creation and
// checked on every CurrentThread() call; a mismatch means the simulated
// kernel stack has been corrupted (spec.md §3, §7).
const threadMagic = 0xcd6abf4b

// ThreadState is a thread's lifecycle state (spec.md §3).
//
// Transitions: Ready<->Running via the scheduler; Running->Blocked via
// Block(); Blocked->Ready via Unblock(); any->Dying via Exit().
type ThreadState int

const (
	// Running is the single currently-dispatched thread's state.
	Running ThreadState = iota
	// Ready means runnable and sitting in the ready queue.
	Ready
	// Blocked means waiting on a wait list or the sleep queue.
	Blocked
	// Dying means Exit has been called; the descriptor survives only until
	// the next scheduled thread reclaims its resources.
	Dying
)

// String implements fmt.Stringer for log/debug output.
func (s ThreadState) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Ready:
		return "READY"
	case Blocked:
		return "BLOCKED"
	case Dying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}
