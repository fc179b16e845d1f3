package sched

import (
	"container/heap"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Kernel is a single scheduler instance (spec.md §2): the thread table, the
// ready queue, the sleep queue, and the single currently-dispatched thread.
// All scheduling state is protected by mu, the Go realization of Pintos
// disabling interrupts around these same operations (SPEC_FULL.md, "Go
// realization of the concurrency model").
//
// A Kernel is used by calling Init once, then Start once, then driving it
// from three collaborators: the creator of threads (Create), a timer
// collaborator calling Tick once per simulated clock tick, and the threads
// themselves calling Block/Unblock/Yield/MaybeYield/Exit from their own
// goroutines. Start hands the baton to the calling goroutine itself,
// registered as the "main" thread, so that goroutine becomes one of those
// collaborators too. Block, Yield, Exit, and the immediate-yield path of
// Create must only be called by the currently running thread's own
// goroutine (a Task, or main's goroutine while main is current), never from some other thread or
// from outside the scheduler entirely — there is exactly one goroutine
// live (not parked on its own resume channel) at any instant, and these
// calls are how that baton is handed to whichever goroutine runs next.
type Kernel struct {
	mu sync.Mutex

	options kernelOptions
	logger  Logger
	metrics *Metrics

	initialized bool
	started     bool

	ticks atomic.Int64

	table  *threadTable
	ready  *readyQueue
	sleepQ *sleepQueue

	current *Thread
	idle    *Thread
	main    *Thread

	mlfqs   bool
	loadAvg fp
}

// NewKernel allocates an uninitialized Kernel. Call Init, then Start.
func NewKernel() *Kernel {
	return &Kernel{}
}

// Init allocates the scheduler's internal structures and the idle thread
// (spec.md §4.2's "always one runnable thread"). It must be called exactly
// once, before Start.
func (k *Kernel) Init(opts ...KernelOption) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.initialized {
		return ErrDoubleInit
	}

	k.options = resolveKernelOptions(opts)
	k.logger = k.options.logger
	k.metrics = k.options.metrics
	k.mlfqs = k.options.mlfqs

	k.table = newThreadTable()
	k.ready = newReadyQueue()
	k.sleepQ = &sleepQueue{}
	heap.Init(k.sleepQ)

	idleID := k.table.allocate()
	idle := &Thread{
		id:          idleID,
		name:        "idle",
		kernel:      k,
		state:       Blocked,
		ownPriority: PriMin,
		priority:    PriMin,
		donators:    newPQueue(),
		resume:      make(chan struct{}, 1),
		done:        make(chan struct{}),
		magic:       threadMagic,
	}
	idle.entry = k.idleLoop
	k.table.insert(idle)
	k.idle = idle

	go func() {
		<-idle.resume
		idle.entry(idle)
	}()

	// main represents the goroutine that calls Init/Start itself (spec.md
	// §6's boot thread, the Go realization of Pintos's thread_init setting
	// up a descriptor for the already-running kernel thread before
	// thread_start ever creates idle). It has no spawned goroutine of its
	// own and no entry: the caller's own stack *is* its execution context,
	// which is what lets Start hand it the baton without a channel send.
	mainID := k.table.allocate()
	main := &Thread{
		id:          mainID,
		name:        "main",
		kernel:      k,
		ownPriority: PriDefault,
		priority:    PriDefault,
		donators:    newPQueue(),
		resume:      make(chan struct{}, 1),
		done:        make(chan struct{}),
		magic:       threadMagic,
	}
	k.table.insert(main)
	k.main = main

	k.logf(LogLevelInfo, "kernel initialized, mlfqs=%v", k.mlfqs)
	k.initialized = true
	return nil
}

// Start hands the baton to the calling goroutine itself, registered as the
// "main" thread (spec.md §6's boot-time "init, then start" sequence).
// Unlike every other dispatch, this one needs no channel send: the caller
// is already running, so it simply becomes current. From here on, the
// calling goroutine participates in the single-goroutine-live invariant
// like any other thread's Task, and may call Create, Block, Yield, and the
// rest directly.
func (k *Kernel) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.initialized {
		return ErrNotStarted
	}
	if k.started {
		return ErrAlreadyStarted
	}
	k.started = true
	k.main.state = Running
	k.current = k.main
	return nil
}

// Main returns the thread descriptor representing the goroutine that
// called Start, or nil before Init has run.
func (k *Kernel) Main() *Thread {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.main
}

// Create allocates a new thread descriptor, makes it Ready, and spawns its
// goroutine parked on its resume channel (spec.md §4.1). If the new thread
// outranks the caller, and Create was itself called from a running
// thread's Task, the caller yields immediately (spec.md scenario 1).
func (k *Kernel) Create(name string, priority int, entry Task) (*Thread, error) {
	if len(name) > 15 {
		k.logf(LogLevelDebug, "thread name %q truncated to 15 bytes", name)
		name = name[:15]
	}

	k.mu.Lock()
	if !k.started {
		k.mu.Unlock()
		return nil, ErrNotStarted
	}

	id := k.table.allocate()
	if id < 0 {
		k.mu.Unlock()
		return nil, ErrThreadTableFull
	}

	t := &Thread{
		id:          id,
		name:        name,
		kernel:      k,
		state:       Ready,
		ownPriority: priority,
		priority:    priority,
		donators:    newPQueue(),
		resume:      make(chan struct{}, 1),
		done:        make(chan struct{}),
		entry:       entry,
		magic:       threadMagic,
	}
	k.table.insert(t)
	k.ready.push(t)

	caller := k.current
	needYield := caller != nil && k.ready.headOutranks(caller)
	k.mu.Unlock()

	k.logf(LogLevelDebug, "created thread %d (%q) priority=%d", t.id, t.name, priority)

	go func() {
		<-t.resume
		defer k.exit(t)
		t.entry(t)
	}()

	if needYield {
		k.Yield()
	}
	return t, nil
}

// exit retires the current thread's descriptor and dispatches the next
// runnable thread. Called once, automatically, after a thread's Task
// returns; user code never calls this directly (spec.md §4.1 "Exit").
func (k *Kernel) exit(t *Thread) {
	k.mu.Lock()
	t.state = Dying
	k.table.remove(t)
	k.logf(LogLevelDebug, "thread %d (%q) exiting", t.id, t.name)
	k.dispatchLocked()
	k.mu.Unlock()
	close(t.done)
}

// Exit terminates the calling thread immediately. It is equivalent to
// returning from the thread's Task, provided for callers that want to exit
// from deeper in a call stack (spec.md §4.1); the deferred call to exit
// installed by Create still runs via runtime.Goexit's deferred-function
// guarantee.
func (k *Kernel) Exit() {
	runtime.Goexit()
}

// Block transitions the calling thread to Blocked and dispatches the next
// runnable thread. The caller resumes only once some other thread calls
// Unblock on it and the scheduler later selects it again (spec.md §4.1,
// §4.4).
func (k *Kernel) Block() {
	k.mu.Lock()
	t := k.current
	t.state = Blocked
	k.dispatchLocked()
	k.mu.Unlock()
	<-t.resume
}

// Unblock moves a Blocked thread back onto the ready queue. It does not
// itself cause a context switch; callers that need the immediate-yield
// behavior of spec.md §4.4/§4.5 should follow with MaybeYield.
func (k *Kernel) Unblock(t *Thread) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t.state != Blocked {
		return ErrNotBlocked
	}
	k.ready.push(t)
	k.logf(LogLevelDebug, "unblocked thread %d (%q)", t.id, t.name)
	return nil
}

// Yield puts the calling thread back on the ready queue at its current
// priority and dispatches the next runnable thread, which may be the
// caller itself if nothing else outranks it (spec.md §4.2).
func (k *Kernel) Yield() {
	k.mu.Lock()
	t := k.current
	t.state = Ready
	k.ready.push(t)
	if k.metrics != nil {
		k.metrics.recordVoluntaryYield()
	}
	k.dispatchLocked()
	k.mu.Unlock()
	<-t.resume
}

// MaybeYield yields if the ready queue's head now outranks the calling
// thread, or if the calling thread has exhausted its time slice and an
// equal-priority peer is ready (spec.md §4.2(c)). This is the cooperative
// safepoint threads and the scheduler itself use in place of Pintos's
// intr_yield_on_return: a tick or an unblock can only request a yield,
// never force one mid-instruction, since this realization has no hardware
// interrupt to reschedule on (SPEC_FULL.md, "Go realization of the
// concurrency model").
func (k *Kernel) MaybeYield() {
	k.mu.Lock()
	t := k.current
	shouldYield := k.shouldPreemptLocked(t)
	k.mu.Unlock()
	if shouldYield {
		k.Yield()
	}
}

// shouldPreemptLocked reports whether t should give up the CPU: either a
// ready thread strictly outranks it, or t has run for at least timeSlice
// ticks and a ready thread at the same effective priority is waiting for
// its turn. Must be called with k.mu held.
func (k *Kernel) shouldPreemptLocked(t *Thread) bool {
	if k.ready.headOutranks(t) {
		return true
	}
	if k.options.timeSlice > 0 && t.ticksRunning >= k.options.timeSlice {
		return k.ready.headAtLeast(t.EffectivePriority())
	}
	return false
}

// Tick advances the simulated clock by one tick (spec.md §4.3, external
// timer collaborator): it wakes any threads whose sleep deadline has
// arrived, advances the current thread's time-slice counter (spec.md
// §4.2(c)), and, under MLFQS, drives recent-CPU and priority recomputation.
// It does not itself switch threads; the woken threads merely become
// eligible and the running thread merely becomes preemptible, observed at
// the next MaybeYield safepoint.
func (k *Kernel) Tick() {
	k.mu.Lock()
	now := k.ticks.Add(1)
	for _, woken := range k.sleepQ.popExpired(now) {
		woken.state = Ready
		k.ready.push(woken)
	}
	if cur := k.current; cur != nil && cur != k.idle {
		cur.ticksRunning++
	}
	if k.mlfqs {
		k.mlfqsOnTick()
	}
	if k.metrics != nil {
		k.metrics.queue.updateReady(k.ready.len())
		k.metrics.queue.updateSleep(len(*k.sleepQ))
	}
	k.mu.Unlock()
}

// Sleep blocks the calling thread until ticks more ticks have elapsed
// (spec.md §4.3). A non-positive duration returns immediately.
func (k *Kernel) Sleep(ticks int64) {
	if ticks <= 0 {
		return
	}
	k.mu.Lock()
	t := k.current
	wakeAt := k.ticks.Load() + ticks
	t.state = Blocked
	k.sleepQ.insert(t, wakeAt)
	k.dispatchLocked()
	k.mu.Unlock()
	<-t.resume
}

// CurrentThread returns the thread currently dispatched, after validating
// its sentinel (spec.md §7's fatal-on-corruption check).
func (k *Kernel) CurrentThread() *Thread {
	k.mu.Lock()
	t := k.current
	k.mu.Unlock()
	t.checkMagic()
	return t
}

// Foreach applies action to every live thread, in an unspecified order
// (spec.md §4.1's thread_foreach).
func (k *Kernel) Foreach(action func(*Thread)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.table.forEach(action)
}

// SetPriority sets the calling thread's base priority. Under MLFQS this is
// rejected in favor of SetNice (spec.md §4.6 note); otherwise it yields
// immediately if the change drops the caller below the ready queue's head.
func (k *Kernel) SetPriority(n int) {
	if n < PriMin {
		n = PriMin
	}
	if n > PriMax {
		n = PriMax
	}

	k.mu.Lock()
	if k.mlfqs {
		k.mu.Unlock()
		return
	}
	t := k.current
	t.ownPriority = n
	needYield := k.ready.headOutranks(t)
	k.mu.Unlock()

	if needYield {
		k.Yield()
	}
}

// GetPriority returns the calling thread's effective priority, including
// any donation (spec.md §4.5).
func (k *Kernel) GetPriority() int {
	k.mu.Lock()
	t := k.current
	k.mu.Unlock()
	return t.EffectivePriority()
}

// readyHeadOutranks reports whether the ready queue's head outranks t.
// Exposed at the Kernel level so MLFQS bookkeeping (mlfqs.go) doesn't need
// to reach into the readyQueue directly.
func (k *Kernel) readyHeadOutranks(t *Thread) bool {
	return k.ready.headOutranks(t)
}

// dispatchLocked selects the next thread to run and hands it the baton. It
// must be called with mu held, and never blocks: the caller is responsible
// for parking its own goroutine (or, for a terminating thread, not parking
// at all) after releasing mu.
func (k *Kernel) dispatchLocked() {
	next := k.ready.popHighest()
	if next == nil {
		next = k.idle
	}
	k.current = next
	next.state = Running
	next.ticksRunning = 0
	if k.metrics != nil {
		k.metrics.recordContextSwitch()
	}
	next.resume <- struct{}{}
}

// idleLoop is the idle thread's Task: it yields away to any ready thread
// and otherwise spins gently, the Go-realization analogue of Pintos's idle
// thread executing hlt until the next interrupt (spec.md §4.2 design
// notes).
func (k *Kernel) idleLoop(t *Thread) {
	for {
		k.mu.Lock()
		empty := k.ready.len() == 0
		k.mu.Unlock()
		if empty {
			runtime.Gosched()
			continue
		}
		k.MaybeYield()
	}
}

func (k *Kernel) logf(level LogLevel, format string, args ...any) {
	logger := k.logger
	if logger == nil {
		logger = getGlobalLogger()
	}
	if !logger.IsEnabled(level) {
		return
	}
	logger.Log(LogEntry{
		Level:    level,
		Category: "scheduler",
		Tick:     k.ticks.Load(),
		Message:  fmt.Sprintf(format, args...),
	})
}
