// Package sched implements a Pintos-style single-processor thread
// scheduler: a thread table and lifecycle ([Kernel.Create],
// [Kernel.Exit], [Kernel.Foreach]), ready-queue dispatch and a
// tick-driven sleep queue ([Kernel.Tick], [Kernel.Sleep]),
// synchronization primitives built on block/unblock ([Semaphore], [Lock],
// [Cond]), priority donation across chains of held locks, and an
// alternative multi-level feedback queue scheduler (MLFQS, enabled via
// [WithMLFQS]).
//
// # Architecture
//
// A [Kernel] is the scheduler core: at any instant exactly one [Thread] is
// Running, and every other live thread is either Ready (in the ready
// queue), Blocked (on a wait list or the sleep queue), or Dying. There is
// no preemptive interrupt to force a context switch; instead, threads
// voluntarily hand off control by calling [Kernel.Block], [Kernel.Yield],
// or returning from their [Task], and cooperative safepoints
// ([Kernel.MaybeYield]) check whether a higher-priority thread has since
// become ready. This is the Go realization of Pintos disabling interrupts
// around scheduling decisions and relying on intr_yield_on_return for
// deferred preemption; see SPEC_FULL.md for the full design rationale.
//
// [Kernel.Start] makes the calling goroutine itself the running "main"
// thread, whose descriptor [Kernel.Init] registered, rather than handing
// off to a freshly spawned one, mirroring how
// Pintos's thread_init gives the already-running boot code a thread
// descriptor before thread_start ever creates idle. That goroutine may
// then call [Kernel.Create], [Kernel.Block], and the rest directly, the
// same as any thread's own [Task] would.
//
// # Thread Safety
//
// All scheduling state is owned by the Kernel's internal mutex. Thread
// descriptors returned to callers ([Kernel.Create], [Kernel.CurrentThread])
// expose read-only accessors, plus the caller-owned [Thread.ProcessData]
// field, and the accessors are safe to call from any goroutine,
// though [Thread.State] and [Thread.EffectivePriority] are momentary
// snapshots, exactly as reading thread_current()->status from another
// thread would be in Pintos.
//
// # Usage
//
//	k := sched.NewKernel()
//	if err := k.Init(sched.WithLogger(sched.NewDefaultLogger(sched.LogLevelInfo))); err != nil {
//	    log.Fatal(err)
//	}
//	if err := k.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	k.Create("worker", sched.PriDefault, func(t *sched.Thread) {
//	    fmt.Println("running as", t.Name())
//	})
//
//	for i := 0; i < 1000; i++ {
//	    k.Tick()
//	}
//
// # Error Types
//
// Kernel operations return sentinel errors ([ErrThreadTableFull],
// [ErrNotBlocked], [ErrLockNotHeld], [ErrLockAlreadyHeld],
// [ErrDoubleInit], [ErrAlreadyStarted], [ErrNotStarted]) matched with
// [errors.Is], plus typed
// assertion errors ([StackOverflowError], [DonationCycleError],
// [BadFileDescriptorError]) for conditions serious enough to report
// structurally rather than as a plain sentinel.
package sched
