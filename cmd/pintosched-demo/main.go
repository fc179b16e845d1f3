// Command pintosched-demo drives a Kernel through the seed scenarios
// spec.md §8 enumerates: priority preemption, priority donation, semaphore
// ordering, timer sleep, and (with -o mlfqs) the MLFQS fairness and
// fixed-point behaviors.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkwoo2001/pintos-sched"
)

func main() {
	var mlfqs bool
	flag.BoolVar(&mlfqs, "o", false, "pass 'mlfqs' to select the multi-level feedback queue scheduler")
	var scenario = flag.String("scenario", "preemption", "scenario to run: preemption, donation, semaphore, sleep, mlfqs")
	var verbose = flag.Bool("v", false, "verbose logging")
	flag.Parse()

	k := sched.NewKernel()
	opts := []sched.KernelOption{sched.WithMLFQS(mlfqs)}
	if *verbose {
		opts = append(opts, sched.WithLogger(sched.NewDefaultLogger(sched.LogLevelDebug)))
	}
	if err := k.Init(opts...); err != nil {
		log.Fatalf("init: %v", err)
	}
	if err := k.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}

	switch *scenario {
	case "preemption":
		runPreemption(k)
	case "donation":
		runDonation(k)
	case "semaphore":
		runSemaphore(k)
	case "sleep":
		runSleep(k)
	case "mlfqs":
		runMLFQS(k)
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *scenario)
		os.Exit(1)
	}
}

// tickUntil pumps Tick the given number of times with a small real delay,
// giving spawned goroutines a chance to run between ticks.
func tickUntil(k *sched.Kernel, ticks int) {
	for i := 0; i < ticks; i++ {
		k.Tick()
		k.MaybeYield()
		time.Sleep(time.Millisecond)
	}
}

func runPreemption(k *sched.Kernel) {
	fmt.Println("creating a low-priority thread, then a higher-priority one")
	_, _ = k.Create("low", sched.PriDefault-10, func(t *sched.Thread) {
		fmt.Println("low: running")
	})
	_, _ = k.Create("high", sched.PriDefault+10, func(t *sched.Thread) {
		fmt.Println("high: running, should preempt low immediately")
	})
	tickUntil(k, 10)
}

func runDonation(k *sched.Kernel) {
	lock := sched.NewLock(k)
	fmt.Println("low holds a lock, medium and high both block on it")
	_, _ = k.Create("low", sched.PriDefault-10, func(t *sched.Thread) {
		_ = lock.Acquire()
		fmt.Println("low: acquired, donated priority is", k.GetPriority())
		tickUntil(k, 2)
		_ = lock.Release()
	})
	_, _ = k.Create("medium", sched.PriDefault, func(t *sched.Thread) {
		_ = lock.Acquire()
		_ = lock.Release()
	})
	_, _ = k.Create("high", sched.PriDefault+10, func(t *sched.Thread) {
		_ = lock.Acquire()
		fmt.Println("high: acquired after donation chain resolved")
		_ = lock.Release()
	})
	tickUntil(k, 10)
}

func runSemaphore(k *sched.Kernel) {
	sema := sched.NewSemaphore(k, 0)
	fmt.Println("three waiters at different priorities block on Down; Up wakes highest first")
	for i, pri := range []int{sched.PriDefault - 5, sched.PriDefault + 5, sched.PriDefault} {
		name := fmt.Sprintf("waiter-%d", i)
		_, _ = k.Create(name, pri, func(t *sched.Thread) {
			sema.Down()
			fmt.Println(t.Name(), "woke at priority", pri)
		})
	}
	tickUntil(k, 2)
	sema.Up()
	sema.Up()
	sema.Up()
	tickUntil(k, 5)
}

func runSleep(k *sched.Kernel) {
	fmt.Println("a thread sleeps for 20 ticks, the timer drives it awake")
	_, _ = k.Create("sleeper", sched.PriDefault, func(t *sched.Thread) {
		fmt.Println("sleeper: going to sleep")
		k.Sleep(20)
		fmt.Println("sleeper: woke up")
	})
	tickUntil(k, 25)
}

func runMLFQS(k *sched.Kernel) {
	fmt.Println("several equal-priority CPU-bound threads fairness-tested under MLFQS")
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("cpu-hog-%d", i)
		_, _ = k.Create(name, sched.PriDefault, func(t *sched.Thread) {
			for j := 0; j < 50; j++ {
				k.MaybeYield()
			}
		})
	}
	tickUntil(k, 200)
	fmt.Println("load average (x100):", k.GetLoadAvg())
}
