package sched

import "github.com/pkwoo2001/pintos-sched/internal/fixedpoint"

// fp is the 17.14 fixed-point type used for recent-CPU and load-average
// bookkeeping (spec.md §4.6). Aliased locally so the rest of the package
// doesn't need to import internal/fixedpoint directly.
type fp = fixedpoint.FP

// timerFreq is the assumed timer interrupt frequency (spec.md §6, "100 Hz by
// convention"); load-average and recent-CPU recomputation happen once every
// timerFreq ticks.
const timerFreq = 100

// priorityRecomputeInterval is how often (in ticks) MLFQS recomputes every
// thread's priority from its recent-CPU and niceness (spec.md §4.2 "every
// 4th tick").
const priorityRecomputeInterval = 4

// mlfqsOnTick updates recent-CPU for the running thread every tick, and
// triggers the periodic priority and load-average recomputations. Must be
// called with k.mu held, once per call to Tick, only when MLFQS is enabled.
func (k *Kernel) mlfqsOnTick() {
	if k.current != nil && k.current != k.idle {
		k.current.recentCPU = k.current.recentCPU.AddInt(1)
	}

	if k.ticks.Load()%priorityRecomputeInterval == 0 {
		k.mlfqsRecomputeAllPriorities()
	}

	if k.ticks.Load()%timerFreq == 0 {
		k.mlfqsRecomputeLoadAvg()
		k.mlfqsRecomputeAllRecentCPU()
	}
}

// mlfqsPriority computes PRI_MAX - round(recent_cpu/4) - (nice*2), clamped
// to [PriMin, PriMax] (spec.md §4.6).
func mlfqsPriority(recentCPU fp, nice int) int {
	p := PriMax - recentCPU.DivInt(4).ToIntRounded() - nice*2
	if p < PriMin {
		p = PriMin
	}
	if p > PriMax {
		p = PriMax
	}
	return p
}

// mlfqsRecomputeAllPriorities recomputes every live thread's priority and
// resorts the ready queue accordingly. Must be called with k.mu held.
func (k *Kernel) mlfqsRecomputeAllPriorities() {
	k.table.forEach(func(t *Thread) {
		t.ownPriority = mlfqsPriority(t.recentCPU, t.nice)
		t.priority = t.ownPriority // donation is disabled under MLFQS
		if t.qm.queued() && t.qm.pq == k.ready.pq {
			k.ready.pq.requeue(t, &t.qm)
		}
	})
}

// mlfqsRecomputeLoadAvg implements:
//
//	ready_threads = count(ready) + (1 if running is not idle else 0)
//	load_avg = (59/60)*load_avg + (1/60)*ready_threads
//
// Must be called with k.mu held.
func (k *Kernel) mlfqsRecomputeLoadAvg() {
	readyThreads := k.ready.pq.len()
	if k.current != nil && k.current != k.idle {
		readyThreads++
	}
	coeff59over60 := fixedpoint.FromInt(59).Div(fixedpoint.FromInt(60))
	coeff1over60 := fixedpoint.FromInt(1).Div(fixedpoint.FromInt(60))
	k.loadAvg = coeff59over60.Mul(k.loadAvg).Add(coeff1over60.Mul(fixedpoint.FromInt(readyThreads)))
}

// mlfqsRecomputeAllRecentCPU implements, for every thread:
//
//	recent_cpu = (2*load_avg)/(2*load_avg+1) * recent_cpu + nice
//
// Must be called with k.mu held.
func (k *Kernel) mlfqsRecomputeAllRecentCPU() {
	two := fixedpoint.FromInt(2)
	coeff := two.Mul(k.loadAvg).Div(two.Mul(k.loadAvg).Add(fixedpoint.FromInt(1)))
	k.table.forEach(func(t *Thread) {
		t.recentCPU = coeff.Mul(t.recentCPU).AddInt(t.nice)
	})
}

// GetLoadAvg returns round(100*load_avg) (spec.md §4.6).
func (k *Kernel) GetLoadAvg() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.loadAvg.MulInt(100).ToIntRounded()
}

// GetRecentCPU returns round(100*recent_cpu) for the given thread.
func (k *Kernel) GetRecentCPU(t *Thread) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return t.recentCPU.MulInt(100).ToIntRounded()
}

// GetNice returns the thread's raw niceness.
func (k *Kernel) GetNice(t *Thread) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return t.nice
}

// SetNice updates the current thread's niceness and immediately recomputes
// its priority, yielding if it is no longer the highest-priority runnable
// thread (spec.md §4.6).
func (k *Kernel) SetNice(n int) {
	if n < NiceMin {
		n = NiceMin
	}
	if n > NiceMax {
		n = NiceMax
	}

	k.mu.Lock()
	t := k.current
	t.nice = n
	t.ownPriority = mlfqsPriority(t.recentCPU, t.nice)
	t.priority = t.ownPriority
	needYield := k.readyHeadOutranks(t)
	k.mu.Unlock()

	if needYield {
		k.Yield()
	}
}
