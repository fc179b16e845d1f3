package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphoreUpWakesHighestWaiterFirst(t *testing.T) {
	k := newStartedKernel(t)
	k.SetPriority(PriMin)
	sema := NewSemaphore(k, 0)

	var mu sync.Mutex
	var woke []string
	record := func(name string) {
		mu.Lock()
		woke = append(woke, name)
		mu.Unlock()
	}

	waiterDone := make(chan struct{}, 3)
	spawn := func(name string, pri int) {
		_, err := k.Create(name, pri, func(*Thread) {
			sema.Down()
			record(name)
			waiterDone <- struct{}{}
		})
		require.NoError(t, err)
	}

	spawn("low", PriDefault-10)
	spawn("mid", PriDefault)
	spawn("high", PriDefault+10)
	k.Yield()

	assert.Equal(t, 0, sema.Value())

	sema.Up()
	k.Yield()
	sema.Up()
	k.Yield()
	sema.Up()
	k.Yield()

	for i := 0; i < 3; i++ {
		select {
		case <-waiterDone:
		case <-time.After(time.Second):
			t.Fatal("a waiter never woke")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"high", "mid", "low"}, woke)
}

func TestLockAcquireReleaseRoundTrip(t *testing.T) {
	k := newStartedKernel(t)
	k.SetPriority(PriMin)
	lock := NewLock(k)

	acquired := make(chan struct{})
	released := make(chan struct{})
	_, err := k.Create("worker", PriDefault-1, func(*Thread) {
		require.NoError(t, lock.Acquire())
		close(acquired)
		assert.True(t, lock.IsHeldByCurrent())
		require.NoError(t, lock.Release())
		close(released)
	})
	require.NoError(t, err)
	k.Yield()

	<-acquired
	<-released
}

func TestLockAcquireRejectsRecursiveAcquire(t *testing.T) {
	k := newStartedKernel(t)
	lock := NewLock(k)
	require.NoError(t, lock.Acquire())
	assert.ErrorIs(t, lock.Acquire(), ErrLockAlreadyHeld)
}

func TestLockReleaseRejectsNonHolder(t *testing.T) {
	k := newStartedKernel(t)
	lock := NewLock(k)
	assert.ErrorIs(t, lock.Release(), ErrLockNotHeld)
}

// TestLockAcquireDonatesPriority exercises spec.md's priority donation
// scenario: a low-priority holder blocks a high-priority waiter, so the
// waiter donates its priority until the holder releases the lock.
//
// The holder parks on Kernel.Block (not a raw Go channel receive) while
// "holding" the lock so the scheduler's single-goroutine-live invariant
// stays intact: a Task that blocked on a bare channel instead would leave
// the kernel believing it is still Running with nothing else able to run.
func TestLockAcquireDonatesPriority(t *testing.T) {
	k := newStartedKernel(t)
	k.SetPriority(PriMin)
	lock := NewLock(k)

	holderAcquired := make(chan struct{})
	donatedObserved := make(chan int, 1)
	holderDone := make(chan struct{})
	lowThread, err := k.Create("low", PriDefault-10, func(*Thread) {
		require.NoError(t, lock.Acquire())
		close(holderAcquired)
		k.Block()
		donatedObserved <- k.GetPriority()
		require.NoError(t, lock.Release())
		close(holderDone)
	})
	require.NoError(t, err)
	<-holderAcquired

	highAcquired := make(chan struct{})
	_, err = k.Create("high", PriDefault+10, func(*Thread) {
		require.NoError(t, lock.Acquire())
		close(highAcquired)
		require.NoError(t, lock.Release())
	})
	require.NoError(t, err)

	require.NoError(t, k.Unblock(lowThread))
	k.Yield()

	select {
	case pri := <-donatedObserved:
		assert.Equal(t, PriDefault+10, pri)
	case <-time.After(time.Second):
		t.Fatal("holder never observed donated priority")
	}

	select {
	case <-holderDone:
	case <-time.After(time.Second):
		t.Fatal("holder never finished")
	}
	select {
	case <-highAcquired:
	case <-time.After(time.Second):
		t.Fatal("high priority waiter never acquired the lock")
	}
}

func TestCondSignalWakesHighestPriorityWaiter(t *testing.T) {
	k := newStartedKernel(t)
	k.SetPriority(PriMin)
	lock := NewLock(k)
	cond := NewCond(k)

	var mu sync.Mutex
	var woke []string
	record := func(name string) {
		mu.Lock()
		woke = append(woke, name)
		mu.Unlock()
	}

	readyCount := 0
	var readyMu sync.Mutex
	bothWaiting := make(chan struct{})
	waiterDone := make(chan struct{}, 2)

	spawn := func(name string, pri int) {
		_, err := k.Create(name, pri, func(*Thread) {
			require.NoError(t, lock.Acquire())
			readyMu.Lock()
			readyCount++
			if readyCount == 2 {
				close(bothWaiting)
			}
			readyMu.Unlock()
			cond.Wait(lock)
			record(name)
			require.NoError(t, lock.Release())
			waiterDone <- struct{}{}
		})
		require.NoError(t, err)
	}

	spawn("low", PriDefault-5)
	spawn("high", PriDefault+5)
	for i := 0; i < 4; i++ {
		k.Yield()
	}

	select {
	case <-bothWaiting:
	case <-time.After(time.Second):
		t.Fatal("both waiters never reached cond.Wait")
	}

	require.NoError(t, lock.Acquire())
	cond.Signal(lock)
	require.NoError(t, lock.Release())
	k.Yield()

	select {
	case <-waiterDone:
	case <-time.After(time.Second):
		t.Fatal("signaled waiter never woke")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"high"}, woke)
}

// TestCondSignalWakesViaLiveDonatedPriority exercises the case
// TestCondSignalWakesHighestPriorityWaiter doesn't: a waiter's effective
// priority changing *while parked* on the condition variable, via a
// donation arriving after Wait was called. Signal must compare live
// EffectivePriority rather than whatever priority the waiter had when it
// called Wait.
func TestCondSignalWakesViaLiveDonatedPriority(t *testing.T) {
	k := newStartedKernel(t)
	k.SetPriority(PriMin)
	lock := NewLock(k)
	cond := NewCond(k)
	resourceLock := NewLock(k)

	var mu sync.Mutex
	var woke []string
	record := func(name string) {
		mu.Lock()
		woke = append(woke, name)
		mu.Unlock()
	}

	readyCount := 0
	var readyMu sync.Mutex
	bothWaiting := make(chan struct{})
	waiterDone := make(chan struct{}, 2)

	spawn := func(name string, pri int, holdsResource bool) {
		_, err := k.Create(name, pri, func(*Thread) {
			if holdsResource {
				require.NoError(t, resourceLock.Acquire())
			}
			require.NoError(t, lock.Acquire())
			readyMu.Lock()
			readyCount++
			if readyCount == 2 {
				close(bothWaiting)
			}
			readyMu.Unlock()
			cond.Wait(lock)
			record(name)
			require.NoError(t, lock.Release())
			waiterDone <- struct{}{}
		})
		require.NoError(t, err)
	}

	// low's base priority is below mid's, so base-priority-only ordering
	// would wake mid. low holds resourceLock the whole time it's parked in
	// cond.Wait.
	spawn("low", PriMin, true)
	spawn("mid", PriMin+5, false)
	for i := 0; i < 4; i++ {
		k.Yield()
	}

	select {
	case <-bothWaiting:
	case <-time.After(time.Second):
		t.Fatal("both waiters never reached cond.Wait")
	}

	// donor blocks acquiring resourceLock (still held by low), donating
	// PriMax into low and raising low's effective priority above mid's
	// while low sits parked inside cond.Wait.
	_, err := k.Create("donor", PriMax, func(*Thread) {
		require.NoError(t, resourceLock.Acquire())
	})
	require.NoError(t, err)
	k.Yield()

	require.NoError(t, lock.Acquire())
	cond.Signal(lock)
	require.NoError(t, lock.Release())
	k.Yield()

	select {
	case <-waiterDone:
	case <-time.After(time.Second):
		t.Fatal("signaled waiter never woke")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"low"}, woke)
}

// TestLockAcquireReturnsDonationCycleErrorOnTruncatedChain exercises
// spec.md §7's chain-traversal-and-acyclicity note: a waiting-lock chain
// deep enough to hit maxDonationChainDepth is reported as a
// *DonationCycleError from Acquire, without preventing the lock itself
// from being acquired.
func TestLockAcquireReturnsDonationCycleErrorOnTruncatedChain(t *testing.T) {
	k := newStartedKernel(t)

	const chainLen = maxDonationChainDepth + 1
	holders := make([]*Thread, chainLen)
	for i := range holders {
		holders[i] = newTestThread(100+i, PriDefault)
	}
	for i := 0; i < chainLen-1; i++ {
		next := &Lock{kernel: k, sema: NewSemaphore(k, 0), holder: holders[i+1]}
		holders[i].waitingLock = next
	}

	testLock := &Lock{kernel: k, sema: NewSemaphore(k, 1), holder: holders[0]}

	err := testLock.Acquire()

	var cycleErr *DonationCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, maxDonationChainDepth, cycleErr.Depth)
	assert.True(t, testLock.IsHeldByCurrent())
}
