// Package kernel implements the scheduler, semaphores, FIFO, and mailbox of
// a fixed-thread preemptive real-time kernel core.
//
// The reference system is bare-metal ARM firmware: a periodic SysTick
// interrupt performs register-level context switches between threads that
// never return. A Go process cannot emit that interrupt-return sequence, so
// this package simulates the same scheduling algorithm on top of goroutines:
// one goroutine per thread, a software tick driven by a time.Ticker, and a
// condition variable that lets exactly one thread's goroutine proceed past
// a checkpoint at a time. See SPEC_FULL.md §4 for the full translation and
// DESIGN.md for the reasoning behind each choice.
//
// Kernel state is a single process-wide instance, matching the original
// firmware's globals: there is no exported constructor for a second kernel.
package kernel

import (
	"sync"
	"time"

	"microkit/kerrors"
	"microkit/kernelcfg"
	"microkit/logging"
)

// Kernel is the process-wide scheduler state. The zero value is not usable;
// callers obtain one through Init.
type Kernel struct {
	cfg kernelcfg.Config

	mu   sync.Mutex
	cond *sync.Cond

	tcbs      []tcb
	numAdded  int
	current   int
	launched  bool
	tickTimer *time.Ticker
	tickDone  chan struct{}
}

// k is the single process-wide kernel instance. Init installs it; every
// other exported function operates on it.
var k *Kernel

// Init prepares kernel state and configures (but does not start) the
// periodic tick. It fails only if called twice.
func Init(cfg kernelcfg.Config) error {
	if k != nil {
		return kerrors.ErrAlreadyInitialized
	}
	nk := &Kernel{
		cfg:     cfg,
		current: -1,
	}
	nk.cond = sync.NewCond(&nk.mu)
	k = nk
	logging.Info("kernel initialized", "threads", cfg.NumThreads, "tick_period", cfg.TickPeriod)
	return nil
}

// resetForTest discards the process-wide kernel so tests can start from a
// clean slate. Unexported: there is still no way to run two kernels
// concurrently from outside this package.
func resetForTest() {
	if k != nil && k.tickTimer != nil {
		k.tickTimer.Stop()
	}
	k = nil
}

// AddThreads registers the given entry functions as the fixed set of
// schedulable threads. Each entry function must loop forever; if it
// returns, behavior is undefined. AddThreads must be called once, after
// Init and before Launch.
func AddThreads(entries ...func()) error {
	if len(entries) > k.cfg.NumThreads {
		return kerrors.ErrThreadTableFull
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.tcbs = make([]tcb, len(entries))
	for i, fn := range entries {
		k.tcbs[i] = tcb{
			ringNext: (i + 1) % len(entries),
			stack:    make([]uint32, k.cfg.StackWords),
			entry:    fn,
		}
	}
	k.numAdded = len(entries)
	k.current = 0
	return nil
}

// Launch arms the periodic tick and starts every registered thread. It
// never returns.
func Launch() {
	startThreads()

	k.mu.Lock()
	k.tickTimer = time.NewTicker(k.cfg.TickPeriod)
	k.tickDone = make(chan struct{})
	k.mu.Unlock()
	go tickLoop()

	logging.Info("kernel launched", "threads", k.numAdded)
	select {} // the reference firmware's OS_Launch never returns either
}

// startThreads spawns one goroutine per registered thread and returns
// immediately, without arming the periodic tick. Launch uses it before
// starting tickLoop; tests use it directly so they can drive scheduling
// decisions by calling tick() themselves instead of racing a real timer.
func startThreads() {
	k.mu.Lock()
	k.launched = true
	k.mu.Unlock()

	for i := range k.tcbs {
		idx := i
		go func() {
			checkpoint(idx)
			k.tcbs[idx].entry()
		}()
	}
}

// tickLoop drives tick() at the configured period. It is the host
// equivalent of the SysTick interrupt.
func tickLoop() {
	for {
		select {
		case <-k.tickTimer.C:
			tick()
		case <-k.tickDone:
			return
		}
	}
}

// tick is the scheduler's tick handler (spec.md §4.1): decrement sleep
// counters, then advance the round-robin cursor to the next runnable
// thread, keeping the current thread selected if none are runnable.
func tick() {
	k.mu.Lock()
	defer k.mu.Unlock()
	tickLocked()
}

func tickLocked() {
	for i := range k.tcbs {
		if k.tcbs[i].sleep > 0 {
			k.tcbs[i].sleep--
		}
	}

	k.current = pickNextLocked()

	// Every tick broadcasts, even when the chosen thread is unchanged: the
	// current thread itself can transition from blocked to runnable (its
	// Wait's semaphore was Signaled, or it was the only thread and had
	// nowhere else for the cursor to go) without pickNextLocked's index
	// ever changing, and a parked checkpoint only re-evaluates its
	// condition when woken.
	k.cond.Broadcast()
}

// pickNextLocked implements the scheduler's selection rule: starting from
// current's ring successor, walk forward until a runnable TCB is found. If
// none is found after a full lap, keep the current thread (spec.md §9's
// idle open question — see DESIGN.md for the resolution).
func pickNextLocked() int {
	if len(k.tcbs) == 0 {
		return k.current
	}
	start := k.current
	i := k.tcbs[start].ringNext
	for i != start {
		if k.tcbs[i].runnable() {
			return i
		}
		i = k.tcbs[i].ringNext
	}
	return start
}

// Suspend requests an immediate scheduling decision, used as a cooperative
// yield. It is the manual equivalent of a tick firing.
func Suspend() {
	k.mu.Lock()
	tickLocked()
	k.mu.Unlock()
}

// Sleep sets the calling thread's sleep counter and yields to the next
// runnable thread. The yield is not a tick: only tick decrements sleep
// counters, so the thread stays unrunnable for the next ticks ticks.
func Sleep(idx int, ticks uint32) {
	k.mu.Lock()
	k.tcbs[idx].sleep = ticks
	k.current = pickNextLocked()
	k.cond.Broadcast()
	k.mu.Unlock()
	checkpoint(idx)
}

// checkpoint blocks the calling thread's goroutine until the scheduler has
// selected it as current and it is not sleeping or blocked on a semaphore.
// Every blocking point in this package — Sleep, Wait, BWait, and the
// per-iteration CheckPoint a thread body calls in its own loop — funnels
// through here. Suspend itself does not block; it only makes a scheduling
// decision.
func checkpoint(idx int) {
	kk := k
	kk.mu.Lock()
	for kk.current != idx || !kk.tcbs[idx].runnable() {
		kk.cond.Wait()
	}
	kk.mu.Unlock()
}

// CheckPoint is the cooperative preemption hook a thread body calls once
// per loop iteration. A tight infinite loop with no Sleep/Wait/Suspend call
// still needs a point where a tick that has switched away from it can take
// effect; CheckPoint is that point, standing in for the asynchronous
// register-level preemption real hardware provides (see SPEC_FULL.md §4).
func CheckPoint(idx int) {
	checkpoint(idx)
}

// EnterCritical disables scheduling decisions and returns the prior state,
// mirroring the interrupt-mask save the reference firmware performs. The
// host has no interrupt mask to flip; the same mutex the scheduler itself
// uses gives the equivalent mutual-exclusion contract — a critical section
// really does delay the next tick-induced context switch, exactly as
// spec.md §4.1 requires. Kernel primitives call this exactly once per
// critical section — it is not designed for recursive nesting within a
// single call stack, matching how every caller in this package uses it.
func EnterCritical() bool {
	k.mu.Lock()
	return true
}

// LeaveCritical restores the state EnterCritical returned.
func LeaveCritical(_ bool) {
	k.mu.Unlock()
}

// NumThreads returns the number of threads registered via AddThreads.
func NumThreads() int {
	return k.numAdded
}
