package kernel

// tcb is a thread control block. Threads are never created or destroyed
// after Launch, so the kernel holds a fixed array of these, referenced by
// small integer index rather than by pointer — the index doubles as the
// slot in the ring, the wait queues, and the scheduler's current-thread
// cursor.
type tcb struct {
	// ringNext is the index of this thread's round-robin successor.
	ringNext int

	// sleep is the number of ticks remaining before this thread is
	// runnable again. Zero means not sleeping.
	sleep uint32

	// blockedOn is the semaphore this thread is waiting on, or nil if it
	// is not blocked. A thread is on at most one semaphore's wait list.
	blockedOn *Semaphore

	// stack is retained for data-model fidelity with the original TCB
	// (spec.md §3: "stack buffer: fixed-size array of machine words").
	// The host scheduler never interprets these words; a target-specific
	// assembly backend would use this space for the saved register
	// frame.
	stack []uint32

	// entry is the thread's entry function, run in its own goroutine.
	entry func()
}

// runnable reports whether this thread may be selected by the scheduler.
func (t *tcb) runnable() bool {
	return t.sleep == 0 && t.blockedOn == nil
}
