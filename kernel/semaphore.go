package kernel

// Semaphore is a counting semaphore with a FIFO-ordered blocked list,
// exactly as spec.md §4.3 describes: when Value < 0 the wait list holds
// exactly |Value| threads; when Value >= 0 the wait list is empty.
type Semaphore struct {
	value int32

	// waitQ is a fixed-capacity ring buffer of blocked thread indices,
	// sized to the number of threads at InitSemaphore time — the
	// maximum possible number of simultaneous waiters, so no allocation
	// is needed after initialization.
	waitQ             []int
	waitHead, waitLen int
}

// InitSemaphore sets the semaphore's value and clears its wait list.
func InitSemaphore(s *Semaphore, v int32) {
	capacity := k.cfg.NumThreads
	if capacity < 1 {
		capacity = 1
	}
	saved := EnterCritical()
	s.value = v
	s.waitQ = make([]int, capacity)
	s.waitHead = 0
	s.waitLen = 0
	LeaveCritical(saved)
}

func (s *Semaphore) enqueue(idx int) {
	tail := (s.waitHead + s.waitLen) % len(s.waitQ)
	s.waitQ[tail] = idx
	s.waitLen++
}

func (s *Semaphore) dequeue() (int, bool) {
	if s.waitLen == 0 {
		return 0, false
	}
	idx := s.waitQ[s.waitHead]
	s.waitHead = (s.waitHead + 1) % len(s.waitQ)
	s.waitLen--
	return idx, true
}

// Wait decrements the semaphore; if the result is negative, the calling
// thread (idx) blocks until a matching Signal wakes it.
func Wait(idx int, s *Semaphore) {
	saved := EnterCritical()
	s.value--
	blocked := s.value < 0
	if blocked {
		k.tcbs[idx].blockedOn = s
		s.enqueue(idx)
		tickLocked()
	}
	LeaveCritical(saved)

	if blocked {
		checkpoint(idx)
	}
}

// Signal increments the semaphore and, if a thread is waiting, wakes the
// one at the head of the wait list. The woken thread becomes runnable; it
// is not guaranteed to run next — it competes with every other runnable
// thread in round-robin order (spec.md §4.3).
func Signal(s *Semaphore) {
	saved := EnterCritical()
	s.value++
	if s.value <= 0 {
		if idx, ok := s.dequeue(); ok {
			k.tcbs[idx].blockedOn = nil
		}
	}
	LeaveCritical(saved)
}

// BinarySemaphore is the convenience binary form (spec.md §4.3): its value
// is clamped to {0,1} and BWait spins, toggling scheduling decisions
// between checks, rather than using a blocked-list wait. It must coexist
// with the counting form, not replace it.
type BinarySemaphore struct {
	value uint32
}

// InitBinary sets the binary semaphore's initial value (0 or 1).
func InitBinary(bs *BinarySemaphore, v uint32) {
	saved := EnterCritical()
	bs.value = v
	LeaveCritical(saved)
}

// BWait spins while the semaphore is zero, cooperatively yielding between
// checks to avoid starving other threads and to give a concurrent BSignal
// a chance to run.
func BWait(idx int, bs *BinarySemaphore) {
	for {
		saved := EnterCritical()
		if bs.value != 0 {
			bs.value = 0
			LeaveCritical(saved)
			return
		}
		LeaveCritical(saved)
		Suspend()
		checkpoint(idx)
	}
}

// BSignal sets the binary semaphore to 1.
func BSignal(bs *BinarySemaphore) {
	saved := EnterCritical()
	bs.value = 1
	LeaveCritical(saved)
}
