package kernel

// FIFO is a bounded, integer-valued queue used for interrupt-to-thread
// signalling (spec.md §4.4). Put is non-blocking and safe to call from any
// goroutine, including one standing in for an interrupt handler; Get
// blocks and must only be called from thread context.
type FIFO struct {
	buf        []int32
	head, tail int
	size       int
	sizeSema   Semaphore
	lost       uint32
}

// FIFOInit clears the queue and initializes its size semaphore to 0.
func FIFOInit(f *FIFO, capacity int) {
	saved := EnterCritical()
	f.buf = make([]int32, capacity)
	f.head = 0
	f.tail = 0
	f.size = 0
	f.lost = 0
	LeaveCritical(saved)
	InitSemaphore(&f.sizeSema, 0)
}

// FIFOPut places x at the tail of the queue. Callable from interrupt or
// thread context. If the queue is full it increments the lost-message
// counter and reports failure without blocking.
func FIFOPut(f *FIFO, x int32) bool {
	saved := EnterCritical()
	if f.size == len(f.buf) {
		f.lost++
		LeaveCritical(saved)
		return false
	}
	f.buf[f.tail] = x
	f.tail = (f.tail + 1) % len(f.buf)
	f.size++
	LeaveCritical(saved)
	Signal(&f.sizeSema)
	return true
}

// FIFOGet blocks (thread context only) until a value is available, then
// removes and returns it in FIFO order.
func FIFOGet(idx int, f *FIFO) int32 {
	Wait(idx, &f.sizeSema)
	saved := EnterCritical()
	x := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.size--
	LeaveCritical(saved)
	return x
}

// PeekNext returns the value at the head of the queue without consuming
// it. Callers must check Size first; behavior on an empty queue is the
// no-data sentinel value 0.
func (f *FIFO) PeekNext() int32 {
	saved := EnterCritical()
	defer LeaveCritical(saved)
	if f.size == 0 {
		return 0
	}
	return f.buf[f.head]
}

// Size returns the current number of queued values.
func (f *FIFO) Size() int {
	saved := EnterCritical()
	defer LeaveCritical(saved)
	return f.size
}

// Lost returns the number of Put attempts that failed because the queue
// was full.
func (f *FIFO) Lost() uint32 {
	saved := EnterCritical()
	defer LeaveCritical(saved)
	return f.lost
}
