package kerrors

// Sentinel errors for the conditions named in spec.md §7.

var (
	// ErrAlreadyInitialized indicates os_init was called a second time.
	ErrAlreadyInitialized = &KernelError{Kind: KindAlreadyInitialized, Detail: "kernel already initialized"}

	// ErrThreadTableFull indicates add_threads was asked to register
	// more threads than the configured table size.
	ErrThreadTableFull = &KernelError{Kind: KindThreadTableFull, Detail: "thread table full"}

	// ErrNotLaunched indicates a primitive that requires a running
	// scheduler was used before Launch.
	ErrNotLaunched = &KernelError{Kind: KindInternal, Detail: "kernel not launched"}

	// ErrInvalidFile indicates a file number outside [0, MaxFileNumber].
	ErrInvalidFile = &KernelError{Kind: KindInvalidFile, Detail: "invalid file number"}

	// ErrNoData indicates an empty file, or a chain walk that ran off
	// the end before reaching the requested location.
	ErrNoData = &KernelError{Kind: KindNoData, Detail: "no data"}

	// ErrDiskFull indicates the write-once allocator has reached the
	// metadata sector.
	ErrDiskFull = &KernelError{Kind: KindDiskFull, Detail: "disk full"}

	// ErrFlash indicates a flash program or erase failure: unaligned
	// address, illegal 0->1 bit transition, or out-of-range address.
	ErrFlash = &KernelError{Kind: KindFlash, Detail: "flash operation failed"}

	// ErrCorruptFAT indicates a chain walk exceeded NumSectors hops.
	ErrCorruptFAT = &KernelError{Kind: KindCorruptFAT, Detail: "fat chain did not terminate"}

	// ErrFIFOFull indicates fifo_put was attempted while size == capacity.
	ErrFIFOFull = &KernelError{Kind: KindFIFOFull, Detail: "fifo full"}
)
