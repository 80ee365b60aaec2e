// Package kerrors provides typed error handling for the kernel and file
// system. This mirrors the container runtime's error taxonomy: a small Kind
// enum, one wrapping struct, and support for errors.Is/errors.As, plus a
// translation to the single-byte status codes the original firmware ABI
// exposes (spec.md §6/§7).
package kerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a kernel or file-system error.
type Kind int

const (
	// KindAlreadyInitialized indicates os_init was called twice.
	KindAlreadyInitialized Kind = iota
	// KindThreadTableFull indicates add_threads exceeded the configured
	// thread count.
	KindThreadTableFull
	// KindInvalidFile indicates a file number outside [0, MaxFileNumber].
	KindInvalidFile
	// KindNoData indicates an empty file or an out-of-range chain hop.
	KindNoData
	// KindDiskFull indicates the allocator has reached the metadata
	// sector.
	KindDiskFull
	// KindFlash indicates a flash program/erase failure (unaligned
	// address, illegal bit transition, out-of-range address).
	KindFlash
	// KindCorruptFAT indicates a chain walk exceeded NumSectors steps.
	// FileSize reports such a chain as size 0 with a nil error; no
	// operation in this module returns this kind.
	KindCorruptFAT
	// KindFIFOFull indicates a non-blocking fifo_put on a full queue.
	KindFIFOFull
	// KindInternal indicates a programming error in the host simulation
	// itself (never expected to surface from correct callers).
	KindInternal
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindAlreadyInitialized:
		return "already initialized"
	case KindThreadTableFull:
		return "thread table full"
	case KindInvalidFile:
		return "invalid file number"
	case KindNoData:
		return "no data"
	case KindDiskFull:
		return "disk full"
	case KindFlash:
		return "flash error"
	case KindCorruptFAT:
		return "corrupt fat"
	case KindFIFOFull:
		return "fifo full"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// KernelError is the error type returned by every kernel and file-system
// operation that can fail.
type KernelError struct {
	// Op is the operation that failed (e.g. "file_append", "add_threads").
	Op string
	// Kind classifies the failure.
	Kind Kind
	// Detail adds operation-specific context.
	Detail string
	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message.
func (e *KernelError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else {
		msg += ": " + e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *KernelError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches e by Kind.
func (e *KernelError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*KernelError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a KernelError of the given kind.
func New(kind Kind, op, detail string) *KernelError {
	return &KernelError{Op: op, Kind: kind, Detail: detail}
}

// Wrap wraps err with an operation and kind.
func Wrap(err error, kind Kind, op string) *KernelError {
	return &KernelError{Op: op, Kind: kind, Err: err}
}

// IsKind reports whether err is a KernelError of the given kind.
func IsKind(err error, kind Kind) bool {
	var kerr *KernelError
	if errors.As(err, &kerr) {
		return kerr.Kind == kind
	}
	return false
}

// ToStatus translates an error into the single-byte status code the
// original firmware ABI uses: 0x00 on success (err == nil), 0xFF on any
// failure. Every sentinel in spec.md §6 ("file number or error sentinel
// 0xFF", "success/status 0x00") collapses to this byte; the richer Kind is
// still available to Go callers via the returned error.
func ToStatus(err error) byte {
	if err == nil {
		return 0x00
	}
	return 0xFF
}

// Re-exported for convenience, as the teacher's errors package does.
var (
	Is = errors.Is
	As = errors.As
)
