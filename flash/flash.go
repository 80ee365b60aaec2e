// Package flash simulates the word-programmable, block-erasable NOR flash
// that the file system is laid out on: bits may only be cleared (1→0)
// between erases, and erase clears an entire 1 KiB block back to all-ones.
package flash

import (
	"os"

	"golang.org/x/sys/unix"

	"microkit/kerrors"
	"microkit/logging"
)

// BlockSize is the smallest unit Erase operates on.
const BlockSize = 1024

// Device is a byte-addressable flash region. The zero value is not usable;
// construct one with New or NewMapped.
type Device struct {
	base uint32
	mem  []byte

	// mapped is non-nil when mem is backed by a memory-mapped file rather
	// than a plain Go slice; Close unmaps it.
	mapped []byte
}

// New allocates an in-memory flash region of size bytes starting at base,
// initialised to the erased state (all bits 1). This is the fallback used
// whenever a file-backed mapping isn't requested or isn't available.
func New(base uint32, size int) *Device {
	d := &Device{base: base, mem: make([]byte, size)}
	eraseAll(d.mem)
	return d
}

// NewMapped backs a flash region with a memory-mapped file at path, sized to
// size bytes, giving the simulated flash the same persistence-across-runs
// property the real hardware has. The file is created and erased if it does
// not already exist at the right size.
func NewMapped(path string, base uint32, size int) (*Device, error) {
	var oldSize int64
	if info, err := os.Stat(path); err == nil {
		oldSize = info.Size()
	}
	f, err := unixOpenSized(path, size)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.KindFlash, "flash_map_open")
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.KindFlash, "flash_mmap")
	}
	if oldSize < int64(size) {
		eraseAll(mem[oldSize:])
	}

	return &Device{base: base, mem: mem, mapped: mem}, nil
}

// Close unmaps a file-backed device. It is a no-op for in-memory devices.
func (d *Device) Close() error {
	if d.mapped == nil {
		return nil
	}
	err := unix.Munmap(d.mapped)
	d.mapped = nil
	d.mem = nil
	return err
}

// Init is a one-time hardware-clock setup hook. The host has nothing to
// configure; it exists so callers can mirror the firmware's init sequence.
func Init(clockHz uint32) {
	logging.Info("flash initialized", "clock_hz", clockHz)
}

// Program writes a 32-bit little-endian word at a word-aligned address.
// Because flash can only clear bits, programming a word whose target bytes
// already hold different 0 bits than the new value would require setting a
// bit back to 1, which physically cannot happen without an erase; Program
// reports that as an error rather than silently leaving the byte unchanged.
func (d *Device) Program(addr uint32, word uint32) error {
	if addr%4 != 0 {
		return kerrors.New(kerrors.KindFlash, "flash_write", "unaligned address")
	}
	off, err := d.offset(addr, 4)
	if err != nil {
		return err
	}

	bytes := [4]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	for i, b := range bytes {
		cur := d.mem[off+i]
		if cur&b != b {
			return kerrors.New(kerrors.KindFlash, "flash_write", "write would set a bit from 0 to 1; erase required")
		}
	}
	for i, b := range bytes {
		d.mem[off+i] = b
	}
	return nil
}

// Erase clears every bit in the 1 KiB block containing addr back to 1.
func (d *Device) Erase(addr uint32) error {
	blockStart := (addr - d.base) / BlockSize * BlockSize
	off, err := d.offset(d.base+blockStart, BlockSize)
	if err != nil {
		return err
	}
	eraseAll(d.mem[off : off+BlockSize])
	return nil
}

// ReadByte returns the byte currently programmed at addr.
func (d *Device) ReadByte(addr uint32) (byte, error) {
	off, err := d.offset(addr, 1)
	if err != nil {
		return 0, err
	}
	return d.mem[off], nil
}

// ReadAt copies len(p) bytes starting at addr into p, exactly as a
// byte-readable memory-mapped flash region would be read.
func (d *Device) ReadAt(addr uint32, p []byte) error {
	off, err := d.offset(addr, len(p))
	if err != nil {
		return err
	}
	copy(p, d.mem[off:off+len(p)])
	return nil
}

func (d *Device) offset(addr uint32, n int) (int, error) {
	if addr < d.base || int(addr-d.base)+n > len(d.mem) {
		return 0, kerrors.New(kerrors.KindFlash, "flash_access", "address out of range")
	}
	return int(addr - d.base), nil
}

func eraseAll(b []byte) {
	for i := range b {
		b[i] = 0xFF
	}
}
