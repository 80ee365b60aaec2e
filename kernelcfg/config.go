// Package kernelcfg holds the tunable constants for the simulated kernel and
// file system. There is no configuration file, environment variable, or CLI
// flag layer in the kernel itself — the original firmware has none of these
// either — but callers embedding the kernel (tests, the microkit CLI demos)
// need a way to build alternate geometries, so the tunables live in one
// plain struct instead of scattered package-level constants.
package kernelcfg

import "time"

// Config collects every size and timing constant the kernel and file system
// need. Zero-value Config is not usable; start from Default().
type Config struct {
	// NumThreads is the fixed number of threads the scheduler supports.
	NumThreads int
	// StackWords is the size, in machine words, of each thread's stack
	// buffer. Retained for data-model fidelity with the original TCB
	// layout; the host scheduler does not interpret its contents.
	StackWords int
	// TimesliceTicks is the number of ticks in one scheduling timeslice.
	// The reference firmware expresses this as a SysTick reload value in
	// clock cycles; here it is expressed directly in ticks.
	TimesliceTicks uint32
	// TickPeriod is the wall-clock period of one simulated tick.
	TickPeriod time.Duration
	// FIFOCapacity is the number of int32 slots in the interrupt-to-thread
	// FIFO.
	FIFOCapacity int

	// NumSectors is the number of logical sectors on the simulated disk.
	NumSectors int
	// SectorSize is the size, in bytes, of one logical sector.
	SectorSize int
	// MetadataSector is the reserved sector index holding the persisted
	// directory and FAT.
	MetadataSector int
	// DirectorySize is the number of byte-sized directory entries (one
	// per possible file number).
	DirectorySize int
	// FATSize is the number of byte-sized FAT entries (one per sector).
	FATSize int
	// DiskStart and DiskEnd bound the simulated flash address range that
	// backs the disk.
	DiskStart uint32
	DiskEnd   uint32
	// FlashBlockSize is the erase granularity of the simulated flash.
	FlashBlockSize uint32
}

// FileEmpty, SectorFree, MaxFileNumber mirror the sentinel byte values from
// spec.md §6. They are not part of Config because they are architectural
// constants of the on-disk format, not something a caller should be able to
// vary independently of DirectorySize/FATSize.
const (
	FileEmpty     byte = 0xFF
	SectorFree    byte = 0xFF
	MaxFileNumber int  = 254
)

// Default returns the configuration spec.md describes: 3 threads, 100-word
// stacks, a 2 ms timeslice, a 10-entry FIFO, and a 256×512 B disk with
// sector 255 reserved for metadata.
func Default() Config {
	return Config{
		NumThreads:     3,
		StackWords:     100,
		TimesliceTicks: 1,
		TickPeriod:     2 * time.Millisecond,
		FIFOCapacity:   10,

		NumSectors:     256,
		SectorSize:     512,
		MetadataSector: 255,
		DirectorySize:  256,
		FATSize:        256,
		DiskStart:      0x0002_0000,
		DiskEnd:        0x0004_0000,
		FlashBlockSize: 1024,
	}
}

// DiskSize returns the total byte size of the simulated disk (NumSectors *
// SectorSize).
func (c Config) DiskSize() int64 {
	return int64(c.NumSectors) * int64(c.SectorSize)
}
