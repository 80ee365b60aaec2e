// Package fs implements the write-once, FAT-style file system that lives on
// top of blockdev: a RAM directory and FAT, append-only file growth, and a
// flush/mount/format lifecycle that persists the directory+FAT pair to a
// single reserved metadata sector.
package fs

import (
	"microkit/blockdev"
	"microkit/kerrors"
	"microkit/kernelcfg"
	"microkit/logging"
)

// FileSystem is the RAM-resident directory and FAT over a block device.
// Like the kernel, it is unsynchronized: callers must serialize file
// operations themselves, typically with a binary semaphore used as a mutex.
type FileSystem struct {
	dev *blockdev.Device
	cfg kernelcfg.Config

	directory []byte
	fat       []byte
}

// New creates a file system over dev and initializes RAM state to empty
// (fs_init in spec terms): every directory and FAT entry set to the
// sentinel 0xFF.
func New(dev *blockdev.Device, cfg kernelcfg.Config) *FileSystem {
	fsys := &FileSystem{
		dev: dev,
		cfg: cfg,
	}
	fsys.init()
	return fsys
}

func (f *FileSystem) init() {
	f.directory = make([]byte, f.cfg.DirectorySize)
	f.fat = make([]byte, f.cfg.FATSize)
	for i := range f.directory {
		f.directory[i] = kernelcfg.FileEmpty
	}
	for i := range f.fat {
		f.fat[i] = kernelcfg.SectorFree
	}
}

// FileNew returns the lowest unused file number, or an error if the disk
// has no free sector left for the file's first append, or if no directory
// slot is free. It does not mutate the directory: an empty file has no
// chain until the first successful FileAppend.
func (f *FileSystem) FileNew() (int, error) {
	if _, full := f.findFreeSector(); full {
		return 0, kerrors.ErrDiskFull
	}
	for i, entry := range f.directory {
		if i > kernelcfg.MaxFileNumber {
			break
		}
		if entry == kernelcfg.FileEmpty {
			return i, nil
		}
	}
	return 0, kerrors.ErrInvalidFile
}

// FileSize returns the number of sectors in file num's chain, walking the
// FAT from the directory head. A cycle — which implies a corrupted FAT — is
// reported as size 0 rather than looping forever.
func (f *FileSystem) FileSize(num int) (int, error) {
	if err := f.checkFileNumber(num); err != nil {
		return 0, err
	}
	if f.directory[num] == kernelcfg.FileEmpty {
		return 0, nil
	}

	size := 0
	sector := f.directory[num]
	for steps := 0; steps < f.cfg.NumSectors; steps++ {
		size++
		next := f.fat[sector]
		if next == kernelcfg.SectorFree {
			return size, nil
		}
		sector = next
	}
	logging.Warn("fat cycle detected, reporting size 0", "file", num)
	return 0, nil
}

// FileAppend allocates the next free sector, writes buf into it, and links
// it onto the end of file num's chain.
func (f *FileSystem) FileAppend(num int, buf [blockdev.SectorSize]byte) error {
	if err := f.checkFileNumber(num); err != nil {
		return err
	}

	sector, full := f.findFreeSector()
	if full {
		return kerrors.ErrDiskFull
	}

	if err := f.dev.WriteSector(buf, sector); err != nil {
		return kerrors.Wrap(err, kerrors.KindFlash, "file_append")
	}

	f.appendFAT(num, byte(sector))
	return nil
}

// FileRead walks file num's chain location hops from its head and reads
// that sector into buf.
func (f *FileSystem) FileRead(num, location int) ([blockdev.SectorSize]byte, error) {
	var buf [blockdev.SectorSize]byte
	if err := f.checkFileNumber(num); err != nil {
		return buf, err
	}
	if f.directory[num] == kernelcfg.FileEmpty {
		return buf, kerrors.ErrNoData
	}

	sector := f.directory[num]
	for i := 0; i < location; i++ {
		if sector == kernelcfg.SectorFree {
			return buf, kerrors.ErrNoData
		}
		sector = f.fat[sector]
	}
	if sector == kernelcfg.SectorFree {
		return buf, kerrors.ErrNoData
	}

	buf, err := f.dev.ReadSector(int(sector))
	if err != nil {
		return buf, kerrors.Wrap(err, kerrors.KindFlash, "file_read")
	}
	return buf, nil
}

// Flush persists the RAM directory and FAT to the metadata sector. Because
// flash can only clear bits, a Flush over an already-written metadata
// sector succeeds only if every word of the new image can be reached from
// the stored one by clearing bits; the sector then holds exactly the new
// image. Growing files after a Mount only replaces 0xFF entries, so that
// case always succeeds. Otherwise the underlying Program reports a
// would-set-a-bit-to-1 error, WriteSector stops at that word (the words
// before it are already programmed), and Flush returns the error:
// DESIGN.md records this as the resolution to the write-once fs_flush
// open question (erase-before-flush is the caller's responsibility via
// Format, not Flush's).
func (f *FileSystem) Flush() error {
	var buf [blockdev.SectorSize]byte
	copy(buf[:f.cfg.DirectorySize], f.directory)
	copy(buf[f.cfg.DirectorySize:f.cfg.DirectorySize+f.cfg.FATSize], f.fat)

	if err := f.dev.WriteSector(buf, f.cfg.MetadataSector); err != nil {
		return kerrors.Wrap(err, kerrors.KindFlash, "fs_flush")
	}
	return nil
}

// Mount reads the metadata sector and unpacks it into the RAM directory and
// FAT, replacing whatever was there.
func (f *FileSystem) Mount() error {
	buf, err := f.dev.ReadSector(f.cfg.MetadataSector)
	if err != nil {
		return kerrors.Wrap(err, kerrors.KindFlash, "fs_mount")
	}
	f.directory = append([]byte(nil), buf[:f.cfg.DirectorySize]...)
	f.fat = append([]byte(nil), buf[f.cfg.DirectorySize:f.cfg.DirectorySize+f.cfg.FATSize]...)
	return nil
}

// Format erases every 1 KiB block of the disk range and reinitializes RAM
// state to empty. It is the only way to revisit a sector already written.
func (f *FileSystem) Format(eraseBlock func(addr uint32) error) error {
	blockSize := f.cfg.FlashBlockSize
	for addr := f.cfg.DiskStart; addr < f.cfg.DiskEnd; addr += blockSize {
		if err := eraseBlock(addr); err != nil {
			return kerrors.Wrap(err, kerrors.KindFlash, "fs_format")
		}
	}
	f.init()
	return nil
}

// appendFAT links sector onto the end of file num's chain, or makes it the
// head if the file was empty.
func (f *FileSystem) appendFAT(num int, sector byte) {
	f.fat[sector] = kernelcfg.SectorFree
	if f.directory[num] == kernelcfg.FileEmpty {
		f.directory[num] = sector
		return
	}
	end := f.directory[num]
	for f.fat[end] != kernelcfg.SectorFree {
		end = f.fat[end]
	}
	f.fat[end] = sector
}

// findFreeSector implements the write-once allocation policy: the next
// sector is always one past the highest sector allocated to any file so
// far, which keeps every chain strictly increasing (hence acyclic) and
// guarantees a never-rewritten sector is always ahead of the high-water
// mark. Reports full once that mark reaches the metadata sector.
func (f *FileSystem) findFreeSector() (int, bool) {
	high := -1
	for _, head := range f.directory {
		if head == kernelcfg.FileEmpty {
			continue
		}
		sector := head
		for steps := 0; steps < f.cfg.NumSectors; steps++ {
			if int(sector) > high {
				high = int(sector)
			}
			next := f.fat[sector]
			if next == kernelcfg.SectorFree {
				break
			}
			sector = next
		}
	}
	next := high + 1
	if next >= f.cfg.MetadataSector {
		return 0, true
	}
	return next, false
}

func (f *FileSystem) checkFileNumber(num int) error {
	if num < 0 || num > kernelcfg.MaxFileNumber {
		return kerrors.ErrInvalidFile
	}
	return nil
}
