package fs

import (
	"testing"

	"microkit/blockdev"
	"microkit/flash"
	"microkit/kernelcfg"
)

// testGeometry shrinks the default disk so tests run against a small number
// of sectors instead of the full 128 KiB layout.
func testGeometry() kernelcfg.Config {
	cfg := kernelcfg.Default()
	cfg.NumSectors = 8
	cfg.MetadataSector = 7
	cfg.DirectorySize = 8
	cfg.FATSize = 8
	cfg.DiskStart = 0
	cfg.DiskEnd = uint32(cfg.NumSectors * cfg.SectorSize)
	return cfg
}

func newTestFS(cfg kernelcfg.Config) (*FileSystem, *flash.Device) {
	dev := flash.New(cfg.DiskStart, int(cfg.DiskSize()))
	bdev := blockdev.New(dev, cfg)
	return New(bdev, cfg), dev
}

func sectorOf(b byte) [blockdev.SectorSize]byte {
	var buf [blockdev.SectorSize]byte
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func TestFileAppendAndRead(t *testing.T) {
	cfg := testGeometry()
	fsys, _ := newTestFS(cfg)

	num, err := fsys.FileNew()
	if err != nil {
		t.Fatalf("FileNew: %v", err)
	}
	if num != 0 {
		t.Fatalf("FileNew() = %d, want 0", num)
	}

	if err := fsys.FileAppend(num, sectorOf(0xAA)); err != nil {
		t.Fatalf("FileAppend #1: %v", err)
	}
	if err := fsys.FileAppend(num, sectorOf(0xBB)); err != nil {
		t.Fatalf("FileAppend #2: %v", err)
	}

	size, err := fsys.FileSize(num)
	if err != nil {
		t.Fatalf("FileSize: %v", err)
	}
	if size != 2 {
		t.Fatalf("FileSize() = %d, want 2", size)
	}

	buf0, err := fsys.FileRead(num, 0)
	if err != nil {
		t.Fatalf("FileRead(0): %v", err)
	}
	if buf0 != sectorOf(0xAA) {
		t.Error("FileRead(0) did not return the first appended sector")
	}

	buf1, err := fsys.FileRead(num, 1)
	if err != nil {
		t.Fatalf("FileRead(1): %v", err)
	}
	if buf1 != sectorOf(0xBB) {
		t.Error("FileRead(1) did not return the second appended sector")
	}

	if _, err := fsys.FileRead(num, 2); err == nil {
		t.Error("FileRead(2) should report no-data past the end of the chain")
	}
}

func TestMultipleFilesInterleaved(t *testing.T) {
	cfg := testGeometry()
	fsys, _ := newTestFS(cfg)

	a, err := fsys.FileNew()
	if err != nil {
		t.Fatalf("FileNew a: %v", err)
	}
	if err := fsys.FileAppend(a, sectorOf(1)); err != nil {
		t.Fatalf("append a: %v", err)
	}

	// FileNew does not reserve a slot, so b is created only after a has
	// its first sector.
	b, err := fsys.FileNew()
	if err != nil {
		t.Fatalf("FileNew b: %v", err)
	}
	if err := fsys.FileAppend(b, sectorOf(2)); err != nil {
		t.Fatalf("append b: %v", err)
	}
	if err := fsys.FileAppend(a, sectorOf(3)); err != nil {
		t.Fatalf("append a again: %v", err)
	}

	if fsys.directory[a] != 0 {
		t.Errorf("file a head = %d, want 0", fsys.directory[a])
	}
	if fsys.fat[0] != 2 {
		t.Errorf("file a chain[0] -> %d, want 2", fsys.fat[0])
	}
	if fsys.directory[b] != 1 {
		t.Errorf("file b head = %d, want 1", fsys.directory[b])
	}

	sizeA, _ := fsys.FileSize(a)
	sizeB, _ := fsys.FileSize(b)
	if sizeA != 2 {
		t.Errorf("FileSize(a) = %d, want 2", sizeA)
	}
	if sizeB != 1 {
		t.Errorf("FileSize(b) = %d, want 1", sizeB)
	}
}

func TestFlushMountRoundTrip(t *testing.T) {
	cfg := testGeometry()
	fsys, _ := newTestFS(cfg)

	a, _ := fsys.FileNew()
	fsys.FileAppend(a, sectorOf(1))
	b, _ := fsys.FileNew()
	fsys.FileAppend(b, sectorOf(2))
	fsys.FileAppend(a, sectorOf(3))

	wantDir := append([]byte(nil), fsys.directory...)
	wantFAT := append([]byte(nil), fsys.fat...)

	if err := fsys.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	fsys.directory = make([]byte, cfg.DirectorySize)
	fsys.fat = make([]byte, cfg.FATSize)

	if err := fsys.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	for i := range wantDir {
		if fsys.directory[i] != wantDir[i] {
			t.Fatalf("directory[%d] = %#x after mount, want %#x", i, fsys.directory[i], wantDir[i])
		}
	}
	for i := range wantFAT {
		if fsys.fat[i] != wantFAT[i] {
			t.Fatalf("fat[%d] = %#x after mount, want %#x", i, fsys.fat[i], wantFAT[i])
		}
	}
}

func TestFormatErasesAndReinitializes(t *testing.T) {
	cfg := testGeometry()
	fsys, dev := newTestFS(cfg)

	a, _ := fsys.FileNew()
	fsys.FileAppend(a, sectorOf(1))

	if err := fsys.Format(dev.Erase); err != nil {
		t.Fatalf("Format: %v", err)
	}

	for i, entry := range fsys.directory {
		if entry != kernelcfg.FileEmpty {
			t.Fatalf("directory[%d] = %#x after format, want FILE_EMPTY", i, entry)
		}
	}

	size, _ := fsys.FileSize(a)
	if size != 0 {
		t.Errorf("FileSize after format = %d, want 0", size)
	}
}

func TestDiskFullBoundary(t *testing.T) {
	cfg := testGeometry() // 8 sectors, metadata at 7: sectors 0..6 available
	fsys, _ := newTestFS(cfg)

	num, err := fsys.FileNew()
	if err != nil {
		t.Fatalf("FileNew: %v", err)
	}

	for i := 0; i < cfg.MetadataSector; i++ {
		if err := fsys.FileAppend(num, sectorOf(byte(i))); err != nil {
			t.Fatalf("append %d: unexpected error %v", i, err)
		}
	}

	if err := fsys.FileAppend(num, sectorOf(0xFF)); err == nil {
		t.Fatal("expected disk-full error once every available sector is allocated")
	}
}

func TestFileNewRejectsWhenDiskFull(t *testing.T) {
	cfg := testGeometry()
	cfg.MetadataSector = 0 // no sectors available at all
	fsys, _ := newTestFS(cfg)

	if _, err := fsys.FileNew(); err == nil {
		t.Fatal("expected disk-full error from FileNew with no sectors available")
	}
}
