// Package blockdev maps fixed-size logical sectors onto a flash.Device,
// giving the file system a 512-byte read/write interface over the raw
// word-programmable flash address space.
package blockdev

import (
	"encoding/binary"

	"microkit/flash"
	"microkit/kerrors"
	"microkit/kernelcfg"
)

// SectorSize is the fixed size of every logical sector.
const SectorSize = 512

// Device is a sector-addressed view over a flash.Device.
type Device struct {
	flash      *flash.Device
	diskStart  uint32
	numSectors int
}

// New builds a block device over dev using the disk geometry in cfg.
func New(dev *flash.Device, cfg kernelcfg.Config) *Device {
	return &Device{
		flash:      dev,
		diskStart:  cfg.DiskStart,
		numSectors: cfg.NumSectors,
	}
}

// WriteSector programs all 512 bytes of buf into sector, four bytes per
// flash word, little-endian, stopping at the first flash error. There is no
// partial-sector retry: a failed write leaves whatever prefix already
// succeeded burned into flash.
func (d *Device) WriteSector(buf [SectorSize]byte, sector int) error {
	if err := d.checkSector(sector); err != nil {
		return err
	}
	base := d.diskStart + uint32(sector)*SectorSize
	for i := 0; i < SectorSize; i += 4 {
		word := binary.LittleEndian.Uint32(buf[i : i+4])
		if err := d.flash.Program(base+uint32(i), word); err != nil {
			return kerrors.Wrap(err, kerrors.KindFlash, "write_sector")
		}
	}
	return nil
}

// ReadSector copies 512 bytes starting at sector's base address.
func (d *Device) ReadSector(sector int) ([SectorSize]byte, error) {
	var buf [SectorSize]byte
	if err := d.checkSector(sector); err != nil {
		return buf, err
	}
	base := d.diskStart + uint32(sector)*SectorSize
	if err := d.flash.ReadAt(base, buf[:]); err != nil {
		return buf, kerrors.Wrap(err, kerrors.KindFlash, "read_sector")
	}
	return buf, nil
}

func (d *Device) checkSector(sector int) error {
	if sector < 0 || sector >= d.numSectors {
		return kerrors.New(kerrors.KindFlash, "sector_range", "sector out of range")
	}
	return nil
}
