// Package disk implements the block-device collaborator described in the
// index's external interfaces: a fixed-size file exposing synchronous,
// sector-addressed read/write. It has no notion of keys, nodes, or trees.
package disk

import (
	"errors"
	"fmt"
	"os"
)

// SectorSize is the fixed unit of all device I/O. LBA 0 is reserved for
// whatever superblock the caller layers on top; this package does not
// interpret it.
const SectorSize = 1024

var (
	// ErrUnaligned is returned when a requested device size is not a
	// whole multiple of SectorSize.
	ErrUnaligned = errors.New("disk: size is not a multiple of sector size")
	// ErrOutOfRange is returned when an LBA falls outside the device.
	ErrOutOfRange = errors.New("disk: lba out of range")
	// ErrShortSector is returned when a caller hands over a buffer that
	// isn't exactly one sector.
	ErrShortSector = errors.New("disk: buffer is not exactly one sector")
	// ErrAlreadyLocked is returned when another process holds the
	// exclusive advisory lock on the device file.
	ErrAlreadyLocked = errors.New("disk: device already attached by another process")
)

// Disk is a fixed-size, sector-addressed block device backed by a single
// file. Reads and writes are synchronous; a failure is fatal to the
// caller's current operation, matching the "I/O failure" error class.
type Disk struct {
	f        *os.File
	numLBAs  uint64
	sizeBytes int64
}

// Create initializes a new device file of exactly sizeBytes, which must be
// a positive multiple of SectorSize, and takes an exclusive advisory lock
// on it so a second process cannot attach the same file concurrently (the
// node pool and free list are not safe for concurrent access).
func Create(path string, sizeBytes int64) (*Disk, error) {
	if sizeBytes <= 0 || sizeBytes%SectorSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnaligned, sizeBytes)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("disk: create %s: %w", path, err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := f.Truncate(sizeBytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("disk: truncate %s: %w", path, err)
	}

	return &Disk{f: f, numLBAs: uint64(sizeBytes / SectorSize), sizeBytes: sizeBytes}, nil
}

// Attach opens an existing device file, taking the same exclusive advisory
// lock Create does.
func Attach(path string) (*Disk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("disk: attach %s: %w", path, err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}
	if st.Size()%SectorSize != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnaligned, st.Size())
	}

	return &Disk{f: f, numLBAs: uint64(st.Size() / SectorSize), sizeBytes: st.Size()}, nil
}

// Close releases the advisory lock and closes the underlying file.
func (d *Disk) Close() error {
	_ = unlockFile(d.f)
	return d.f.Close()
}

// Size returns the total device size in bytes.
func (d *Disk) Size() int64 { return d.sizeBytes }

// NumLBAs returns the number of addressable sectors, including LBA 0.
func (d *Disk) NumLBAs() uint64 { return d.numLBAs }

func (d *Disk) sectorOffset(lba uint32) (int64, error) {
	if uint64(lba) >= d.numLBAs {
		return 0, fmt.Errorf("%w: lba %d, num_lbas %d", ErrOutOfRange, lba, d.numLBAs)
	}
	return int64(lba) * SectorSize, nil
}

// ReadSector fills buf (which must be exactly SectorSize bytes) with the
// contents of sector lba.
func (d *Disk) ReadSector(lba uint32, buf []byte) error {
	if len(buf) != SectorSize {
		return ErrShortSector
	}
	off, err := d.sectorOffset(lba)
	if err != nil {
		return err
	}
	if _, err := d.f.ReadAt(buf, off); err != nil {
		return fmt.Errorf("disk: read lba %d: %w", lba, err)
	}
	return nil
}

// WriteSector writes buf (exactly SectorSize bytes) to sector lba.
func (d *Disk) WriteSector(lba uint32, buf []byte) error {
	if len(buf) != SectorSize {
		return ErrShortSector
	}
	off, err := d.sectorOffset(lba)
	if err != nil {
		return err
	}
	if _, err := d.f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("disk: write lba %d: %w", lba, err)
	}
	return nil
}
