package disk

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestCreateAndReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.img")
	d, err := Create(path, 4*SectorSize)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer d.Close()

	if d.NumLBAs() != 4 {
		t.Fatalf("numLBAs = %d, want 4", d.NumLBAs())
	}

	buf := bytes.Repeat([]byte{0xAB}, SectorSize)
	if err := d.WriteSector(2, buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := make([]byte, SectorSize)
	if err := d.ReadSector(2, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf, out) {
		t.Fatalf("read back mismatch")
	}
}

func TestCreateRejectsUnalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.img")
	if _, err := Create(path, SectorSize+1); err == nil {
		t.Fatalf("expected error for unaligned size")
	}
}

func TestReadWriteOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.img")
	d, err := Create(path, 2*SectorSize)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer d.Close()

	buf := make([]byte, SectorSize)
	if err := d.WriteSector(2, buf); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestWriteSectorWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.img")
	d, err := Create(path, 2*SectorSize)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer d.Close()

	if err := d.WriteSector(0, make([]byte, SectorSize-1)); err == nil {
		t.Fatalf("expected short-sector error")
	}
}

func TestAttachRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.img")
	d, err := Create(path, 4*SectorSize)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	buf := bytes.Repeat([]byte{0x42}, SectorSize)
	if err := d.WriteSector(1, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	d2, err := Attach(path)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer d2.Close()

	out := make([]byte, SectorSize)
	if err := d2.ReadSector(1, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf, out) {
		t.Fatalf("read back mismatch after attach")
	}
}

func TestAttachRejectsSecondHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.img")
	d, err := Create(path, 2*SectorSize)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer d.Close()

	if _, err := Attach(path); err == nil {
		t.Fatalf("expected lock error attaching a second handle")
	}
}
