package btree

import (
	"encoding/binary"

	"bptreedb/pkg/disk"
)

// superblock mirrors sector 0 of the device: {key_size, root_lba,
// first_free_block}. All other bytes in the sector are zero. The codec
// is pure -- it never touches the disk itself.
type superblock struct {
	keySize        uint32
	rootLBA        uint32
	firstFreeBlock uint64

	dirty bool
}

const (
	sbKeySizeOff = 0
	sbRootLBAOff = 4
	sbFreeOff    = 8
)

// encodeSuperblock packs sb into a fresh, zero-filled sector buffer.
func encodeSuperblock(sb *superblock) []byte {
	buf := make([]byte, disk.SectorSize)
	binary.LittleEndian.PutUint32(buf[sbKeySizeOff:], sb.keySize)
	binary.LittleEndian.PutUint32(buf[sbRootLBAOff:], sb.rootLBA)
	binary.LittleEndian.PutUint64(buf[sbFreeOff:], sb.firstFreeBlock)
	return buf
}

// decodeSuperblock unpacks the first 16 bytes of a sector-0 buffer.
func decodeSuperblock(buf []byte) *superblock {
	return &superblock{
		keySize:        binary.LittleEndian.Uint32(buf[sbKeySizeOff:]),
		rootLBA:        binary.LittleEndian.Uint32(buf[sbRootLBAOff:]),
		firstFreeBlock: binary.LittleEndian.Uint64(buf[sbFreeOff:]),
	}
}
