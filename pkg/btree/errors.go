package btree

import "errors"

// ErrDeviceFull is returned by Insert when first_free_block has reached
// num_lbas: the device has no room for a new record block. It is not a
// fatal error -- the tree handle remains usable for Find.
var ErrDeviceFull = errors.New("btree: device full")

// ErrCorrupt is returned when an on-disk node fails a basic structural
// check (key count beyond MAXKEY, unknown node kind). This is a
// precondition-violation / I/O-failure class error: the tree should be
// considered untrustworthy after it surfaces.
var ErrCorrupt = errors.New("btree: corrupt node")

// ErrKeySize is a precondition violation: the caller supplied a key of
// the wrong length for this tree, or a key_size outside the valid range
// 1..S-6 at create time.
var ErrKeySize = errors.New("btree: key size mismatch")

// ErrRecordSize is a precondition violation: a record buffer was not
// exactly one sector.
var ErrRecordSize = errors.New("btree: record must be exactly one sector")

// ErrLBAOverflow is a precondition violation: first_free_block would no
// longer fit in the 32-bit LBA width used on disk, even though the
// superblock field is 64 bits wide for format compatibility.
var ErrLBAOverflow = errors.New("btree: first_free_block exceeds 32-bit lba range")
