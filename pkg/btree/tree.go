// Package btree implements a disk-backed B+ tree index over fixed-size
// keys and one-sector record payloads. See the index API: Create,
// Attach, Insert, Find, Disk, KeySize, Print.
package btree

import (
	"bytes"
	"fmt"
	"time"

	"bptreedb/pkg/disk"
	"bptreedb/pkg/metrics"
)

// Tree is a handle on one attached index. It owns a node pool and is not
// safe for concurrent use (§5): exactly one operation is in flight at a
// time against a given handle.
type Tree struct {
	d       *disk.Disk
	sb      *superblock
	pool    *pool
	keySize int
	maxKeys int
	metrics *metrics.Metrics

	// scratch set by search on a miss at a leaf, consumed by Insert.
	pendingLeaf  *node
	pendingIndex int
}

// Create initializes a brand-new tree on a freshly created device file.
// sizeBytes must be a positive multiple of disk.SectorSize; keySize must
// be in 1..disk.SectorSize-6 (spec §6). The root starts as a zero-filled
// leaf at LBA 1, and first_free_block starts at 2 (I5).
func Create(path string, sizeBytes int64, keySize int) (*Tree, error) {
	if keySize < 1 || keySize > disk.SectorSize-6 {
		return nil, fmt.Errorf("%w: key_size %d", ErrKeySize, keySize)
	}

	d, err := disk.Create(path, sizeBytes)
	if err != nil {
		return nil, err
	}

	sb := &superblock{keySize: uint32(keySize), rootLBA: 1, firstFreeBlock: 2, dirty: true}
	if err := d.WriteSector(0, encodeSuperblock(sb)); err != nil {
		_ = d.Close()
		return nil, err
	}
	sb.dirty = false

	root := make([]byte, disk.SectorSize)
	if err := d.WriteSector(1, root); err != nil {
		_ = d.Close()
		return nil, err
	}

	t := &Tree{d: d, sb: sb, keySize: keySize, maxKeys: maxKeysFor(keySize)}
	t.pool = newPool(d, keySize, sb, nil)
	return t, nil
}

// Attach re-reads the superblock of an existing device and returns a
// usable handle (lifecycle: "Attaching re-reads the superblock").
func Attach(path string) (*Tree, error) {
	d, err := disk.Attach(path)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, disk.SectorSize)
	if err := d.ReadSector(0, buf); err != nil {
		_ = d.Close()
		return nil, err
	}
	sb := decodeSuperblock(buf)

	t := &Tree{d: d, sb: sb, keySize: int(sb.keySize), maxKeys: maxKeysFor(int(sb.keySize))}
	t.pool = newPool(d, t.keySize, sb, nil)
	return t, nil
}

// SetMetrics attaches a Prometheus-backed collector to this handle. Pass
// nil to disable instrumentation (the default).
func (t *Tree) SetMetrics(m *metrics.Metrics) {
	t.metrics = m
	t.pool.metrics = m
}

// Close releases the underlying device handle. It does not flush
// anything: every operation leaves the tree durable on its own exit path.
func (t *Tree) Close() error { return t.d.Close() }

// Disk returns the underlying device handle (spec §6 disk(h)).
func (t *Tree) Disk() *disk.Disk { return t.d }

// KeySize returns the configured key size (spec §6 key_size(h)).
func (t *Tree) KeySize() int { return t.keySize }

func (t *Tree) checkKey(key []byte) error {
	if len(key) != t.keySize {
		return fmt.Errorf("%w: got %d, want %d", ErrKeySize, len(key), t.keySize)
	}
	return nil
}

func (t *Tree) checkRecord(record []byte) error {
	if len(record) != disk.SectorSize {
		return fmt.Errorf("%w: got %d, want %d", ErrRecordSize, len(record), disk.SectorSize)
	}
	return nil
}

// Find performs a point lookup. It returns the record LBA on a hit, or 0
// on a miss (LBA 0 is reserved for the superblock and is never a record).
func (t *Tree) Find(key []byte) (uint32, error) {
	start := time.Now()
	if err := t.checkKey(key); err != nil {
		return 0, err
	}

	lba, err := t.search(key)
	if err != nil {
		return 0, err
	}
	if lba == 0 {
		// search() leaves a miss's path pinned so Insert can mutate the
		// leaf in place; a standalone Find has no further use for it and
		// must still release every exit path (§5 scoped acquisition).
		if err := t.pool.releasePath(t.pendingLeaf); err != nil {
			return 0, err
		}
	}
	if t.metrics != nil {
		t.metrics.ObserveFind(lba != 0, time.Since(start))
	}
	return lba, nil
}

// search descends from the root. On a hit it releases the traversal path
// itself and returns the record lba. On a miss it records
// pendingLeaf/pendingIndex and leaves the whole path (leaf through root)
// pinned -- not on the free list -- so a caller that intends to mutate
// the leaf (Insert) can do so before releasing it; a caller with no
// mutation to make (Find) must release it itself.
func (t *Tree) search(key []byte) (uint32, error) {
	t.pendingLeaf = nil
	t.pendingIndex = 0

	root, err := t.pool.acquire(t.sb.rootLBA)
	if err != nil {
		return 0, err
	}

	cur := root
	for {
		if cur.nkeys == 0 {
			// Only possible at an empty root: short-circuit to a miss
			// instead of evaluating mid from an empty binary search range.
			t.pendingLeaf = cur
			t.pendingIndex = 0
			return 0, nil
		}

		idx, found := binarySearchKey(cur, key, t.keySize)
		if found {
			if !cur.internal {
				lba := cur.lbas[idx]
				return lba, t.pool.releasePath(cur)
			}
			// Interior hit: descend rightmost from the matched child to
			// find the leaf copy of this key and its record lba. The B+
			// tree property duplicates separators at the leaf level, so
			// an interior match alone never names a record.
			lba, err := t.descendRightmost(cur.lbas[idx])
			if err != nil {
				return 0, err
			}
			return lba, t.pool.releasePath(cur)
		}

		if !cur.internal {
			t.pendingLeaf = cur
			t.pendingIndex = idx
			return 0, nil
		}

		child, err := t.pool.acquire(cur.lbas[idx])
		if err != nil {
			return 0, err
		}
		child.parent = cur
		child.parentIndex = idx
		cur = child
	}
}

// descendRightmost follows lbas[nkeys] (the last child) repeatedly until
// a leaf is reached, then returns that leaf's rightmost record lba. This
// node is read and released independently of the search path chain: it
// is never mutated and carries no parent linkage the caller needs.
func (t *Tree) descendRightmost(lba uint32) (uint32, error) {
	for {
		n, err := t.pool.acquire(lba)
		if err != nil {
			return 0, err
		}
		if !n.internal {
			result := n.lbas[n.nkeys-1]
			if err := t.pool.releaseOne(n); err != nil {
				return 0, err
			}
			return result, nil
		}
		next := n.lbas[n.nkeys]
		if err := t.pool.releaseOne(n); err != nil {
			return 0, err
		}
		lba = next
	}
}

// binarySearchKey searches cur.keys[0:cur.nkeys] for key. found is true
// on an exact match, in which case idx is the matching slot. On a miss,
// idx is the index where key belongs (the smallest i such that key <
// keys[i], or nkeys if key is larger than every key present).
func binarySearchKey(cur *node, key []byte, keySize int) (idx int, found bool) {
	low, high := 0, cur.nkeys-1
	for low <= high {
		mid := (low + high) / 2
		cmp := bytes.Compare(key, cur.keyAt(mid))
		switch {
		case cmp < 0:
			high = mid - 1
		case cmp > 0:
			low = mid + 1
		default:
			return mid, true
		}
	}
	return low, false
}

// Insert adds key->record, or overwrites the record in place if key
// already exists (spec §4.5.2). Returns the record lba, or 0 if the
// device has no free blocks left (ErrDeviceFull is also returned in that
// case so callers can distinguish it from a plain sentinel).
func (t *Tree) Insert(key, record []byte) (uint32, error) {
	start := time.Now()
	if err := t.checkKey(key); err != nil {
		return 0, err
	}
	if err := t.checkRecord(record); err != nil {
		return 0, err
	}

	if t.sb.firstFreeBlock >= t.numLBAs() {
		if t.metrics != nil {
			t.metrics.ObserveInsert("full", time.Since(start))
		}
		return 0, ErrDeviceFull
	}

	lba, err := t.search(key)
	if err != nil {
		return 0, err
	}

	if lba != 0 {
		if err := t.d.WriteSector(lba, record); err != nil {
			return 0, err
		}
		if t.metrics != nil {
			t.metrics.ObserveInsert("update", time.Since(start))
		}
		return lba, nil
	}

	leaf := t.pendingLeaf
	idx := t.pendingIndex

	newLBA, err := t.insertIntoLeaf(leaf, idx, key, record)
	if err != nil {
		return 0, err
	}

	t.sb.dirty = true
	if err := t.pool.releasePath(leaf); err != nil {
		return 0, err
	}

	if t.metrics != nil {
		t.metrics.ObserveInsert("insert", time.Since(start))
	}
	return newLBA, nil
}

// insertIntoLeaf allocates a new record block, splices key/lba into leaf
// at idx, and splits the leaf if it now overflows (I2). Mirrors the
// reference insert order precisely: keys shift using the pre-increment
// key count, then nkeys increments, then lbas shift using the
// post-increment count -- the in-memory overflow slot means neither shift
// needs a bounds check before the split.
func (t *Tree) insertIntoLeaf(leaf *node, idx int, key, record []byte) (uint32, error) {
	if t.sb.firstFreeBlock > 0xFFFFFFFF {
		return 0, ErrLBAOverflow
	}

	for i := leaf.nkeys; i > idx; i-- {
		copy(leaf.keys[i], leaf.keys[i-1])
	}
	leaf.setKey(idx, key)
	leaf.nkeys++

	r := uint32(t.sb.firstFreeBlock)
	t.sb.firstFreeBlock++
	t.sb.dirty = true
	if err := t.d.WriteSector(r, record); err != nil {
		return 0, err
	}

	for i := leaf.nkeys; i > idx; i-- {
		leaf.lbas[i] = leaf.lbas[i-1]
	}
	leaf.lbas[idx] = r
	leaf.dirty = true

	if leaf.nkeys > t.maxKeys {
		if err := t.split(leaf); err != nil {
			return 0, err
		}
	}

	return r, nil
}

func (t *Tree) numLBAs() uint64 { return t.d.NumLBAs() }
