package btree

import (
	"bptreedb/pkg/disk"
	"bptreedb/pkg/metrics"
)

// pool owns node buffers for one tree handle: it recycles them through a
// singly-linked free list and is the single point where a dirty node's
// bytes become durable. Per spec §5, a pool is owned by exactly one tree
// handle and is not safe for concurrent access.
type pool struct {
	d       *disk.Disk
	keySize int
	maxKeys int
	metrics *metrics.Metrics

	free *node
	sb   *superblock
}

func newPool(d *disk.Disk, keySize int, sb *superblock, m *metrics.Metrics) *pool {
	return &pool{d: d, keySize: keySize, maxKeys: maxKeysFor(keySize), metrics: m, sb: sb}
}

// acquire returns a node buffer for lba, recycled from the free list when
// possible, populated from disk.
func (p *pool) acquire(lba uint32) (*node, error) {
	n := p.take()
	if err := p.d.ReadSector(lba, n.buf); err != nil {
		p.put(n)
		return nil, err
	}
	n.afterRead(lba)
	if n.nkeys > p.maxKeys || n.buf[nodeFlagOff] > 1 {
		p.put(n)
		return nil, ErrCorrupt
	}
	return n, nil
}

// allocate reserves a fresh LBA from the superblock's bump allocator and
// returns a zeroed node for it. The node is not written to disk until it
// (or its dirty ancestor chain) is released.
func (p *pool) allocate(internal bool) (*node, error) {
	if p.sb.firstFreeBlock > 0xFFFFFFFF {
		return nil, ErrLBAOverflow
	}
	lba := uint32(p.sb.firstFreeBlock)
	p.sb.firstFreeBlock++
	p.sb.dirty = true

	n := p.take()
	n.resetEmpty(lba, internal)
	return n, nil
}

// take pops a recycled buffer off the free list, or builds a fresh one.
func (p *pool) take() *node {
	if p.free != nil {
		n := p.free
		p.free = n.next
		n.next = nil
		return n
	}
	return newNode(p.keySize)
}

// put pushes a buffer onto the free list without flushing it. Used for
// discarding a node that was never actually linked into a traversal path
// (e.g. a failed read).
func (p *pool) put(n *node) {
	n.next = p.free
	p.free = n
}

// releaseOne flushes n if dirty and returns it to the free list. Used for
// nodes that are not on the current path chain (new split siblings).
func (p *pool) releaseOne(n *node) error {
	if n.dirty {
		if err := p.d.WriteSector(n.lba, n.encode()); err != nil {
			return err
		}
	}
	p.put(n)
	return nil
}

// releasePath walks the parent chain from leaf to root -- flushing each
// dirty node before linking it onto the free list -- and finally writes
// the superblock if it is dirty. This is the single point where dirty
// state becomes durable, and superblock write ordering is deliberately
// after all node writes for best-effort crash consistency.
//
// Per spec §9's defect note, dirty and parent must be read before the
// node is linked onto the free list, since linking mutates n.next.
func (p *pool) releasePath(leaf *node) error {
	for n := leaf; n != nil; {
		dirty := n.dirty
		parent := n.parent

		if dirty {
			if err := p.d.WriteSector(n.lba, n.encode()); err != nil {
				return err
			}
		}
		p.put(n)

		n = parent
	}

	if p.sb.dirty {
		p.sb.dirty = false
		if err := p.d.WriteSector(0, encodeSuperblock(p.sb)); err != nil {
			return err
		}
	}
	if p.metrics != nil {
		p.metrics.SetFirstFreeBlock(p.sb.firstFreeBlock)
	}
	return nil
}
