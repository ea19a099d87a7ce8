package btree

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bptreedb/pkg/disk"
)

const (
	testKeySize   = 32
	testDataBytes = 1048576 // -> 1024 sectors of 1024 bytes
)

func fixedKey(s string) []byte {
	b := make([]byte, testKeySize)
	copy(b, s)
	return b
}

func fixedRecord(b byte) []byte {
	return bytes.Repeat([]byte{b}, disk.SectorSize)
}

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.img")
	tr, err := Create(path, testDataBytes, testKeySize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestCreate_EmptyTreeMisses(t *testing.T) {
	tr := newTestTree(t)

	lba, err := tr.Find(fixedKey("abc000"))
	require.NoError(t, err)
	require.Zero(t, lba)
}

func TestInsert_SameKeyUpdatesInPlace(t *testing.T) {
	tr := newTestTree(t)

	lba1, err := tr.Insert(fixedKey("K0"), fixedRecord(0xAA))
	require.NoError(t, err)
	require.EqualValues(t, 2, lba1)

	lba2, err := tr.Insert(fixedKey("K0"), fixedRecord(0xBB))
	require.NoError(t, err)
	require.Equal(t, lba1, lba2)

	found, err := tr.Find(fixedKey("K0"))
	require.NoError(t, err)
	require.Equal(t, lba1, found)

	buf := make([]byte, disk.SectorSize)
	require.NoError(t, tr.Disk().ReadSector(found, buf))
	require.Equal(t, fixedRecord(0xBB), buf)
}

func TestInsert_SequentialFillsRootWithoutSplit(t *testing.T) {
	tr := newTestTree(t)

	const n = 28 // == MAXKEY for key_size=32, S=1024
	for i := 0; i < n; i++ {
		key := fixedKey(keyName(i))
		lba, err := tr.Insert(key, fixedRecord(byte(i)))
		require.NoError(t, err)
		require.EqualValues(t, 2+i, lba)
	}

	require.EqualValues(t, 2+n, tr.sb.firstFreeBlock)
	require.False(t, tr.isRootSplit(t))
}

func keyName(i int) string {
	return "K" + pad2(i)
}

func pad2(i int) string {
	if i < 10 {
		return "0" + itoa(i)
	}
	return itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := [20]byte{}
	n := 0
	for i > 0 {
		digits[n] = byte('0' + i%10)
		i /= 10
		n++
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = digits[n-1-i]
	}
	return string(out)
}

// isRootSplit reports whether the root has become an interior node
// (depth greater than 1).
func (t *Tree) isRootSplit(tt *testing.T) bool {
	tt.Helper()
	n, err := t.pool.acquire(t.sb.rootLBA)
	require.NoError(tt, err)
	internal := n.internal
	require.NoError(tt, t.pool.releaseOne(n))
	return internal
}

func TestInsert_OverflowSplitsRootAndGrowsDepth(t *testing.T) {
	tr := newTestTree(t)

	const n = 28
	for i := 0; i < n; i++ {
		_, err := tr.Insert(fixedKey(keyName(i)), fixedRecord(byte(i)))
		require.NoError(t, err)
	}

	lba, err := tr.Insert(fixedKey("K28"), fixedRecord(0xFF))
	require.NoError(t, err)
	require.NotZero(t, lba)

	// Root must now be an internal node with exactly one separator and
	// two children: depth has grown from 1 to 2.
	root, err := tr.pool.acquire(tr.sb.rootLBA)
	require.NoError(t, err)
	require.True(t, root.internal)
	require.Equal(t, 1, root.nkeys)
	require.NoError(t, tr.pool.releaseOne(root))

	for i := 0; i <= n; i++ {
		key := fixedKey(keyName(i))
		if i == n {
			key = fixedKey("K28")
		}
		found, err := tr.Find(key)
		require.NoError(t, err)
		require.NotZero(t, found)
	}
}

func TestInsert_ManySplitsPreservesAllKeys(t *testing.T) {
	tr := newTestTree(t)

	const n = 400
	lbas := make(map[string]uint32, n)
	for i := 0; i < n; i++ {
		key := fixedKey("KEY" + itoa(i))
		lba, err := tr.Insert(key, fixedRecord(byte(i)))
		require.NoError(t, err)
		lbas[string(key)] = lba
	}

	for k, want := range lbas {
		got, err := tr.Find([]byte(k))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestAttach_RoundTripAfterDetach(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.img")
	tr, err := Create(path, testDataBytes, testKeySize)
	require.NoError(t, err)

	const n = 40
	lbas := make(map[string]uint32, n)
	for i := 0; i < n; i++ {
		key := fixedKey("K" + itoa(i))
		lba, err := tr.Insert(key, fixedRecord(byte(i)))
		require.NoError(t, err)
		lbas[string(key)] = lba
	}
	require.NoError(t, tr.Close())

	tr2, err := Attach(path)
	require.NoError(t, err)
	defer tr2.Close()

	for k, want := range lbas {
		got, err := tr2.Find([]byte(k))
		require.NoError(t, err)
		require.Equal(t, want, got, "key %q", k)
	}
}

func TestInsert_DeviceFullReturnsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.img")
	// Small device: 4 sectors -> num_lbas=4, so only lba 2 and 3 are
	// available for records/nodes beyond superblock(0) and root(1).
	tr, err := Create(path, 4*disk.SectorSize, testKeySize)
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Insert(fixedKey("A"), fixedRecord(1))
	require.NoError(t, err)

	_, err = tr.Insert(fixedKey("B"), fixedRecord(2))
	require.NoError(t, err)

	lba, err := tr.Insert(fixedKey("C"), fixedRecord(3))
	require.ErrorIs(t, err, ErrDeviceFull)
	require.Zero(t, lba)
}

func TestFind_MissLeavesTreeUsable(t *testing.T) {
	tr := newTestTree(t)

	_, err := tr.Insert(fixedKey("A"), fixedRecord(1))
	require.NoError(t, err)

	lba, err := tr.Find(fixedKey("ZZZ"))
	require.NoError(t, err)
	require.Zero(t, lba)

	// The pool's free list must not have leaked: another operation must
	// still be able to run cleanly afterward.
	lba, err = tr.Find(fixedKey("A"))
	require.NoError(t, err)
	require.NotZero(t, lba)
}

func TestInsert_MinAndMaxPositions(t *testing.T) {
	tr := newTestTree(t)

	_, err := tr.Insert(fixedKey("M"), fixedRecord(1))
	require.NoError(t, err)
	_, err = tr.Insert(fixedKey("A"), fixedRecord(2)) // new minimum
	require.NoError(t, err)
	_, err = tr.Insert(fixedKey("Z"), fixedRecord(3)) // new maximum
	require.NoError(t, err)

	root, err := tr.pool.acquire(tr.sb.rootLBA)
	require.NoError(t, err)
	require.Equal(t, 3, root.nkeys)
	require.Equal(t, "A", trimKey(root.keyAt(0)))
	require.Equal(t, "M", trimKey(root.keyAt(1)))
	require.Equal(t, "Z", trimKey(root.keyAt(2)))
	require.NoError(t, tr.pool.releaseOne(root))
}

func trimKey(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

func TestFind_KeySizeMismatchIsError(t *testing.T) {
	tr := newTestTree(t)
	_, err := tr.Find([]byte("short"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrKeySize))
}

func TestPrint_BreadthFirstDumpIncludesAllNodes(t *testing.T) {
	tr := newTestTree(t)
	for i := 0; i < 40; i++ {
		_, err := tr.Insert(fixedKey("K"+itoa(i)), fixedRecord(byte(i)))
		require.NoError(t, err)
	}

	out, err := tr.Print()
	require.NoError(t, err)
	require.Contains(t, out, "kind=internal")
	require.Contains(t, out, "kind=leaf")
}
