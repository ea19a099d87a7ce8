package btree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a breadth-first textual dump of every node in the tree to
// w, grounded on the reference implementation's printf-based dump but
// expressed as an io.Writer formatter instead of a direct stdout print so
// callers (tests, the dump CLI subcommand) can capture it.
func (t *Tree) Fprint(w io.Writer) error {
	queue := []uint32{t.sb.rootLBA}

	for len(queue) > 0 {
		lba := queue[0]
		queue = queue[1:]

		n, err := t.pool.acquire(lba)
		if err != nil {
			return err
		}

		kind := "leaf"
		if n.internal {
			kind = "internal"
		}
		fmt.Fprintf(w, "LBA 0x%08x  kind=%s  nkeys=%d\n", n.lba, kind, n.nkeys)

		upto := n.nkeys
		if n.internal {
			upto++
		}
		for i := 0; i < upto; i++ {
			if i < n.nkeys {
				fmt.Fprintf(w, "  entry %d: key=%-*s lba=0x%08x\n",
					i, t.keySize, strings.TrimRight(string(n.keyAt(i)), "\x00"), n.lbas[i])
			} else {
				fmt.Fprintf(w, "  entry %d: %-*s lba=0x%08x\n", i, t.keySize+4, "", n.lbas[i])
			}
		}
		fmt.Fprintln(w)

		if n.internal {
			for i := 0; i <= n.nkeys; i++ {
				queue = append(queue, n.lbas[i])
			}
		}

		if err := t.pool.releaseOne(n); err != nil {
			return err
		}
	}
	return nil
}

// Print returns the breadth-first textual dump as a string (spec §6
// print(h)).
func (t *Tree) Print() (string, error) {
	var sb strings.Builder
	if err := t.Fprint(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
