// Package permutation implements sampling and representing a uniform
// bijection on {0,...,N-1}, the object committed to by the shuffle
// proof's permutation commitment.
package permutation

import (
	"crypto/cipher"
	"encoding/binary"
	"math/bits"
	"sort"

	"go.dedis.ch/kyber/v4/util/random"

	"github.com/rmartinezch/mixnet/bytetree"
)

// Permutation is an immutable bijection on {0,...,N-1}.
type Permutation struct {
	// forward[i] is the index that position i maps to: applying the
	// permutation to an array a yields out[i] = a[forward[i]], matching
	// arithm.IndexMapper's At(i) contract.
	forward []int
}

// Len returns N.
func (p *Permutation) Len() int { return len(p.forward) }

// At returns forward[i], satisfying arithm.IndexMapper.
func (p *Permutation) At(i int) int { return p.forward[i] }

// Identity returns the identity permutation of size n.
func Identity(n int) *Permutation {
	f := make([]int, n)
	for i := range f {
		f[i] = i
	}
	return &Permutation{forward: f}
}

// Inv returns the inverse permutation.
func (p *Permutation) Inv() *Permutation {
	inv := make([]int, len(p.forward))
	for i, v := range p.forward {
		inv[v] = i
	}
	return &Permutation{forward: inv}
}

// Sample draws a uniformly random permutation of size n. Each index i
// is assigned a random prefix of b = rbitlen + 2*ceil(log2 n) bits and
// the indices are sorted by that prefix, stable on i to break ties;
// the statistical distance to uniform is at most 2^-rbitlen by a union
// bound over the n(n-1)/2 pairs that could collide.
func Sample(n int, rbitlen int, rand cipher.Stream) *Permutation {
	if n <= 0 {
		return &Permutation{forward: nil}
	}
	logn := bits.Len(uint(n - 1))
	if n == 1 {
		logn = 0
	}
	prefixBits := rbitlen + 2*logn

	type keyed struct {
		idx    int
		prefix []byte
	}
	items := make([]keyed, n)
	for i := 0; i < n; i++ {
		items[i] = keyed{idx: i, prefix: random.Bits(uint(prefixBits), true, rand)}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return compareBytes(items[a].prefix, items[b].prefix) < 0
	})

	forward := make([]int, n)
	for pos, it := range items {
		forward[pos] = it.idx
	}
	return &Permutation{forward: forward}
}

func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ToByteTree encodes the permutation as N 4-byte big-endian indices,
// per spec §3.
func (p *Permutation) ToByteTree() bytetree.Tree {
	children := make([]bytetree.Tree, len(p.forward))
	for i, v := range p.forward {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v))
		children[i] = bytetree.NewLeaf(b[:])
	}
	return bytetree.NewNode(children...)
}

// FromByteTree reads a permutation of size n from a node of N 4-byte
// big-endian indices, verifying it is a genuine bijection.
func FromByteTree(n int, rd *bytetree.Reader) (*Permutation, error) {
	if !rd.IsNode() {
		return nil, &bytetree.FormatError{Msg: "permutation must be a node"}
	}
	nc, err := rd.NChildren()
	if err != nil || nc != n {
		return nil, &bytetree.FormatError{Msg: "permutation has wrong length"}
	}
	forward := make([]int, n)
	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		v, err := c.ReadInt()
		if err != nil {
			return nil, err
		}
		if int(v) < 0 || int(v) >= n || seen[v] {
			return nil, &bytetree.FormatError{Msg: "permutation is not a bijection"}
		}
		seen[v] = true
		forward[i] = int(v)
	}
	return &Permutation{forward: forward}, nil
}
