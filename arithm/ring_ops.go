package arithm

import (
	"math/big"

	"github.com/rmartinezch/mixnet/bytetree"
)

// Add returns e+b mod q.
func (e *RingElement) Add(b *RingElement) *RingElement {
	e.ring.checkSame(b.ring, "Add")
	return e.ring.Element(new(big.Int).Add(e.v, b.v))
}

// Sub returns e-b mod q.
func (e *RingElement) Sub(b *RingElement) *RingElement {
	e.ring.checkSame(b.ring, "Sub")
	return e.ring.Element(new(big.Int).Sub(e.v, b.v))
}

// Neg returns -e mod q.
func (e *RingElement) Neg() *RingElement {
	return e.ring.Element(new(big.Int).Neg(e.v))
}

// Mul returns e*b mod q.
func (e *RingElement) Mul(b *RingElement) *RingElement {
	e.ring.checkSame(b.ring, "Mul")
	return e.ring.Element(new(big.Int).Mul(e.v, b.v))
}

// MulAdd returns e*v + b mod q, the response-computation idiom used
// throughout the shuffle proof (k_X = v*x + blind).
func (e *RingElement) MulAdd(v, b *RingElement) *RingElement {
	e.ring.checkSame(v.ring, "MulAdd")
	e.ring.checkSame(b.ring, "MulAdd")
	t := new(big.Int).Mul(e.v, v.v)
	t.Add(t, b.v)
	return e.ring.Element(t)
}

// Equal reports value equality within the same ring.
func (e *RingElement) Equal(b *RingElement) bool {
	if !e.ring.Equal(b.ring) {
		return false
	}
	return e.v.Cmp(b.v) == 0
}

// Bytes returns the canonical fixed-width big-endian encoding of e.
func (e *RingElement) Bytes() []byte {
	out := make([]byte, e.ring.byteLen)
	b := e.v.Bytes()
	copy(out[len(out)-len(b):], b)
	return out
}

// ToByteTree encodes e as a leaf.
func (e *RingElement) ToByteTree() bytetree.Tree {
	return bytetree.NewLeaf(e.Bytes())
}
