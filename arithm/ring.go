package arithm

import (
	"crypto/cipher"
	"fmt"
	"math/big"

	"go.dedis.ch/kyber/v4/util/random"

	"github.com/rmartinezch/mixnet/bytetree"
)

// Ring is the scalar field Z_q associated with a group of prime order
// q. Elements are integers mod q; the canonical encoding is a
// fixed-width big-endian byte string of length ByteLength.
type Ring struct {
	q        *big.Int
	byteLen  int
}

// NewRing builds the ring of integers modulo the prime q.
func NewRing(q *big.Int) *Ring {
	byteLen := (q.BitLen() + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	return &Ring{q: new(big.Int).Set(q), byteLen: byteLen}
}

// Modulus returns q.
func (r *Ring) Modulus() *big.Int { return r.q }

// ByteLength returns the fixed encoded width of every element.
func (r *Ring) ByteLength() int { return r.byteLen }

// Equal reports whether r and other are the same ring (same modulus).
func (r *Ring) Equal(other *Ring) bool {
	if r == other {
		return true
	}
	if other == nil {
		return false
	}
	return r.q.Cmp(other.q) == 0
}

func (r *Ring) checkSame(other *Ring, what string) {
	if !r.Equal(other) {
		panic(arithmErrorf("%s: mismatched ring", what))
	}
}

// Zero returns the additive identity.
func (r *Ring) Zero() *RingElement { return &RingElement{ring: r, v: big.NewInt(0)} }

// One returns the multiplicative identity.
func (r *Ring) One() *RingElement { return &RingElement{ring: r, v: big.NewInt(1)} }

// Element reduces v modulo q and wraps the result.
func (r *Ring) Element(v *big.Int) *RingElement {
	m := new(big.Int).Mod(v, r.q)
	return &RingElement{ring: r, v: m}
}

// ElementFromInt64 is a convenience wrapper around Element.
func (r *Ring) ElementFromInt64(v int64) *RingElement {
	return r.Element(big.NewInt(v))
}

// RandomElement draws a uniform element of Z_q by sampling bitlen
// random bits and reducing modulo q. The random bits come from the
// single named RandomSource threaded down from the prover entry point.
func (r *Ring) RandomElement(rand cipher.Stream, bitlen int) *RingElement {
	b := random.Bits(uint(bitlen), true, rand)
	v := new(big.Int).SetBytes(b)
	v.Mod(v, r.q)
	return &RingElement{ring: r, v: v}
}

// RandomElementArray draws n independent uniform elements.
func (r *Ring) RandomElementArray(n int, rand cipher.Stream, bitlen int) *RingArray {
	elems := make([]*RingElement, n)
	for i := range elems {
		elems[i] = r.RandomElement(rand, bitlen)
	}
	return &RingArray{ring: r, elems: elems}
}

// Decode reads a single fixed-width big-endian integer from a leaf and
// verifies it lies in [0,q). An out-of-range or wrongly sized integer
// is a *bytetree.FormatError.
func (r *Ring) Decode(rd *bytetree.Reader) (*RingElement, error) {
	if !rd.IsLeaf() {
		return nil, formatErrorf("ring element must be a leaf")
	}
	b, err := rd.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(b) != r.byteLen {
		return nil, formatErrorf("ring element has %d bytes, want %d", len(b), r.byteLen)
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(r.q) >= 0 {
		return nil, formatErrorf("ring element %s out of range", v.String())
	}
	return &RingElement{ring: r, v: v}, nil
}

// DecodeArray reads n consecutive ring elements from a node.
func (r *Ring) DecodeArray(n int, rd *bytetree.Reader) (*RingArray, error) {
	if !rd.IsNode() {
		return nil, formatErrorf("ring array must be a node")
	}
	nc, err := rd.NChildren()
	if err != nil || nc != n {
		return nil, formatErrorf("ring array has %d children, want %d", nc, n)
	}
	elems := make([]*RingElement, n)
	for i := 0; i < n; i++ {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		e, err := r.Decode(c)
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return &RingArray{ring: r, elems: elems}, nil
}

// RingElement is an element of a Ring, i.e. an integer mod q.
type RingElement struct {
	ring *Ring
	v    *big.Int
}

// Ring returns the parent ring of e.
func (e *RingElement) Ring() *Ring { return e.ring }

// BigInt returns the canonical representative of e in [0,q).
func (e *RingElement) BigInt() *big.Int { return new(big.Int).Set(e.v) }

func formatErrorf(format string, args ...interface{}) error {
	return &bytetree.FormatError{Msg: fmt.Sprintf(format, args...)}
}
