package arithm

import "github.com/rmartinezch/mixnet/bytetree"

// IndexMapper is the minimal interface arrays need from a permutation:
// At(i) gives the source index feeding output position i, and Len
// gives the array length. package permutation's Permutation type
// satisfies this without arithm importing permutation, keeping the
// dependency one-directional.
type IndexMapper interface {
	At(i int) int
	Len() int
}

// RingArray is an immutable ordered sequence of RingElements sharing a
// common Ring. Every binary operation requires equal length operands;
// a mismatch is an *ArithmeticError, matching the "must not be caught
// silently" contract for internal bugs.
type RingArray struct {
	ring  *Ring
	elems []*RingElement
}

// NewRingArray wraps elems, which must all belong to ring.
func NewRingArray(ring *Ring, elems []*RingElement) *RingArray {
	for _, e := range elems {
		ring.checkSame(e.ring, "NewRingArray")
	}
	cp := make([]*RingElement, len(elems))
	copy(cp, elems)
	return &RingArray{ring: ring, elems: cp}
}

// Len returns the array length N.
func (a *RingArray) Len() int { return len(a.elems) }

// Ring returns the common parent ring.
func (a *RingArray) Ring() *Ring { return a.ring }

// Get returns the i-th element.
func (a *RingArray) Get(i int) *RingElement { return a.elems[i] }

// Slice returns the underlying elements. The caller must not mutate
// the returned slice's contents.
func (a *RingArray) Slice() []*RingElement { return a.elems }

func (a *RingArray) checkLen(b *RingArray, what string) {
	if a.Len() != b.Len() {
		panic(arithmErrorf("%s: length mismatch %d != %d", what, a.Len(), b.Len()))
	}
}

// Add returns the componentwise sum.
func (a *RingArray) Add(b *RingArray) *RingArray {
	a.checkLen(b, "Add")
	out := make([]*RingElement, a.Len())
	for i := range out {
		out[i] = a.elems[i].Add(b.elems[i])
	}
	return &RingArray{ring: a.ring, elems: out}
}

// Sub returns the componentwise difference.
func (a *RingArray) Sub(b *RingArray) *RingArray {
	a.checkLen(b, "Sub")
	out := make([]*RingElement, a.Len())
	for i := range out {
		out[i] = a.elems[i].Sub(b.elems[i])
	}
	return &RingArray{ring: a.ring, elems: out}
}

// Mul returns the componentwise product.
func (a *RingArray) Mul(b *RingArray) *RingArray {
	a.checkLen(b, "Mul")
	out := make([]*RingElement, a.Len())
	for i := range out {
		out[i] = a.elems[i].Mul(b.elems[i])
	}
	return &RingArray{ring: a.ring, elems: out}
}

// MulAdd returns the componentwise a_i*v + b_i.
func (a *RingArray) MulAdd(v *RingElement, b *RingArray) *RingArray {
	a.checkLen(b, "MulAdd")
	out := make([]*RingElement, a.Len())
	for i := range out {
		out[i] = a.elems[i].MulAdd(v, b.elems[i])
	}
	return &RingArray{ring: a.ring, elems: out}
}

// InnerProduct returns sum_i a_i*b_i.
func (a *RingArray) InnerProduct(b *RingArray) *RingElement {
	a.checkLen(b, "InnerProduct")
	acc := a.ring.Zero()
	for i := range a.elems {
		acc = acc.Add(a.elems[i].Mul(b.elems[i]))
	}
	return acc
}

// Sum returns sum_i a_i.
func (a *RingArray) Sum() *RingElement {
	acc := a.ring.Zero()
	for _, e := range a.elems {
		acc = acc.Add(e)
	}
	return acc
}

// Prod returns prod_i a_i.
func (a *RingArray) Prod() *RingElement {
	acc := a.ring.One()
	for _, e := range a.elems {
		acc = acc.Mul(e)
	}
	return acc
}

// Prods returns the cumulative products (a_0, a_0*a_1, ..., prod(a)).
func (a *RingArray) Prods() *RingArray {
	out := make([]*RingElement, a.Len())
	acc := a.ring.One()
	for i, e := range a.elems {
		acc = acc.Mul(e)
		out[i] = acc
	}
	return &RingArray{ring: a.ring, elems: out}
}

// ShiftPush drops the last element and prepends v.
func (a *RingArray) ShiftPush(v *RingElement) *RingArray {
	out := make([]*RingElement, a.Len())
	out[0] = v
	copy(out[1:], a.elems[:a.Len()-1])
	return &RingArray{ring: a.ring, elems: out}
}

// Permute returns the array indexed through p: out[i] = a[p.At(i)].
func (a *RingArray) Permute(p IndexMapper) *RingArray {
	if p.Len() != a.Len() {
		panic(arithmErrorf("Permute: length mismatch %d != %d", p.Len(), a.Len()))
	}
	out := make([]*RingElement, a.Len())
	for i := range out {
		out[i] = a.elems[p.At(i)]
	}
	return &RingArray{ring: a.ring, elems: out}
}

// RecLin computes y_0 = a_0, y_i = a_i + e_i*y_{i-1} for i>0, treating
// the receiver as the base vector b and e as the multiplier vector.
// It returns (y, y_{N-1}).
func (a *RingArray) RecLin(e *RingArray) (*RingArray, *RingElement) {
	a.checkLen(e, "RecLin")
	n := a.Len()
	y := make([]*RingElement, n)
	y[0] = a.elems[0]
	for i := 1; i < n; i++ {
		y[i] = a.elems[i].Add(e.elems[i].Mul(y[i-1]))
	}
	return &RingArray{ring: a.ring, elems: y}, y[n-1]
}

// ToByteTree encodes the array as a node of N leaves.
func (a *RingArray) ToByteTree() bytetree.Tree {
	children := make([]bytetree.Tree, a.Len())
	for i, e := range a.elems {
		children[i] = e.ToByteTree()
	}
	return bytetree.NewNode(children...)
}

// Free is a no-op under Go's garbage collector. It exists to satisfy
// the scoped-acquisition/guaranteed-release contract described for
// off-heap-backed arrays (§5): an implementation backed by a mapped
// file can plug into the same interface without every caller changing.
func (a *RingArray) Free() {}
