package arithm

import (
	"sync"

	"github.com/rmartinezch/mixnet/bytetree"
)

// GroupArray is an immutable ordered sequence of Elements sharing a
// common Group.
type GroupArray struct {
	group Group
	elems []Element
}

// NewGroupArray wraps elems, which must all belong to group.
func NewGroupArray(group Group, elems []Element) *GroupArray {
	for _, e := range elems {
		checkSameGroup(group, e.Group(), "NewGroupArray")
	}
	cp := make([]Element, len(elems))
	copy(cp, elems)
	return &GroupArray{group: group, elems: cp}
}

// Len returns the array length N.
func (a *GroupArray) Len() int { return len(a.elems) }

// Group returns the common parent group.
func (a *GroupArray) Group() Group { return a.group }

// Get returns the i-th element.
func (a *GroupArray) Get(i int) Element { return a.elems[i] }

// Slice returns the underlying elements; callers must not mutate it.
func (a *GroupArray) Slice() []Element { return a.elems }

func (a *GroupArray) checkLen(b *GroupArray, what string) {
	if a.Len() != b.Len() {
		panic(arithmErrorf("%s: length mismatch %d != %d", what, a.Len(), b.Len()))
	}
}

// Mul returns the componentwise product a_i * b_i.
func (a *GroupArray) Mul(b *GroupArray) *GroupArray {
	a.checkLen(b, "Mul")
	out := make([]Element, a.Len())
	parallelFor(a.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = a.elems[i].Mul(b.elems[i])
		}
	})
	return &GroupArray{group: a.group, elems: out}
}

// Inv returns the componentwise inverse.
func (a *GroupArray) Inv() *GroupArray {
	out := make([]Element, a.Len())
	parallelFor(a.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = a.elems[i].Inv()
		}
	})
	return &GroupArray{group: a.group, elems: out}
}

// Exp returns the componentwise exponentiation a_i^k for a single
// shared exponent k.
func (a *GroupArray) Exp(k *RingElement) *GroupArray {
	out := make([]Element, a.Len())
	parallelFor(a.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = a.elems[i].Exp(k)
		}
	})
	return &GroupArray{group: a.group, elems: out}
}

// ExpArray returns the componentwise exponentiation a_i^{k_i}.
func (a *GroupArray) ExpArray(k *RingArray) *GroupArray {
	if a.Len() != k.Len() {
		panic(arithmErrorf("ExpArray: length mismatch %d != %d", a.Len(), k.Len()))
	}
	out := make([]Element, a.Len())
	parallelFor(a.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = a.elems[i].Exp(k.Get(i))
		}
	})
	return &GroupArray{group: a.group, elems: out}
}

// ExpProd computes prod_i a_i^{k_i}. Ranges are computed
// independently in the fork-join pool and then combined. Within a
// range every a_i^{k_i} is computed by its own exponentiation and
// multiplied into the accumulator; no simultaneous multi-exponentiation
// (sliding window or Pippenger) is used.
func (a *GroupArray) ExpProd(k *RingArray) Element {
	if a.Len() != k.Len() {
		panic(arithmErrorf("ExpProd: length mismatch %d != %d", a.Len(), k.Len()))
	}
	if a.Len() == 0 {
		return a.group.Identity()
	}

	los, his := splitRanges(a.Len())
	partials := make([]Element, len(los))
	var wg sync.WaitGroup
	for ri := range los {
		wg.Add(1)
		go func(ri int) {
			defer wg.Done()
			acc := a.group.Identity()
			for i := los[ri]; i < his[ri]; i++ {
				acc = acc.Mul(a.elems[i].Exp(k.Get(i)))
			}
			partials[ri] = acc
		}(ri)
	}
	wg.Wait()

	acc := a.group.Identity()
	for _, e := range partials {
		acc = acc.Mul(e)
	}
	return acc
}

// Prod returns prod_i a_i.
func (a *GroupArray) Prod() Element {
	acc := a.group.Identity()
	for _, e := range a.elems {
		acc = acc.Mul(e)
	}
	return acc
}

// Equal reports pointwise equality between two arrays of equal length.
func (a *GroupArray) Equal(b *GroupArray) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.elems {
		if !a.elems[i].Equal(b.elems[i]) {
			return false
		}
	}
	return true
}

// ShiftPush drops the last element and prepends v.
func (a *GroupArray) ShiftPush(v Element) *GroupArray {
	out := make([]Element, a.Len())
	out[0] = v
	copy(out[1:], a.elems[:a.Len()-1])
	return &GroupArray{group: a.group, elems: out}
}

// Permute returns the array indexed through p: out[i] = a[p.At(i)].
func (a *GroupArray) Permute(p IndexMapper) *GroupArray {
	if p.Len() != a.Len() {
		panic(arithmErrorf("Permute: length mismatch %d != %d", p.Len(), a.Len()))
	}
	out := make([]Element, a.Len())
	for i := range out {
		out[i] = a.elems[p.At(i)]
	}
	return &GroupArray{group: a.group, elems: out}
}

// ToElementArray decodes N group elements from rd. In safe mode every
// element's group membership is checked as it is decoded; in unsafe
// mode only syntactic validity is checked and the caller must call
// VerifyUnsafe before trusting the result.
func ToElementArray(group Group, n int, rd *bytetree.Reader, safe bool) (*GroupArray, error) {
	if !rd.IsNode() {
		return nil, formatErrorf("group array must be a node")
	}
	nc, err := rd.NChildren()
	if err != nil || nc != n {
		return nil, formatErrorf("group array has %d children, want %d", nc, n)
	}
	elems := make([]Element, n)
	for i := 0; i < n; i++ {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		var e Element
		if safe {
			e, err = group.Decode(c)
		} else {
			e, err = group.DecodeUnsafe(c)
		}
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return &GroupArray{group: group, elems: elems}, nil
}

// VerifyUnsafe checks subgroup membership of every element in
// parallel, reporting the first failure. It is the companion to
// unsafe-mode ToElementArray.
func VerifyUnsafe(group Group, elems []Element) error {
	errs := make([]error, len(elems))
	parallelFor(len(elems), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			errs[i] = group.VerifyMembership(elems[i])
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ToByteTree encodes the array as a node of N element encodings.
func (a *GroupArray) ToByteTree() bytetree.Tree {
	children := make([]bytetree.Tree, a.Len())
	for i, e := range a.elems {
		children[i] = e.ToByteTree()
	}
	return bytetree.NewNode(children...)
}

// Free is a no-op under Go's garbage collector; see RingArray.Free.
func (a *GroupArray) Free() {}

func splitRanges(n int) (los, his []int) {
	if n == 0 {
		return nil, nil
	}
	workers := 1
	if n > 1 {
		workers = n
		if workers > 8 {
			workers = 8
		}
	}
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		los = append(los, lo)
		his = append(his, hi)
	}
	return los, his
}
