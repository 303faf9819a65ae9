package arithm

import "github.com/rmartinezch/mixnet/bytetree"

// Group is a cyclic group of known prime order backed by one of the
// two supported instantiations: a multiplicative subgroup modulo a
// safe prime (package-local modpGroup) or a short-Weierstrass elliptic
// curve of prime order (curveGroup, backed by kyber). Both
// implementations share this vocabulary so hvzk, the shuffle proof
// engine, never special-cases which one it is talking to.
type Group interface {
	// Name identifies the group instance; it feeds the Fiat-Shamir
	// session prefix (spec §4.4).
	Name() string

	// ScalarRing returns Z_q, the ring associated with this group.
	ScalarRing() *Ring

	// Identity returns the group's identity element.
	Identity() Element

	// Generator returns the distinguished generator g.
	Generator() Element

	// ElementByteLength returns the fixed encoded width of an element.
	ElementByteLength() int

	// Equal reports whether other is the very same group instance.
	// Mixing elements from unequal groups is an *ArithmeticError.
	Equal(other Group) bool

	// Decode reads one element and verifies its membership in the
	// group (the "safe" mode of spec §4.2).
	Decode(rd *bytetree.Reader) (Element, error)

	// DecodeUnsafe reads one element checking only syntactic validity;
	// the caller commits to verifying membership later, e.g. via
	// VerifyUnsafe over a whole batch in parallel.
	DecodeUnsafe(rd *bytetree.Reader) (Element, error)

	// VerifyMembership checks that e is a member of this group's
	// order-q subgroup. The mod-p group's Decode calls this internally
	// (the curve group's Decode needs no separate check); VerifyUnsafe
	// calls it directly over a batch without re-encoding.
	VerifyMembership(e Element) error
}

// Element is a value of a Group. Every element carries a back-
// reference to the Group that produced it (the "carrier"); operations
// across elements from different carriers panic with an
// *ArithmeticError rather than silently producing nonsense.
type Element interface {
	Group() Group
	Mul(b Element) Element
	Inv() Element
	Exp(k *RingElement) Element
	Equal(b Element) bool
	Bytes() []byte
	ToByteTree() bytetree.Tree
}

func checkSameGroup(a, b Group, what string) {
	if !a.Equal(b) {
		panic(arithmErrorf("%s: mismatched group carriers", what))
	}
}
