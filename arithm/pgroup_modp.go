package arithm

import (
	"math/big"

	"github.com/rmartinezch/mixnet/bytetree"
)

// modpGroup is the multiplicative-subgroup-of-a-safe-prime
// instantiation of Group: p = 2q+1 with p, q prime, and the group is
// the order-q subgroup of quadratic residues mod p. kyber does not
// expose a raw Schnorr-group primitive (its group packages are all
// elliptic-curve or twisted-Edwards), so this is a from-scratch
// implementation on top of math/big, which is exactly the arbitrary-
// precision integer layer this core is specified to provide.
//
// Safe-prime table bootstrap (picking p for a given bit length) is out
// of scope; p and its generator are supplied by the caller.
type modpGroup struct {
	name string
	p    *big.Int
	q    *big.Int
	g    *big.Int
	ring *Ring
	byteLen int
}

// NewSafePrimeGroup constructs the order-q subgroup of Z_p^*, where
// p = 2q+1 and g generates the subgroup of quadratic residues. The
// caller is responsible for p being a safe prime and g having order q;
// this constructor performs only the cheap sanity checks (g^q ≡ 1).
func NewSafePrimeGroup(name string, p, g *big.Int) (Group, error) {
	one := big.NewInt(1)
	two := big.NewInt(2)
	q := new(big.Int).Sub(p, one)
	q.Div(q, two)

	chk := new(big.Int).Exp(g, q, p)
	if chk.Cmp(one) != 0 {
		return nil, formatErrorf("generator does not have order q")
	}

	byteLen := (p.BitLen() + 7) / 8
	return &modpGroup{
		name:    name,
		p:       new(big.Int).Set(p),
		q:       q,
		g:       new(big.Int).Set(g),
		ring:    NewRing(q),
		byteLen: byteLen,
	}, nil
}

func (g *modpGroup) Name() string      { return g.name }
func (g *modpGroup) ScalarRing() *Ring { return g.ring }

func (g *modpGroup) Identity() Element {
	return &modpElement{group: g, v: big.NewInt(1)}
}

func (g *modpGroup) Generator() Element {
	return &modpElement{group: g, v: new(big.Int).Set(g.g)}
}

func (g *modpGroup) ElementByteLength() int { return g.byteLen }

func (g *modpGroup) Equal(other Group) bool {
	o, ok := other.(*modpGroup)
	return ok && o == g
}

func (g *modpGroup) decode(rd *bytetree.Reader) (*modpElement, error) {
	if !rd.IsLeaf() {
		return nil, formatErrorf("group element must be a leaf")
	}
	b, err := rd.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(b) != g.byteLen {
		return nil, formatErrorf("group element has %d bytes, want %d", len(b), g.byteLen)
	}
	v := new(big.Int).SetBytes(b)
	if v.Sign() <= 0 || v.Cmp(g.p) >= 0 {
		return nil, formatErrorf("group element %s out of range", v.String())
	}
	return &modpElement{group: g, v: v}, nil
}

// Decode reads an integer and verifies it lies in the order-q subgroup
// (v^q ≡ 1 mod p).
func (g *modpGroup) Decode(rd *bytetree.Reader) (Element, error) {
	e, err := g.decode(rd)
	if err != nil {
		return nil, err
	}
	if err := g.VerifyMembership(e); err != nil {
		return nil, formatErrorf("group element not in subgroup: %v", err)
	}
	return e, nil
}

// DecodeUnsafe checks only that the integer lies in [1,p).
func (g *modpGroup) DecodeUnsafe(rd *bytetree.Reader) (Element, error) {
	return g.decode(rd)
}

func (g *modpGroup) VerifyMembership(e Element) error {
	me, ok := e.(*modpElement)
	if !ok || !me.group.Equal(g) {
		return &ArithmeticError{Msg: "VerifyMembership: foreign element"}
	}
	chk := new(big.Int).Exp(me.v, g.q, g.p)
	if chk.Cmp(big.NewInt(1)) != 0 {
		return formatErrorf("element not in order-q subgroup")
	}
	return nil
}

type modpElement struct {
	group *modpGroup
	v     *big.Int
}

func (e *modpElement) Group() Group { return e.group }

func (e *modpElement) Mul(b Element) Element {
	ob := b.(*modpElement)
	checkSameGroup(e.group, ob.group, "Mul")
	r := new(big.Int).Mul(e.v, ob.v)
	r.Mod(r, e.group.p)
	return &modpElement{group: e.group, v: r}
}

func (e *modpElement) Inv() Element {
	r := new(big.Int).ModInverse(e.v, e.group.p)
	return &modpElement{group: e.group, v: r}
}

func (e *modpElement) Exp(k *RingElement) Element {
	e.group.ring.checkSame(k.ring, "Exp")
	r := new(big.Int).Exp(e.v, k.BigInt(), e.group.p)
	return &modpElement{group: e.group, v: r}
}

func (e *modpElement) Equal(b Element) bool {
	ob, ok := b.(*modpElement)
	if !ok || !ob.group.Equal(e.group) {
		return false
	}
	return e.v.Cmp(ob.v) == 0
}

func (e *modpElement) Bytes() []byte {
	out := make([]byte, e.group.byteLen)
	b := e.v.Bytes()
	copy(out[len(out)-len(b):], b)
	return out
}

func (e *modpElement) ToByteTree() bytetree.Tree {
	return bytetree.NewLeaf(e.Bytes())
}
