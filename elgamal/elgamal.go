// Package elgamal implements ElGamal encryption over an arbitrary
// arithm.Group, generalized to width ω independent components so a
// single ciphertext can carry ω plaintexts under ω independent public
// keys sharing one group. Width 1 is the ordinary single-component
// ElGamal ciphertext of spec §3; the shuffle proof engine only ever
// touches ciphertexts through this package, never the raw group
// algebra directly.
package elgamal

import (
	"crypto/cipher"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
)

// PublicKey is an ElGamal public key (g, y) of width ω: y is a tuple of
// ω independent key components y_1,...,y_ω, each in the same group as
// g. Ciphertexts encrypted under this key live in G x G^ω (the first
// factor carries the shared randomizer).
type PublicKey struct {
	group arithm.Group
	g     arithm.Element
	y     *arithm.GroupArray
}

// NewPublicKey builds a public key from generator g and key components
// y, all of which must belong to group.
func NewPublicKey(group arithm.Group, g arithm.Element, y *arithm.GroupArray) *PublicKey {
	if !y.Group().Equal(group) || !g.Group().Equal(group) {
		panic("elgamal: NewPublicKey: mismatched group carriers")
	}
	return &PublicKey{group: group, g: g, y: y}
}

// Group returns the parent group.
func (pk *PublicKey) Group() arithm.Group { return pk.group }

// Width returns ω, the number of independent key components.
func (pk *PublicKey) Width() int { return pk.y.Len() }

// Generator returns g.
func (pk *PublicKey) Generator() arithm.Element { return pk.g }

// Component returns the i-th key component y_i.
func (pk *PublicKey) Component(i int) arithm.Element { return pk.y.Get(i) }

// ToByteTree encodes the key pair (g,y) for hashing into a transcript.
func (pk *PublicKey) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(pk.g.ToByteTree(), pk.y.ToByteTree())
}

// AsCiphertext views the key pair (g,y) as a ciphertext-shaped element
// (u,v) so it can be combined with real ciphertexts using the same
// componentwise algebra — the shuffle proof's F' commitment computes
// pk^{-φ} exactly this way.
func (pk *PublicKey) AsCiphertext() *Ciphertext {
	return &Ciphertext{u: pk.g, v: pk.y}
}

// Ciphertext is a width-ω ElGamal ciphertext (u, v_1,...,v_ω), where u
// = g^r is the shared randomizer component and v_i = m_i * y_i^r.
type Ciphertext struct {
	u arithm.Element
	v *arithm.GroupArray
}

// NewCiphertext wraps a pre-computed (u,v) pair.
func NewCiphertext(u arithm.Element, v *arithm.GroupArray) *Ciphertext {
	return &Ciphertext{u: u, v: v}
}

// U returns the randomizer component g^r.
func (c *Ciphertext) U() arithm.Element { return c.u }

// V returns the message components.
func (c *Ciphertext) V() *arithm.GroupArray { return c.v }

// Width returns ω.
func (c *Ciphertext) Width() int { return c.v.Len() }

// Encrypt draws a fresh randomizer r and encrypts the width-ω message
// m under pk, returning both the ciphertext and r (the latter needed
// by callers, such as the shuffle prover, that must later prove
// knowledge of it).
func Encrypt(pk *PublicKey, m *arithm.GroupArray, rand cipher.Stream, rbitlen int) (*Ciphertext, *arithm.RingElement) {
	r := pk.group.ScalarRing().RandomElement(rand, rbitlen)
	return EncryptWithRandomizer(pk, m, r), r
}

// EncryptWithRandomizer encrypts m under pk using the given
// randomizer, for callers (like the re-encryption shuffle) that need
// to control r directly rather than have it drawn fresh.
func EncryptWithRandomizer(pk *PublicKey, m *arithm.GroupArray, r *arithm.RingElement) *Ciphertext {
	if m.Len() != pk.Width() {
		panic("elgamal: Encrypt: message width does not match key width")
	}
	u := pk.g.Exp(r)
	vParts := make([]arithm.Element, pk.Width())
	for i := 0; i < pk.Width(); i++ {
		vParts[i] = m.Get(i).Mul(pk.y.Get(i).Exp(r))
	}
	return &Ciphertext{u: u, v: arithm.NewGroupArray(pk.group, vParts)}
}

// ReEncrypt multiplies w by an encryption of the identity under a
// fresh randomizer s, returning the re-encrypted ciphertext and s.
func ReEncrypt(pk *PublicKey, w *Ciphertext, rand cipher.Stream, rbitlen int) (*Ciphertext, *arithm.RingElement) {
	s := pk.group.ScalarRing().RandomElement(rand, rbitlen)
	return ReEncryptWithRandomizer(pk, w, s), s
}

// ReEncryptWithRandomizer re-encrypts w using the given randomizer s.
// This is the operation the shuffle proof proves knowledge of: w' =
// w * Enc(1, s) componentwise.
func ReEncryptWithRandomizer(pk *PublicKey, w *Ciphertext, s *arithm.RingElement) *Ciphertext {
	u := w.u.Mul(pk.g.Exp(s))
	vParts := make([]arithm.Element, w.Width())
	for i := 0; i < w.Width(); i++ {
		vParts[i] = w.v.Get(i).Mul(pk.y.Get(i).Exp(s))
	}
	return &Ciphertext{u: u, v: arithm.NewGroupArray(pk.group, vParts)}
}

// Mul returns the componentwise product of two ciphertexts, the
// operation underlying homomorphic combination.
func (c *Ciphertext) Mul(o *Ciphertext) *Ciphertext {
	return &Ciphertext{u: c.u.Mul(o.u), v: c.v.Mul(o.v)}
}

// Exp raises every component of c to the shared exponent k, used when
// combining a batch of ciphertexts with a batching vector.
func (c *Ciphertext) Exp(k *arithm.RingElement) *Ciphertext {
	return &Ciphertext{u: c.u.Exp(k), v: c.v.Exp(k)}
}

// Combine returns prod_i w_i^{e_i}, the batched ciphertext used by the
// shuffle proof's F-equation (F and F', spec §4.5).
func Combine(w []*Ciphertext, e *arithm.RingArray) *Ciphertext {
	if len(w) != e.Len() {
		panic("elgamal: Combine: length mismatch")
	}
	if len(w) == 0 {
		panic("elgamal: Combine: empty batch")
	}
	acc := w[0].Exp(e.Get(0))
	for i := 1; i < len(w); i++ {
		acc = acc.Mul(w[i].Exp(e.Get(i)))
	}
	return acc
}

// Equal reports componentwise equality.
func (c *Ciphertext) Equal(o *Ciphertext) bool {
	return c.u.Equal(o.u) && c.v.Equal(o.v)
}

// ToByteTree encodes c as a node (u, v_1,...,v_ω).
func (c *Ciphertext) ToByteTree() bytetree.Tree {
	children := make([]bytetree.Tree, 0, c.Width()+1)
	children = append(children, c.u.ToByteTree())
	for i := 0; i < c.Width(); i++ {
		children = append(children, c.v.Get(i).ToByteTree())
	}
	return bytetree.NewNode(children...)
}

// FromByteTree decodes a width-ω ciphertext encoded by ToByteTree.
func FromByteTree(group arithm.Group, width int, rd *bytetree.Reader, safe bool) (*Ciphertext, error) {
	if !rd.IsNode() {
		return nil, &bytetree.FormatError{Msg: "ciphertext must be a node"}
	}
	nc, err := rd.NChildren()
	if err != nil || nc != width+1 {
		return nil, &bytetree.FormatError{Msg: "ciphertext has wrong width"}
	}
	uRd, err := rd.NextChild()
	if err != nil {
		return nil, err
	}
	var u arithm.Element
	if safe {
		u, err = group.Decode(uRd)
	} else {
		u, err = group.DecodeUnsafe(uRd)
	}
	if err != nil {
		return nil, err
	}
	vParts := make([]arithm.Element, width)
	for i := 0; i < width; i++ {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		var e arithm.Element
		if safe {
			e, err = group.Decode(c)
		} else {
			e, err = group.DecodeUnsafe(c)
		}
		if err != nil {
			return nil, err
		}
		vParts[i] = e
	}
	return &Ciphertext{u: u, v: arithm.NewGroupArray(group, vParts)}, nil
}

// FromByteTreeArray decodes n consecutive width-ω ciphertexts from a
// node, the wire shape of a full shuffle input/output list.
func FromByteTreeArray(group arithm.Group, width, n int, rd *bytetree.Reader, safe bool) ([]*Ciphertext, error) {
	if !rd.IsNode() {
		return nil, &bytetree.FormatError{Msg: "ciphertext array must be a node"}
	}
	nc, err := rd.NChildren()
	if err != nil || nc != n {
		return nil, &bytetree.FormatError{Msg: "ciphertext array has wrong length"}
	}
	out := make([]*Ciphertext, n)
	for i := 0; i < n; i++ {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		ct, err := FromByteTree(group, width, c, safe)
		if err != nil {
			return nil, err
		}
		out[i] = ct
	}
	return out, nil
}

// ToByteTreeArray encodes a list of ciphertexts as a node.
func ToByteTreeArray(list []*Ciphertext) bytetree.Tree {
	children := make([]bytetree.Tree, len(list))
	for i, c := range list {
		children[i] = c.ToByteTree()
	}
	return bytetree.NewNode(children...)
}
