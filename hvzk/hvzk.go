// Package hvzk implements the Terelius-Wikström honest-verifier
// zero-knowledge proof of a shuffle, its commitment-consistent variant,
// and the proof of shuffle of commitments. All three are built over the
// same permutation commitment; the full proof and the proof of shuffle
// of commitments also share the bridging-commitment algebra, which the
// commitment-consistent variant omits. They differ only in whether the
// ciphertext relation, the permutation relation, or both are proved. See pos.go, ccpos.go and posc.go.
package hvzk

import (
	"math/big"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
	"github.com/rmartinezch/mixnet/permutation"
)

// ProtocolError signals a violated prover precondition — a witness
// whose dimensions do not match its instance, or a value the prover
// can never legitimately produce. It is fatal for the prover and can
// only arise for the verifier if the transcript is self-inconsistent.
type ProtocolError struct{ Msg string }

func (e *ProtocolError) Error() string { return "hvzk: " + e.Msg }

// Params are the session-wide bit-length constants shared by every
// proof instance in a session: challenge bits, batching-component
// bits, and statistical-security bits.
type Params struct {
	Nv int
	Ne int
	Nr int
}

// randomizerBits is the bit length used for Pedersen commitment
// randomizers (α, β, γ, δ, φ, and the sampled vector b): the ring's own
// bit length plus Nr bits of statistical slack so the randomizer
// masks the secret it blinds regardless of the secret's value.
func (p Params) randomizerBits(ring *arithm.Ring) int {
	return ring.Modulus().BitLen() + p.Nr
}

// epsilonBits is the bit length for ε, which must additionally absorb
// the batching vector's own Ne bits and the challenge's Nv bits since
// ε blinds the product e'·v in the k_E response.
func (p Params) epsilonBits() int {
	return p.Ne + p.Nv + p.Nr
}

// commitPermutation computes u_i = g^{r_{π^{-1}(i)}} · h_{π^{-1}(i)},
// the Pedersen-style permutation commitment shared by every variant.
func commitPermutation(group arithm.Group, g arithm.Element, h *arithm.GroupArray, r *arithm.RingArray, pi *permutation.Permutation) *arithm.GroupArray {
	n := h.Len()
	c := make([]arithm.Element, n)
	for j := 0; j < n; j++ {
		c[j] = g.Exp(r.Get(j)).Mul(h.Get(j))
	}
	return arithm.NewGroupArray(group, c).Permute(pi.Inv())
}

// batchVectorArray reduces every component of the raw batching vector
// modulo q and returns the result as a ring array.
func batchVectorArray(ring *arithm.Ring, raw []*big.Int) *arithm.RingArray {
	elems := make([]*arithm.RingElement, len(raw))
	for i, v := range raw {
		elems[i] = ring.Element(v)
	}
	return arithm.NewRingArray(ring, elems)
}

// identityGroupArray builds an array of n copies of group's identity,
// the fallback value substituted for any commitment field that fails
// to decode or fails membership (spec's malformed-commitment clause).
func identityGroupArray(group arithm.Group, n int) *arithm.GroupArray {
	elems := make([]arithm.Element, n)
	id := group.Identity()
	for i := range elems {
		elems[i] = id
	}
	return arithm.NewGroupArray(group, elems)
}

// readChildren reads up to want children from rd, stopping at the
// first framing error; missing trailing children are left absent so
// callers can substitute identity elements for them, continuing the
// decode instead of aborting on the first malformed field.
func readChildren(rd *bytetree.Reader, want int) []*bytetree.Reader {
	if !rd.IsNode() {
		return nil
	}
	nc, err := rd.NChildren()
	if err != nil || nc != want {
		return nil
	}
	out := make([]*bytetree.Reader, 0, want)
	for i := 0; i < want; i++ {
		c, err := rd.NextChild()
		if err != nil {
			break
		}
		out = append(out, c)
	}
	return out
}

func decodeElementOrIdentity(group arithm.Group, rd *bytetree.Reader) arithm.Element {
	e, err := group.Decode(rd)
	if err != nil {
		return group.Identity()
	}
	return e
}

func decodeGroupArrayOrIdentity(group arithm.Group, n int, rd *bytetree.Reader) *arithm.GroupArray {
	arr, err := arithm.ToElementArray(group, n, rd, true)
	if err != nil {
		return identityGroupArray(group, n)
	}
	return arr
}
