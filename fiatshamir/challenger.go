// Package fiatshamir implements the deterministic transcript hash that
// replaces the shuffle proof's verifier coin tosses: a fixed session
// prefix combined with a byte-tree-encoded transcript segment yields
// either a PRG seed (used to expand the batching vector) or a
// public-coin challenge, and both are pure functions of their inputs
// so prover and verifier always agree.
package fiatshamir

import (
	"crypto/sha256"
	"math/big"

	"go.dedis.ch/kyber/v4/xof/blake2xb"

	"github.com/rmartinezch/mixnet/bytetree"
)

// Params are the session-wide constants that appear verbatim in the
// prefix: challenge bit length, batching-component bit length,
// statistical security, and the literal ASCII identifiers of the PRG,
// group and hash in use.
type Params struct {
	Version   string
	RoSID     string
	Nr        int
	Nv        int
	Ne        int
	PRGName   string
	GroupName string
	HashName  string
}

// Challenger derives seeds and challenges from a fixed prefix computed
// once from Params.
type Challenger struct {
	prefix []byte
}

// New computes ρ = H(version ∥ rosid ∥ n_r ∥ n_v ∥ n_e ∥ prgName ∥
// groupName ∥ hashName) and returns a Challenger bound to it.
func New(p Params) *Challenger {
	leaf := func(s string) bytetree.Tree { return bytetree.NewLeaf([]byte(s)) }
	intLeaf := func(v int) bytetree.Tree {
		return bytetree.NewLeaf(big.NewInt(int64(v)).Bytes())
	}
	tree := bytetree.NewNode(
		leaf(p.Version),
		leaf(p.RoSID),
		intLeaf(p.Nr),
		intLeaf(p.Nv),
		intLeaf(p.Ne),
		leaf(p.PRGName),
		leaf(p.GroupName),
		leaf(p.HashName),
	)
	h := sha256.Sum256(bytetree.Marshal(tree))
	return &Challenger{prefix: h[:]}
}

func (c *Challenger) transcriptHash(d bytetree.Tree) []byte {
	h := sha256.New()
	h.Write(c.prefix)
	h.Write(bytetree.Marshal(d))
	return h.Sum(nil)
}

// TranscriptDigest exposes H(ρ ∥ encode(d)) directly, for callers that
// chain it into a later challenge's own data rather than consume it as
// a Seed or Scalar output — the shuffle proof's round-2 challenge is
// derived from the round-1 seed digest together with the round-1
// commitments, not from either alone.
func (c *Challenger) TranscriptDigest(d bytetree.Tree) []byte {
	return c.transcriptHash(d)
}

// Seed derives seed(d,B) = PRG(H(ρ ∥ encode(d))) truncated/expanded to
// B bits. BatchVector does not call Seed; it seeds its own PRG from
// the same digest directly.
func (c *Challenger) Seed(d bytetree.Tree, bits int) []byte {
	digest := c.transcriptHash(d)
	xof := blake2xb.New(digest)
	out := make([]byte, (bits+7)/8)
	if _, err := xof.Read(out); err != nil {
		panic("fiatshamir: PRG read failed: " + err.Error())
	}
	return maskBits(out, bits)
}

// Scalar derives scalar(d,nv) = to_positive(H(ρ ∥ encode(d))) reduced
// to nv bits, the Fiat-Shamir challenge itself.
func (c *Challenger) Scalar(d bytetree.Tree, nv int) *big.Int {
	digest := c.transcriptHash(d)
	v := new(big.Int).SetBytes(digest)
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nv))
	v.Mod(v, mod)
	return v
}

// BatchVector seeds a PRG from d and draws n integers of ebitlen bits
// each — the batching vector e of spec §4.5. It is exposed separately
// from Seed because the batching vector is consumed as raw entropy by
// callers that reduce each component modulo q themselves.
func (c *Challenger) BatchVector(d bytetree.Tree, n, ebitlen int) []*big.Int {
	digest := c.transcriptHash(d)
	xof := blake2xb.New(digest)
	out := make([]*big.Int, n)
	width := (ebitlen + 7) / 8
	for i := 0; i < n; i++ {
		buf := make([]byte, width)
		if _, err := xof.Read(buf); err != nil {
			panic("fiatshamir: PRG read failed: " + err.Error())
		}
		out[i] = new(big.Int).SetBytes(maskBits(buf, ebitlen))
	}
	return out
}

// maskBits clears the excess high bits of a big-endian byte slice so the
// value it encodes is at most bits long. b[0] is the most significant
// byte, so it is the one that needs masking, not b[len(b)-bits/8].
func maskBits(b []byte, bits int) []byte {
	rem := uint(bits % 8)
	if rem == 0 {
		return b
	}
	if len(b) > 0 {
		b[0] &= (1 << rem) - 1
	}
	return b
}
