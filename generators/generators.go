// Package generators derives the "independent" generators h_0..h_N-1
// used by the permutation commitment (spec §4.7) from the session
// prefix. Each index's candidate stream is the HKDF expansion (RFC
// 5869) of the prefix under a per-index, per-attempt info string,
// mapped into the group by nothing more than the group's own Decode
// and a rejection of the identity element, tried again with the next
// attempt counter on failure — the same rejection-sampling loop for
// both group instantiations, so neither needs special-casing here.
package generators

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
)

const tag = "generators"

// maxAttempts bounds the try-and-increment loop; with a byte length of
// at least 20 bytes the probability of needing more than a handful of
// attempts per index is astronomically small, so hitting this bound
// indicates a broken group implementation, not bad luck.
const maxAttempts = 100000

// Derive produces n independent generators of group, derived
// deterministically from prefix (the Fiat-Shamir session prefix ρ).
// The derivation is one-shot per session: calling Derive twice with
// the same prefix and group yields the same generators.
func Derive(group arithm.Group, prefix []byte, n int) *arithm.GroupArray {
	elems := make([]arithm.Element, n)
	elen := group.ElementByteLength()

	for i := 0; i < n; i++ {
		found := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			cand := candidateBytes(prefix, i, attempt, elen)
			leaf := bytetree.NewLeaf(cand)
			rd, err := bytetree.NewReader(bytetree.Marshal(leaf))
			if err != nil {
				continue
			}
			e, err := group.Decode(rd)
			if err != nil {
				continue
			}
			if e.Equal(group.Identity()) {
				continue
			}
			elems[i] = e
			found = true
			break
		}
		if !found {
			panic("generators: exhausted try-and-increment budget; group implementation is likely broken")
		}
	}
	return arithm.NewGroupArray(group, elems)
}

// candidateBytes expands prefix via HKDF, using tag/index/attempt as
// the info string so distinct indices and retries land on disjoint
// output streams without needing an explicit salt.
func candidateBytes(prefix []byte, index, attempt, n int) []byte {
	var idxBuf, attBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], uint32(index))
	binary.BigEndian.PutUint32(attBuf[:], uint32(attempt))
	info := append(append([]byte(tag), idxBuf[:]...), attBuf[:]...)

	r := hkdf.Expand(sha256.New, prefix, info)
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		panic("generators: hkdf expand failed: " + err.Error())
	}
	return out
}
