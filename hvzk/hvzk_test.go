package hvzk

import (
	"crypto/cipher"
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
	"github.com/rmartinezch/mixnet/elgamal"
	"github.com/rmartinezch/mixnet/fiatshamir"
	"github.com/rmartinezch/mixnet/generators"
	"github.com/rmartinezch/mixnet/permutation"
)

func testModpGroup(t *testing.T) arithm.Group {
	t.Helper()
	p, _ := new(big.Int).SetString("167", 10)
	g := big.NewInt(4)
	grp, err := arithm.NewSafePrimeGroup("test-modp", p, g)
	if err != nil {
		t.Fatalf("NewSafePrimeGroup: %v", err)
	}
	return grp
}

func testParams() Params {
	return Params{Nv: 20, Ne: 20, Nr: 20}
}

func testChallenger() *fiatshamir.Challenger {
	return fiatshamir.New(fiatshamir.Params{
		Version:   "test-1",
		RoSID:     "hvzk-test",
		Nr:        20,
		Nv:        20,
		Ne:        20,
		PRGName:   "blake2xb",
		GroupName: "test",
		HashName:  "sha256",
	})
}

func testKey(group arithm.Group, width int, rnd cipher.Stream) *elgamal.PublicKey {
	ring := group.ScalarRing()
	gen := group.Generator()
	parts := make([]arithm.Element, width)
	for i := 0; i < width; i++ {
		x := ring.RandomElement(rnd, 64)
		parts[i] = gen.Exp(x)
	}
	return elgamal.NewPublicKey(group, gen, arithm.NewGroupArray(group, parts))
}

func randomCiphertexts(pk *elgamal.PublicKey, n, width int, rnd cipher.Stream) []*elgamal.Ciphertext {
	group := pk.Group()
	ring := group.ScalarRing()
	gen := group.Generator()
	out := make([]*elgamal.Ciphertext, n)
	for i := 0; i < n; i++ {
		parts := make([]arithm.Element, width)
		for j := 0; j < width; j++ {
			parts[j] = gen.Exp(ring.RandomElement(rnd, 64))
		}
		m := arithm.NewGroupArray(group, parts)
		ct, _ := elgamal.Encrypt(pk, m, rnd, 64)
		out[i] = ct
	}
	return out
}

// posFixture bundles a full PoSBasicTW instance/witness pair over a
// freshly sampled permutation, ready to feed to Prove/Verify.
type posFixture struct {
	group arithm.Group
	inst  *PoSInstance
	wit   *PoSWitness
}

func buildPosFixture(t *testing.T, group arithm.Group, n, width int, rnd cipher.Stream) *posFixture {
	t.Helper()
	pi := permutation.Sample(n, 40, rnd)
	return buildPosFixtureWithPerm(t, group, pi, width, rnd)
}

// buildPosFixtureWithPerm is buildPosFixture with the permutation fixed
// by the caller, so a test can exercise a specific cycle structure (a
// 3-cycle, in particular, since it is the smallest permutation that is
// not its own inverse).
func buildPosFixtureWithPerm(t *testing.T, group arithm.Group, pi *permutation.Permutation, width int, rnd cipher.Stream) *posFixture {
	t.Helper()
	n := pi.Len()
	ring := group.ScalarRing()
	g := group.Generator()
	h := generators.Derive(group, []byte("hvzk-test-h"), n)
	pk := testKey(group, width, rnd)
	w := randomCiphertexts(pk, n, width, rnd)

	r := ring.RandomElementArray(n, rnd, 64)
	s := ring.RandomElementArray(n, rnd, 64)

	u := CommitPermutation(group, g, h, r, pi)
	wp := ReencryptShuffle(pk, w, s, pi)

	return &posFixture{
		group: group,
		inst:  &PoSInstance{Group: group, G: g, H: h, PK: pk, W: w, Wp: wp, U: u},
		wit:   &PoSWitness{Perm: pi, R: r, S: s},
	}
}

// fixedPermutation builds the Permutation with the given forward table,
// bypassing the random sampler so a test can pin down an exact cycle
// structure.
func fixedPermutation(t *testing.T, forward []int) *permutation.Permutation {
	t.Helper()
	n := len(forward)
	children := make([]bytetree.Tree, n)
	for i, v := range forward {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v))
		children[i] = bytetree.NewLeaf(b[:])
	}
	rd := mustReader(t, bytetree.NewNode(children...))
	pi, err := permutation.FromByteTree(n, rd)
	if err != nil {
		t.Fatalf("FromByteTree: %v", err)
	}
	return pi
}

func mustReader(t *testing.T, tree bytetree.Tree) *bytetree.Reader {
	t.Helper()
	rd, err := bytetree.NewReader(bytetree.Marshal(tree))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return rd
}
