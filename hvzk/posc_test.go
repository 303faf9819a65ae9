package hvzk

import (
	"crypto/cipher"
	"testing"

	"go.dedis.ch/kyber/v4/util/random"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/generators"
	"github.com/rmartinezch/mixnet/permutation"
)

func buildPoscFixture(t *testing.T, group arithm.Group, n int, rnd cipher.Stream) (*PoSCInstance, *PoSCWitness) {
	t.Helper()
	ring := group.ScalarRing()
	g := group.Generator()
	h := generators.Derive(group, []byte("hvzk-test-h"), n)
	pi := permutation.Sample(n, 40, rnd)
	r := ring.RandomElementArray(n, rnd, 64)
	u := CommitPermutation(group, g, h, r, pi)

	inst := &PoSCInstance{Group: group, G: g, H: h, U: u}
	wit := &PoSCWitness{Perm: pi, R: r}
	return inst, wit
}

func TestPoscCompleteness(t *testing.T) {
	group := testModpGroup(t)
	rnd := random.New()
	params := testParams()

	for _, n := range []int{1, 2, 3, 10} {
		inst, wit := buildPoscFixture(t, group, n, rnd)
		challenger := testChallenger()
		commitment, reply, err := ProvePoSC(inst, wit, params, challenger, rnd)
		if err != nil {
			t.Fatalf("ProvePoSC n=%d: %v", n, err)
		}
		commitWire := mustReader(t, commitment.ToByteTree())
		replyWire := mustReader(t, reply.ToByteTree())
		if !VerifyPoSC(inst, params, testChallenger(), commitWire, replyWire) {
			t.Errorf("n=%d: honest PoSC proof rejected", n)
		}
	}
}

func TestPoscRejectsWrongPermutation(t *testing.T) {
	group := testModpGroup(t)
	rnd := random.New()
	params := testParams()

	inst, wit := buildPoscFixture(t, group, 6, rnd)
	challenger := testChallenger()
	commitment, reply, err := ProvePoSC(inst, wit, params, challenger, rnd)
	if err != nil {
		t.Fatalf("ProvePoSC: %v", err)
	}

	otherInst, _ := buildPoscFixture(t, group, 6, rnd)
	commitWire := mustReader(t, commitment.ToByteTree())
	replyWire := mustReader(t, reply.ToByteTree())
	if VerifyPoSC(otherInst, params, testChallenger(), commitWire, replyWire) {
		t.Fatalf("PoSC proof for one commitment verified against an unrelated one")
	}
}
