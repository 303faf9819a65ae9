package hvzk

import (
	"testing"

	"go.dedis.ch/kyber/v4/util/random"

	"github.com/rmartinezch/mixnet/arithm"
)

func runCcposRoundTrip(t *testing.T, group arithm.Group, n, width int) bool {
	t.Helper()
	rnd := random.New()
	fx := buildPosFixture(t, group, n, width, rnd)
	params := testParams()
	challenger := testChallenger()

	inst := &CCPoSInstance{
		Group: fx.inst.Group, G: fx.inst.G, H: fx.inst.H,
		PK: fx.inst.PK, W: fx.inst.W, Wp: fx.inst.Wp, U: fx.inst.U,
	}
	wit := &CCPoSWitness{Perm: fx.wit.Perm, R: fx.wit.R, S: fx.wit.S}

	commitment, reply, err := ProveCCPoS(inst, wit, params, challenger, rnd)
	if err != nil {
		t.Fatalf("ProveCCPoS: %v", err)
	}
	commitWire := mustReader(t, commitment.ToByteTree())
	replyWire := mustReader(t, reply.ToByteTree())
	return VerifyCCPoS(inst, params, testChallenger(), commitWire, replyWire)
}

func TestCcposCompleteness(t *testing.T) {
	group := testModpGroup(t)
	for _, n := range []int{1, 2, 3, 10} {
		for _, width := range []int{1, 3} {
			if !runCcposRoundTrip(t, group, n, width) {
				t.Errorf("n=%d width=%d: honest CCPoS proof rejected", n, width)
			}
		}
	}
}

// TestCcposCompletenessThreeCycle exercises the same 3-cycle regression
// as the full PoS proof, since CCPoS reuses ReencryptShuffle's output
// and the same f = <s,e'> computation.
func TestCcposCompletenessThreeCycle(t *testing.T) {
	group := testModpGroup(t)
	rnd := random.New()
	pi := fixedPermutation(t, []int{1, 2, 0})
	fx := buildPosFixtureWithPerm(t, group, pi, 1, rnd)
	params := testParams()

	inst := &CCPoSInstance{
		Group: fx.inst.Group, G: fx.inst.G, H: fx.inst.H,
		PK: fx.inst.PK, W: fx.inst.W, Wp: fx.inst.Wp, U: fx.inst.U,
	}
	wit := &CCPoSWitness{Perm: fx.wit.Perm, R: fx.wit.R, S: fx.wit.S}

	commitment, reply, err := ProveCCPoS(inst, wit, params, testChallenger(), rnd)
	if err != nil {
		t.Fatalf("ProveCCPoS: %v", err)
	}
	commitWire := mustReader(t, commitment.ToByteTree())
	replyWire := mustReader(t, reply.ToByteTree())
	if !VerifyCCPoS(inst, params, testChallenger(), commitWire, replyWire) {
		t.Fatalf("honest CCPoS proof over a 3-cycle permutation rejected")
	}
}

// TestCcposAgreesWithPos checks the decomposition claim on an honest
// witness: for the same (π, r, s), when the full PoSBasicTW proof
// accepts, the pair (PoSC proof of U, CCPoSBasicW proof reusing that
// same U) also accepts, since together they attest to exactly the same
// relation PoSBasicTW proves in one shot. The reject direction is not
// exercised here.
func TestCcposAgreesWithPos(t *testing.T) {
	group := testModpGroup(t)
	rnd := random.New()
	fx := buildPosFixture(t, group, 5, 2, rnd)
	params := testParams()

	posCommit, posReply, err := Prove(fx.inst, fx.wit, params, testChallenger(), rnd)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	posOK := Verify(fx.inst, params, testChallenger(),
		mustReader(t, posCommit.ToByteTree()), mustReader(t, posReply.ToByteTree()))
	if !posOK {
		t.Fatalf("baseline PoS proof unexpectedly rejected")
	}

	poscInst := &PoSCInstance{Group: fx.inst.Group, G: fx.inst.G, H: fx.inst.H, U: fx.inst.U}
	poscWit := &PoSCWitness{Perm: fx.wit.Perm, R: fx.wit.R}
	poscCommit, poscReply, err := ProvePoSC(poscInst, poscWit, params, testChallenger(), rnd)
	if err != nil {
		t.Fatalf("ProvePoSC: %v", err)
	}
	poscOK := VerifyPoSC(poscInst, params, testChallenger(),
		mustReader(t, poscCommit.ToByteTree()), mustReader(t, poscReply.ToByteTree()))

	ccInst := &CCPoSInstance{
		Group: fx.inst.Group, G: fx.inst.G, H: fx.inst.H,
		PK: fx.inst.PK, W: fx.inst.W, Wp: fx.inst.Wp, U: fx.inst.U,
	}
	ccWit := &CCPoSWitness{Perm: fx.wit.Perm, R: fx.wit.R, S: fx.wit.S}
	ccCommit, ccReply, err := ProveCCPoS(ccInst, ccWit, params, testChallenger(), rnd)
	if err != nil {
		t.Fatalf("ProveCCPoS: %v", err)
	}
	ccOK := VerifyCCPoS(ccInst, params, testChallenger(),
		mustReader(t, ccCommit.ToByteTree()), mustReader(t, ccReply.ToByteTree()))

	if !poscOK || !ccOK {
		t.Fatalf("split proof rejected while combined PoS accepted: posc=%v cc=%v", poscOK, ccOK)
	}
}

func TestCcposRejectsWrongU(t *testing.T) {
	group := testModpGroup(t)
	rnd := random.New()
	fx := buildPosFixture(t, group, 4, 1, rnd)
	params := testParams()

	inst := &CCPoSInstance{
		Group: fx.inst.Group, G: fx.inst.G, H: fx.inst.H,
		PK: fx.inst.PK, W: fx.inst.W, Wp: fx.inst.Wp, U: fx.inst.U,
	}
	wit := &CCPoSWitness{Perm: fx.wit.Perm, R: fx.wit.R, S: fx.wit.S}
	commitment, reply, err := ProveCCPoS(inst, wit, params, testChallenger(), rnd)
	if err != nil {
		t.Fatalf("ProveCCPoS: %v", err)
	}

	other := buildPosFixture(t, group, 4, 1, rnd)
	tampered := &CCPoSInstance{
		Group: inst.Group, G: inst.G, H: inst.H,
		PK: inst.PK, W: inst.W, Wp: inst.Wp, U: other.inst.U,
	}
	commitWire := mustReader(t, commitment.ToByteTree())
	replyWire := mustReader(t, reply.ToByteTree())
	if VerifyCCPoS(tampered, params, testChallenger(), commitWire, replyWire) {
		t.Fatalf("CCPoS proof verified against a substituted U")
	}
}
