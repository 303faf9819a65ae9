package hvzk

import (
	"crypto/cipher"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
	"github.com/rmartinezch/mixnet/elgamal"
	"github.com/rmartinezch/mixnet/fiatshamir"
	"github.com/rmartinezch/mixnet/permutation"
)

// PoSInstance is the public input to the full shuffle proof: a group
// with N independent generators, an ElGamal public key of ciphertext
// width ω, the input and output ciphertext lists, and the permutation
// commitment U (published alongside the proof; only the prover knows
// the π and r that produced it).
type PoSInstance struct {
	Group arithm.Group
	G     arithm.Element
	H     *arithm.GroupArray
	PK    *elgamal.PublicKey
	W     []*elgamal.Ciphertext
	Wp    []*elgamal.Ciphertext
	U     *arithm.GroupArray
}

func (inst *PoSInstance) n() int     { return inst.H.Len() }
func (inst *PoSInstance) width() int { return inst.PK.Width() }

// PoSWitness is the prover's secret: the permutation, the commitment
// randomness that produced U, and the re-encryption exponents that
// produced Wp from W.
type PoSWitness struct {
	Perm *permutation.Permutation
	R    *arithm.RingArray
	S    *arithm.RingArray
}

// CommitPermutation computes the permutation commitment U from
// (π, r, h) — exposed so callers can build a PoSInstance's U field
// without duplicating the formula.
func CommitPermutation(group arithm.Group, g arithm.Element, h *arithm.GroupArray, r *arithm.RingArray, pi *permutation.Permutation) *arithm.GroupArray {
	return commitPermutation(group, g, h, r, pi)
}

// ReencryptShuffle computes w'_i = Enc_pk(1;s_i) · w_{π(i)}, the
// re-encryption relation a shuffle proof attests to. The forward π here
// must match the forward permutation applied to the batching vector
// (e'_i = e_{π(i)}) so that the F relation's message part lines up term
// by term: ∏_i w'_i^{e'_i} = ∏_i w_{π(i)}^{e_{π(i)}} = ∏_j w_j^{e_j}.
func ReencryptShuffle(pk *elgamal.PublicKey, w []*elgamal.Ciphertext, s *arithm.RingArray, pi *permutation.Permutation) []*elgamal.Ciphertext {
	n := len(w)
	out := make([]*elgamal.Ciphertext, n)
	for i := 0; i < n; i++ {
		out[i] = elgamal.ReEncryptWithRandomizer(pk, w[pi.At(i)], s.Get(i))
	}
	return out
}

// PoSCommitment is the prover's round-1 message. Fp lives in the
// ciphertext-shaped space G × G^ω (it is pk^{-φ} · ∏ w'_i^{ε_i}), not
// the base group, so it is carried as an elgamal.Ciphertext rather
// than a bare Element.
type PoSCommitment struct {
	B  *arithm.GroupArray // bridging commitments, length N
	Ap arithm.Element
	Bp *arithm.GroupArray // length N
	Cp arithm.Element
	Dp arithm.Element
	Fp *elgamal.Ciphertext
}

func (c *PoSCommitment) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(c.B.ToByteTree(), c.Ap.ToByteTree(), c.Bp.ToByteTree(), c.Cp.ToByteTree(), c.Dp.ToByteTree(), c.Fp.ToByteTree())
}

func identityCiphertext(group arithm.Group, width int) *elgamal.Ciphertext {
	return elgamal.NewCiphertext(group.Identity(), identityGroupArray(group, width))
}

// decodePoSCommitment never fails: any field that does not decode or
// does not verify group membership is replaced by the group identity,
// per the malformed-commitment handling the verifier must implement.
func decodePoSCommitment(group arithm.Group, n, width int, rd *bytetree.Reader) *PoSCommitment {
	result := &PoSCommitment{
		B: identityGroupArray(group, n), Ap: group.Identity(),
		Bp: identityGroupArray(group, n), Cp: group.Identity(),
		Dp: group.Identity(), Fp: identityCiphertext(group, width),
	}
	children := readChildren(rd, 6)
	if len(children) > 0 {
		result.B = decodeGroupArrayOrIdentity(group, n, children[0])
	}
	if len(children) > 1 {
		result.Ap = decodeElementOrIdentity(group, children[1])
	}
	if len(children) > 2 {
		result.Bp = decodeGroupArrayOrIdentity(group, n, children[2])
	}
	if len(children) > 3 {
		result.Cp = decodeElementOrIdentity(group, children[3])
	}
	if len(children) > 4 {
		result.Dp = decodeElementOrIdentity(group, children[4])
	}
	if len(children) > 5 {
		if fp, err := elgamal.FromByteTree(group, width, children[5], true); err == nil {
			result.Fp = fp
		}
	}
	return result
}

// PoSReply is the prover's round-3 message.
type PoSReply struct {
	KA *arithm.RingElement
	KB *arithm.RingArray // length N
	KC *arithm.RingElement
	KD *arithm.RingElement
	KE *arithm.RingArray // length N
	KF *arithm.RingElement
}

func (r *PoSReply) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(r.KA.ToByteTree(), r.KB.ToByteTree(), r.KC.ToByteTree(), r.KD.ToByteTree(), r.KE.ToByteTree(), r.KF.ToByteTree())
}

// decodePoSReply is strict: unlike the commitment, a malformed reply
// has no legitimate honest-prover explanation and simply fails the
// proof.
func decodePoSReply(ring *arithm.Ring, n int, rd *bytetree.Reader) (*PoSReply, error) {
	children := readChildren(rd, 6)
	if len(children) != 6 {
		return nil, &bytetree.FormatError{Msg: "PoS reply has wrong shape"}
	}
	ka, err := ring.Decode(children[0])
	if err != nil {
		return nil, err
	}
	kb, err := ring.DecodeArray(n, children[1])
	if err != nil {
		return nil, err
	}
	kc, err := ring.Decode(children[2])
	if err != nil {
		return nil, err
	}
	kd, err := ring.Decode(children[3])
	if err != nil {
		return nil, err
	}
	ke, err := ring.DecodeArray(n, children[4])
	if err != nil {
		return nil, err
	}
	kf, err := ring.Decode(children[5])
	if err != nil {
		return nil, err
	}
	return &PoSReply{KA: ka, KB: kb, KC: kc, KD: kd, KE: ke, KF: kf}, nil
}

func posInstanceByteTree(inst *PoSInstance) bytetree.Tree {
	return bytetree.NewNode(
		inst.G.ToByteTree(),
		inst.H.ToByteTree(),
		inst.PK.ToByteTree(),
		elgamal.ToByteTreeArray(inst.W),
		elgamal.ToByteTreeArray(inst.Wp),
		inst.U.ToByteTree(),
	)
}

// Prove runs the full PoSBasicTW prover, producing the round-1
// commitment and round-3 reply of a non-interactive proof (the
// round-2 challenge is derived deterministically via challenger rather
// than exchanged).
func Prove(inst *PoSInstance, wit *PoSWitness, params Params, challenger *fiatshamir.Challenger, rand cipher.Stream) (*PoSCommitment, *PoSReply, error) {
	n := inst.n()
	if wit.Perm.Len() != n || wit.R.Len() != n || wit.S.Len() != n || len(inst.W) != n || len(inst.Wp) != n {
		return nil, nil, &ProtocolError{Msg: "witness or instance dimensions do not match"}
	}
	ring := inst.Group.ScalarRing()

	instTree := posInstanceByteTree(inst)
	rawE := challenger.BatchVector(instTree, n, params.Ne)
	e := batchVectorArray(ring, rawE)
	ePrime := e.Permute(wit.Perm)

	pedBits := params.randomizerBits(ring)
	epsBits := params.epsilonBits()

	alpha := ring.RandomElement(rand, pedBits)
	beta := ring.RandomElementArray(n, rand, pedBits)
	gamma := ring.RandomElement(rand, pedBits)
	delta := ring.RandomElement(rand, pedBits)
	phi := ring.RandomElement(rand, pedBits)
	epsilon := ring.RandomElementArray(n, rand, epsBits)
	b := ring.RandomElementArray(n, rand, pedBits)

	x, d := b.RecLin(ePrime)
	y := ePrime.Prods()

	h0 := inst.H.Get(0)
	bCommit := make([]arithm.Element, n)
	for i := 0; i < n; i++ {
		bCommit[i] = inst.G.Exp(x.Get(i)).Mul(h0.Exp(y.Get(i)))
	}
	B := arithm.NewGroupArray(inst.Group, bCommit)

	Ap := inst.G.Exp(alpha).Mul(inst.H.ExpProd(epsilon))

	xPrime := x.ShiftPush(ring.Zero())
	yPrime := y.ShiftPush(ring.One())
	bpCommit := make([]arithm.Element, n)
	for i := 0; i < n; i++ {
		expG := beta.Get(i).Add(xPrime.Get(i).Mul(epsilon.Get(i)))
		expH := yPrime.Get(i).Mul(epsilon.Get(i))
		bpCommit[i] = inst.G.Exp(expG).Mul(h0.Exp(expH))
	}
	Bp := arithm.NewGroupArray(inst.Group, bpCommit)

	Cp := inst.G.Exp(gamma)
	Dp := inst.G.Exp(delta)

	Fp := inst.PK.AsCiphertext().Exp(phi.Neg()).Mul(elgamal.Combine(inst.Wp, epsilon))

	commitment := &PoSCommitment{B: B, Ap: Ap, Bp: Bp, Cp: Cp, Dp: Dp, Fp: Fp}

	digest := challenger.TranscriptDigest(instTree)
	challengeData := bytetree.NewNode(bytetree.NewLeaf(digest), commitment.ToByteTree())
	v := ring.Element(challenger.Scalar(challengeData, params.Nv))

	a := wit.R.InnerProduct(ePrime)
	c := wit.R.Sum()
	f := wit.S.InnerProduct(ePrime)

	reply := &PoSReply{
		KA: a.MulAdd(v, alpha),
		KB: b.MulAdd(v, beta),
		KC: c.MulAdd(v, gamma),
		KD: d.MulAdd(v, delta),
		KE: ePrime.MulAdd(v, epsilon),
		KF: f.MulAdd(v, phi),
	}
	return commitment, reply, nil
}

// Verify checks a PoSBasicTW proof. It never panics on malformed wire
// data supplied via commitmentWire/replyWire: a malformed commitment
// field is silently replaced by identity (see decodePoSCommitment) and
// a malformed reply causes an outright reject.
func Verify(inst *PoSInstance, params Params, challenger *fiatshamir.Challenger, commitmentWire, replyWire *bytetree.Reader) bool {
	n := inst.n()
	width := inst.width()
	ring := inst.Group.ScalarRing()

	instTree := posInstanceByteTree(inst)
	rawE := challenger.BatchVector(instTree, n, params.Ne)
	e := batchVectorArray(ring, rawE)

	rawCommitment := commitmentWire.RawBytes()
	commitment := decodePoSCommitment(inst.Group, n, width, commitmentWire)

	digest := challenger.TranscriptDigest(instTree)
	challengeData := bytetree.NewNode(bytetree.NewLeaf(digest), bytetree.NewRaw(rawCommitment))
	v := ring.Element(challenger.Scalar(challengeData, params.Nv))

	reply, err := decodePoSReply(ring, n, replyWire)
	if err != nil {
		return false
	}

	return verifyPoSRelations(inst, e, commitment, reply, v)
}

func verifyPoSRelations(inst *PoSInstance, e *arithm.RingArray, commitment *PoSCommitment, reply *PoSReply, v *arithm.RingElement) bool {
	n := inst.n()

	A := inst.U.ExpProd(e)
	F := elgamal.Combine(inst.W, e)
	C := inst.U.Prod().Mul(inst.H.Prod().Inv())
	eProd := e.Prod()
	h0 := inst.H.Get(0)
	shiftedB := commitment.B.ShiftPush(h0)
	D := commitment.B.Get(n - 1).Mul(h0.Exp(eProd).Inv())

	// A^v * A' == g^{kA} * prod h_i^{kE_i}
	lhsA := A.Exp(v).Mul(commitment.Ap)
	rhsA := inst.G.Exp(reply.KA).Mul(inst.H.ExpProd(reply.KE))
	if !lhsA.Equal(rhsA) {
		return false
	}

	// B_i^v * B'_i == g^{kB_i} * shiftedB_i^{kE_i}
	for i := 0; i < n; i++ {
		lhs := commitment.B.Get(i).Exp(v).Mul(commitment.Bp.Get(i))
		rhs := inst.G.Exp(reply.KB.Get(i)).Mul(shiftedB.Get(i).Exp(reply.KE.Get(i)))
		if !lhs.Equal(rhs) {
			return false
		}
	}

	// C^v * C' == g^{kC}
	lhsC := C.Exp(v).Mul(commitment.Cp)
	rhsC := inst.G.Exp(reply.KC)
	if !lhsC.Equal(rhsC) {
		return false
	}

	// D^v * D' == g^{kD}
	lhsD := D.Exp(v).Mul(commitment.Dp)
	rhsD := inst.G.Exp(reply.KD)
	if !lhsD.Equal(rhsD) {
		return false
	}

	// F^v * F' == pk^{-kF} * prod w'_i^{kE_i}
	lhsF := F.Exp(v).Mul(commitment.Fp)
	rhsF := inst.PK.AsCiphertext().Exp(reply.KF.Neg()).Mul(elgamal.Combine(inst.Wp, reply.KE))
	if !lhsF.Equal(rhsF) {
		return false
	}

	return true
}
