package hvzk

import (
	"crypto/cipher"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
	"github.com/rmartinezch/mixnet/fiatshamir"
	"github.com/rmartinezch/mixnet/permutation"
)

// PoSCInstance is the public input to a proof of shuffle of
// commitments: a group with N independent generators and the
// permutation commitment U claimed to be a shuffle of them.
type PoSCInstance struct {
	Group arithm.Group
	G     arithm.Element
	H     *arithm.GroupArray
	U     *arithm.GroupArray
}

func (inst *PoSCInstance) n() int { return inst.H.Len() }

// PoSCWitness is the prover's secret behind U: the permutation and
// commitment randomness such that U = commitPermutation(G, H, R, Perm).
type PoSCWitness struct {
	Perm *permutation.Permutation
	R    *arithm.RingArray
}

// PoSCCommitment is the prover's round-1 message — the same bridging
// machinery as PoSCommitment, minus the ciphertext limb.
type PoSCCommitment struct {
	B  *arithm.GroupArray
	Ap arithm.Element
	Bp *arithm.GroupArray
	Cp arithm.Element
	Dp arithm.Element
}

func (c *PoSCCommitment) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(c.B.ToByteTree(), c.Ap.ToByteTree(), c.Bp.ToByteTree(), c.Cp.ToByteTree(), c.Dp.ToByteTree())
}

func decodePoSCCommitment(group arithm.Group, n int, rd *bytetree.Reader) *PoSCCommitment {
	result := &PoSCCommitment{
		B: identityGroupArray(group, n), Ap: group.Identity(),
		Bp: identityGroupArray(group, n), Cp: group.Identity(), Dp: group.Identity(),
	}
	children := readChildren(rd, 5)
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
	return result
}

// PoSCReply is the prover's round-3 message.
type PoSCReply struct {
	KA *arithm.RingElement
	KB *arithm.RingArray
	KC *arithm.RingElement
	KD *arithm.RingElement
	KE *arithm.RingArray
}

func (r *PoSCReply) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(r.KA.ToByteTree(), r.KB.ToByteTree(), r.KC.ToByteTree(), r.KD.ToByteTree(), r.KE.ToByteTree())
}

func decodePoSCReply(ring *arithm.Ring, n int, rd *bytetree.Reader) (*PoSCReply, error) {
	children := readChildren(rd, 5)
	if len(children) != 5 {
		return nil, &bytetree.FormatError{Msg: "PoSC reply has wrong shape"}
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
	return &PoSCReply{KA: ka, KB: kb, KC: kc, KD: kd, KE: ke}, nil
}

func poscInstanceByteTree(inst *PoSCInstance) bytetree.Tree {
	return bytetree.NewNode(inst.G.ToByteTree(), inst.H.ToByteTree(), inst.U.ToByteTree())
}

// ProvePoSC runs the PoSCBasicTW prover: the same bridging-commitment
// algebra as PoSBasicTW, restricted to the permutation-commitment
// relation (no ciphertexts, no F/F'/k_F).
func ProvePoSC(inst *PoSCInstance, wit *PoSCWitness, params Params, challenger *fiatshamir.Challenger, rand cipher.Stream) (*PoSCCommitment, *PoSCReply, error) {
	n := inst.n()
	if wit.Perm.Len() != n || wit.R.Len() != n {
		return nil, nil, &ProtocolError{Msg: "witness dimensions do not match instance size"}
	}
	ring := inst.Group.ScalarRing()

	instTree := poscInstanceByteTree(inst)
	rawE := challenger.BatchVector(instTree, n, params.Ne)
	e := batchVectorArray(ring, rawE)
	ePrime := e.Permute(wit.Perm)

	pedBits := params.randomizerBits(ring)
	epsBits := params.epsilonBits()

	alpha := ring.RandomElement(rand, pedBits)
	beta := ring.RandomElementArray(n, rand, pedBits)
	gamma := ring.RandomElement(rand, pedBits)
	delta := ring.RandomElement(rand, pedBits)
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

	commitment := &PoSCCommitment{B: B, Ap: Ap, Bp: Bp, Cp: Cp, Dp: Dp}

	digest := challenger.TranscriptDigest(instTree)
	challengeData := bytetree.NewNode(bytetree.NewLeaf(digest), commitment.ToByteTree())
	v := ring.Element(challenger.Scalar(challengeData, params.Nv))

	a := wit.R.InnerProduct(ePrime)
	c := wit.R.Sum()

	reply := &PoSCReply{
		KA: a.MulAdd(v, alpha),
		KB: b.MulAdd(v, beta),
		KC: c.MulAdd(v, gamma),
		KD: d.MulAdd(v, delta),
		KE: ePrime.MulAdd(v, epsilon),
	}
	return commitment, reply, nil
}

// VerifyPoSC checks a PoSCBasicTW proof.
func VerifyPoSC(inst *PoSCInstance, params Params, challenger *fiatshamir.Challenger, commitmentWire, replyWire *bytetree.Reader) bool {
	n := inst.n()
	ring := inst.Group.ScalarRing()

	instTree := poscInstanceByteTree(inst)
	rawE := challenger.BatchVector(instTree, n, params.Ne)
	e := batchVectorArray(ring, rawE)

	rawCommitment := commitmentWire.RawBytes()
	commitment := decodePoSCCommitment(inst.Group, n, commitmentWire)

	digest := challenger.TranscriptDigest(instTree)
	challengeData := bytetree.NewNode(bytetree.NewLeaf(digest), bytetree.NewRaw(rawCommitment))
	v := ring.Element(challenger.Scalar(challengeData, params.Nv))

	reply, err := decodePoSCReply(ring, n, replyWire)
	if err != nil {
		return false
	}

	A := inst.U.ExpProd(e)
	C := inst.U.Prod().Mul(inst.H.Prod().Inv())
	eProd := e.Prod()
	h0 := inst.H.Get(0)
	shiftedB := commitment.B.ShiftPush(h0)
	D := commitment.B.Get(n - 1).Mul(h0.Exp(eProd).Inv())

	lhsA := A.Exp(v).Mul(commitment.Ap)
	rhsA := inst.G.Exp(reply.KA).Mul(inst.H.ExpProd(reply.KE))
	if !lhsA.Equal(rhsA) {
		return false
	}

	for i := 0; i < n; i++ {
		lhs := commitment.B.Get(i).Exp(v).Mul(commitment.Bp.Get(i))
		rhs := inst.G.Exp(reply.KB.Get(i)).Mul(shiftedB.Get(i).Exp(reply.KE.Get(i)))
		if !lhs.Equal(rhs) {
			return false
		}
	}

	lhsC := C.Exp(v).Mul(commitment.Cp)
	rhsC := inst.G.Exp(reply.KC)
	if !lhsC.Equal(rhsC) {
		return false
	}

	lhsD := D.Exp(v).Mul(commitment.Dp)
	rhsD := inst.G.Exp(reply.KD)
	return lhsD.Equal(rhsD)
}
