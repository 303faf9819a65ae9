package hvzk

import (
	"crypto/cipher"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
	"github.com/rmartinezch/mixnet/elgamal"
	"github.com/rmartinezch/mixnet/fiatshamir"
	"github.com/rmartinezch/mixnet/permutation"
)

// CCPoSInstance is the public input to the commitment-consistent
// shuffle proof: U is not computed here but taken as given, already
// bound to a permutation by a prior, separately verified PoSC proof
// over the same (G,H,U). CCPoSBasicW only has to show that the same U
// also explains the re-encryption from W to Wp, without re-proving
// that U itself commits to a permutation.
type CCPoSInstance struct {
	Group arithm.Group
	G     arithm.Element
	H     *arithm.GroupArray
	PK    *elgamal.PublicKey
	W     []*elgamal.Ciphertext
	Wp    []*elgamal.Ciphertext
	U     *arithm.GroupArray
}

func (inst *CCPoSInstance) n() int     { return inst.H.Len() }
func (inst *CCPoSInstance) width() int { return inst.PK.Width() }

// CCPoSWitness is the prover's secret: the same permutation and
// commitment randomness behind U (needed to answer the A-equation)
// together with the re-encryption exponents behind Wp.
type CCPoSWitness struct {
	Perm *permutation.Permutation
	R    *arithm.RingArray
	S    *arithm.RingArray
}

// CCPoSCommitment is the prover's round-1 message. There are no
// bridging commitments B_i/C'/D' here: permutation validity of U was
// already established by a prior PoSC run, so this proof only carries
// the two exponent-equation commitments.
type CCPoSCommitment struct {
	Ap arithm.Element
	Fp *elgamal.Ciphertext
}

func (c *CCPoSCommitment) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(c.Ap.ToByteTree(), c.Fp.ToByteTree())
}

func decodeCCPoSCommitment(group arithm.Group, width int, rd *bytetree.Reader) *CCPoSCommitment {
	result := &CCPoSCommitment{Ap: group.Identity(), Fp: identityCiphertext(group, width)}
	children := readChildren(rd, 2)
	if len(children) > 0 {
		result.Ap = decodeElementOrIdentity(group, children[0])
	}
	if len(children) > 1 {
		if fp, err := elgamal.FromByteTree(group, width, children[1], true); err == nil {
			result.Fp = fp
		}
	}
	return result
}

// CCPoSReply is the prover's round-3 message.
type CCPoSReply struct {
	KA *arithm.RingElement
	KE *arithm.RingArray
	KF *arithm.RingElement
}

func (r *CCPoSReply) ToByteTree() bytetree.Tree {
	return bytetree.NewNode(r.KA.ToByteTree(), r.KE.ToByteTree(), r.KF.ToByteTree())
}

func decodeCCPoSReply(ring *arithm.Ring, n int, rd *bytetree.Reader) (*CCPoSReply, error) {
	children := readChildren(rd, 3)
	if len(children) != 3 {
		return nil, &bytetree.FormatError{Msg: "CCPoS reply has wrong shape"}
	}
	ka, err := ring.Decode(children[0])
	if err != nil {
		return nil, err
	}
	ke, err := ring.DecodeArray(n, children[1])
	if err != nil {
		return nil, err
	}
	kf, err := ring.Decode(children[2])
	if err != nil {
		return nil, err
	}
	return &CCPoSReply{KA: ka, KE: ke, KF: kf}, nil
}

func ccposInstanceByteTree(inst *CCPoSInstance) bytetree.Tree {
	return bytetree.NewNode(
		inst.G.ToByteTree(),
		inst.H.ToByteTree(),
		inst.PK.ToByteTree(),
		elgamal.ToByteTreeArray(inst.W),
		elgamal.ToByteTreeArray(inst.Wp),
		inst.U.ToByteTree(),
	)
}

// ProveCCPoS runs the CCPoSBasicW prover. e' is obtained by permuting
// the batch vector by the same π that produced U, exactly as in the
// full proof, but only the A-equation and the ciphertext equation are
// answered.
func ProveCCPoS(inst *CCPoSInstance, wit *CCPoSWitness, params Params, challenger *fiatshamir.Challenger, rand cipher.Stream) (*CCPoSCommitment, *CCPoSReply, error) {
	n := inst.n()
	if wit.Perm.Len() != n || wit.R.Len() != n || wit.S.Len() != n || len(inst.W) != n || len(inst.Wp) != n {
		return nil, nil, &ProtocolError{Msg: "witness or instance dimensions do not match"}
	}
	ring := inst.Group.ScalarRing()

	instTree := ccposInstanceByteTree(inst)
	rawE := challenger.BatchVector(instTree, n, params.Ne)
	e := batchVectorArray(ring, rawE)
	ePrime := e.Permute(wit.Perm)

	pedBits := params.randomizerBits(ring)
	epsBits := params.epsilonBits()

	alpha := ring.RandomElement(rand, pedBits)
	phi := ring.RandomElement(rand, pedBits)
	epsilon := ring.RandomElementArray(n, rand, epsBits)

	Ap := inst.G.Exp(alpha).Mul(inst.H.ExpProd(epsilon))
	Fp := inst.PK.AsCiphertext().Exp(phi.Neg()).Mul(elgamal.Combine(inst.Wp, epsilon))

	commitment := &CCPoSCommitment{Ap: Ap, Fp: Fp}

	digest := challenger.TranscriptDigest(instTree)
	challengeData := bytetree.NewNode(bytetree.NewLeaf(digest), commitment.ToByteTree())
	v := ring.Element(challenger.Scalar(challengeData, params.Nv))

	a := wit.R.InnerProduct(ePrime)
	f := wit.S.InnerProduct(ePrime)

	reply := &CCPoSReply{
		KA: a.MulAdd(v, alpha),
		KE: ePrime.MulAdd(v, epsilon),
		KF: f.MulAdd(v, phi),
	}
	return commitment, reply, nil
}

// VerifyCCPoS checks a CCPoSBasicW proof against the given U, which
// the caller must have already established commits to a permutation
// via a separate PoSC verification.
func VerifyCCPoS(inst *CCPoSInstance, params Params, challenger *fiatshamir.Challenger, commitmentWire, replyWire *bytetree.Reader) bool {
	n := inst.n()
	width := inst.width()
	ring := inst.Group.ScalarRing()

	instTree := ccposInstanceByteTree(inst)
	rawE := challenger.BatchVector(instTree, n, params.Ne)
	e := batchVectorArray(ring, rawE)

	rawCommitment := commitmentWire.RawBytes()
	commitment := decodeCCPoSCommitment(inst.Group, width, commitmentWire)

	digest := challenger.TranscriptDigest(instTree)
	challengeData := bytetree.NewNode(bytetree.NewLeaf(digest), bytetree.NewRaw(rawCommitment))
	v := ring.Element(challenger.Scalar(challengeData, params.Nv))

	reply, err := decodeCCPoSReply(ring, n, replyWire)
	if err != nil {
		return false
	}

	A := inst.U.ExpProd(e)
	F := elgamal.Combine(inst.W, e)

	lhsA := A.Exp(v).Mul(commitment.Ap)
	rhsA := inst.G.Exp(reply.KA).Mul(inst.H.ExpProd(reply.KE))
	if !lhsA.Equal(rhsA) {
		return false
	}

	lhsF := F.Exp(v).Mul(commitment.Fp)
	rhsF := inst.PK.AsCiphertext().Exp(reply.KF.Neg()).Mul(elgamal.Combine(inst.Wp, reply.KE))
	return lhsF.Equal(rhsF)
}
