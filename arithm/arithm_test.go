package arithm

import (
	"math/big"
	"testing"

	krand "go.dedis.ch/kyber/v4/util/random"

	"github.com/rmartinezch/mixnet/bytetree"
)

// small safe prime for fast tests: p=2q+1, q prime, g generates the
// order-q subgroup.
func testModpGroup(t *testing.T) Group {
	t.Helper()
	p, _ := new(big.Int).SetString("167", 10) // p=167=2*83+1, 83 prime
	g := big.NewInt(4)                        // 4 is a QR mod 167 with order 83
	grp, err := NewSafePrimeGroup("test-modp", p, g)
	if err != nil {
		t.Fatalf("NewSafePrimeGroup: %v", err)
	}
	return grp
}

func TestModpGroupLaws(t *testing.T) {
	g := testModpGroup(t)
	ring := g.ScalarRing()
	rnd := krand.New()

	a := ring.RandomElement(rnd, 64)
	b := ring.RandomElement(rnd, 64)

	gen := g.Generator()
	lhs := gen.Exp(a).Mul(gen.Exp(b))
	rhs := gen.Exp(a.Add(b))
	if !lhs.Equal(rhs) {
		t.Fatalf("g^a * g^b != g^(a+b)")
	}

	id := g.Identity()
	if !gen.Mul(id).Equal(gen) {
		t.Fatalf("identity law failed")
	}
	if !gen.Mul(gen.Inv()).Equal(id) {
		t.Fatalf("inverse law failed")
	}
}

func TestModpMembership(t *testing.T) {
	g := testModpGroup(t)
	gm := g.(*modpGroup)

	nonMember := &modpElement{group: gm, v: big.NewInt(5)} // 5 is a quadratic non-residue mod 167
	err := g.VerifyMembership(nonMember)
	// 5^83 ≡ -1 (mod 167), so 5 lies outside the order-83 subgroup.
	if err == nil {
		t.Fatalf("VerifyMembership accepted a quadratic non-residue")
	}
}

func TestRingArrayOps(t *testing.T) {
	q := big.NewInt(97)
	ring := NewRing(q)
	e := func(v int64) *RingElement { return ring.ElementFromInt64(v) }

	a := NewRingArray(ring, []*RingElement{e(1), e(2), e(3)})
	b := NewRingArray(ring, []*RingElement{e(10), e(20), e(30)})

	sum := a.Add(b)
	for i, want := range []int64{11, 22, 33} {
		if sum.Get(i).BigInt().Int64() != want {
			t.Fatalf("sum[%d] = %v, want %d", i, sum.Get(i).BigInt(), want)
		}
	}

	ip := a.InnerProduct(b)
	want := int64(1*10 + 2*20 + 3*30)
	if ip.BigInt().Int64() != want%97 {
		t.Fatalf("InnerProduct = %v, want %d", ip.BigInt(), want%97)
	}

	shifted := a.ShiftPush(e(99 % 97))
	if shifted.Get(0).BigInt().Int64() != 99%97 || shifted.Get(1).BigInt().Int64() != 1 || shifted.Get(2).BigInt().Int64() != 2 {
		t.Fatalf("ShiftPush = %v", shifted.Slice())
	}

	prods := a.Prods()
	if prods.Get(0).BigInt().Int64() != 1 {
		t.Fatalf("prods[0] = %v", prods.Get(0).BigInt())
	}
	if prods.Get(1).BigInt().Int64() != 2 {
		t.Fatalf("prods[1] = %v", prods.Get(1).BigInt())
	}
	if prods.Get(2).BigInt().Int64() != 6 {
		t.Fatalf("prods[2] = %v", prods.Get(2).BigInt())
	}

	y, d := b.RecLin(a)
	// y_0 = b_0 = 10
	if y.Get(0).BigInt().Int64() != 10 {
		t.Fatalf("y[0] = %v", y.Get(0).BigInt())
	}
	// y_1 = b_1 + a_1*y_0 = 20 + 2*10 = 40
	if y.Get(1).BigInt().Int64() != 40 {
		t.Fatalf("y[1] = %v", y.Get(1).BigInt())
	}
	// y_2 = b_2 + a_2*y_1 = 30 + 3*40 = 150 mod 97 = 53
	if y.Get(2).BigInt().Int64() != 150%97 {
		t.Fatalf("y[2] = %v", y.Get(2).BigInt())
	}
	if d.BigInt().Int64() != y.Get(2).BigInt().Int64() {
		t.Fatalf("d != y[N-1]")
	}
}

func TestRingElementByteTreeRoundTrip(t *testing.T) {
	q, _ := new(big.Int).SetString("115792089210356248762697446949407573530086143415290314195533631308867097853951", 10)
	ring := NewRing(q)
	v := new(big.Int).Sub(q, big.NewInt(1))
	e := ring.Element(v)

	wire := e.Bytes()
	if len(wire) != ring.ByteLength() {
		t.Fatalf("Bytes() length = %d, want %d", len(wire), ring.ByteLength())
	}

	rd, err := bytetree.NewReader(bytetree.Marshal(e.ToByteTree()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	decoded, err := ring.Decode(rd)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Equal(e) {
		t.Fatalf("ring element round trip mismatch")
	}
}

type fixedPerm struct{ idx []int }

func (p fixedPerm) At(i int) int { return p.idx[i] }
func (p fixedPerm) Len() int     { return len(p.idx) }

func TestGroupArrayPermuteAndExpProd(t *testing.T) {
	g := testModpGroup(t)
	ring := g.ScalarRing()

	gen := g.Generator()
	elems := make([]Element, 4)
	for i := range elems {
		elems[i] = gen.Exp(ring.ElementFromInt64(int64(i + 1)))
	}
	arr := NewGroupArray(g, elems)

	perm := fixedPerm{idx: []int{2, 0, 3, 1}}
	permuted := arr.Permute(perm)
	for i := range elems {
		if !permuted.Get(i).Equal(elems[perm.At(i)]) {
			t.Fatalf("Permute mismatch at %d", i)
		}
	}

	exps := NewRingArray(ring, []*RingElement{
		ring.ElementFromInt64(1), ring.ElementFromInt64(1),
		ring.ElementFromInt64(1), ring.ElementFromInt64(1),
	})
	got := arr.ExpProd(exps)
	want := arr.Prod()
	if !got.Equal(want) {
		t.Fatalf("ExpProd with all-1 exponents should equal Prod")
	}
}

func TestProductGroupIsGxG(t *testing.T) {
	g := testModpGroup(t)
	ring := g.ScalarRing()
	rnd := krand.New()

	pkGroup := NewProductGroup("pk-group", g, g)
	if pkGroup.Width() != 2 {
		t.Fatalf("Width() = %d, want 2", pkGroup.Width())
	}

	x := ring.RandomElement(rnd, 64)
	y := ring.RandomElement(rnd, 64)
	elem := pkGroup.NewElement(g.Generator().Exp(x), g.Generator().Exp(y))

	rd, err := bytetree.NewReader(bytetree.Marshal(elem.ToByteTree()))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	decoded, err := pkGroup.Decode(rd)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !elem.Equal(decoded) {
		t.Fatalf("product element round trip mismatch")
	}

	a := ring.RandomElement(rnd, 64)
	lhs := elem.Exp(a)
	rhsFirst := AsProduct(elem).Project(0).Exp(a)
	if !AsProduct(lhs).Project(0).Equal(rhsFirst) {
		t.Fatalf("Exp is not componentwise")
	}
}
