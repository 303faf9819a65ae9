package permutation

import (
	"testing"

	"go.dedis.ch/kyber/v4/util/random"

	"github.com/rmartinezch/mixnet/bytetree"
)

func TestInvIsInverse(t *testing.T) {
	rnd := random.New()
	p := Sample(20, 40, rnd)
	inv := p.Inv()

	for i := 0; i < p.Len(); i++ {
		if inv.At(p.At(i)) != i {
			t.Fatalf("inv(p(%d)) = %d, want %d", i, inv.At(p.At(i)), i)
		}
	}
}

func TestSampleIsBijection(t *testing.T) {
	rnd := random.New()
	p := Sample(50, 40, rnd)
	seen := make([]bool, 50)
	for i := 0; i < p.Len(); i++ {
		v := p.At(i)
		if v < 0 || v >= 50 || seen[v] {
			t.Fatalf("not a bijection at %d -> %d", i, v)
		}
		seen[v] = true
	}
}

func TestIdentity(t *testing.T) {
	p := Identity(5)
	for i := 0; i < 5; i++ {
		if p.At(i) != i {
			t.Fatalf("identity[%d] = %d", i, p.At(i))
		}
	}
}

func TestByteTreeRoundTrip(t *testing.T) {
	rnd := random.New()
	p := Sample(12, 40, rnd)
	wire := bytetree.Marshal(p.ToByteTree())

	r, err := bytetree.NewReader(wire)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	p2, err := FromByteTree(12, r)
	if err != nil {
		t.Fatalf("FromByteTree: %v", err)
	}
	for i := 0; i < 12; i++ {
		if p.At(i) != p2.At(i) {
			t.Fatalf("round trip mismatch at %d: %d != %d", i, p.At(i), p2.At(i))
		}
	}
}
