package bytetree

import (
	"bytes"
	"testing"
)

func TestLeafRoundTrip(t *testing.T) {
	leaf := NewLeaf([]byte("hello"))
	wire := Marshal(leaf)

	r, err := NewReader(wire)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if !r.IsLeaf() {
		t.Fatalf("expected leaf")
	}
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestNodeRoundTrip(t *testing.T) {
	n := NewNode(NewLeaf([]byte{1, 2, 3}), NewLeaf([]byte{4}), NewNode(NewLeaf([]byte{5, 6})))
	wire := Marshal(n)

	r, err := NewReader(wire)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if !r.IsNode() {
		t.Fatalf("expected node")
	}
	nc, err := r.NChildren()
	if err != nil || nc != 3 {
		t.Fatalf("NChildren = %d, %v", nc, err)
	}

	c0, err := r.NextChild()
	if err != nil {
		t.Fatalf("NextChild(0): %v", err)
	}
	b0, _ := c0.ReadAll()
	if !bytes.Equal(b0, []byte{1, 2, 3}) {
		t.Fatalf("child 0 = %v", b0)
	}

	c1, err := r.NextChild()
	if err != nil {
		t.Fatalf("NextChild(1): %v", err)
	}
	b1, _ := c1.ReadAll()
	if !bytes.Equal(b1, []byte{4}) {
		t.Fatalf("child 1 = %v", b1)
	}

	c2, err := r.NextChild()
	if err != nil {
		t.Fatalf("NextChild(2): %v", err)
	}
	if !c2.IsNode() {
		t.Fatalf("child 2 should be a node")
	}
	grandchild, err := c2.NextChild()
	if err != nil {
		t.Fatalf("grandchild: %v", err)
	}
	gb, _ := grandchild.ReadAll()
	if !bytes.Equal(gb, []byte{5, 6}) {
		t.Fatalf("grandchild = %v", gb)
	}

	if _, err := r.NextChild(); err == nil {
		t.Fatalf("expected error reading past last child")
	}
}

func TestReadIntAndBooleans(t *testing.T) {
	leaf := NewLeaf(append([]byte{0, 0, 1, 0}, []byte{0x01, 0x00, 0xff}...))
	r, err := NewReader(Marshal(leaf))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	v, err := r.ReadInt()
	if err != nil || v != 256 {
		t.Fatalf("ReadInt = %d, %v", v, err)
	}
	bs, err := r.ReadBooleans(3)
	if err != nil {
		t.Fatalf("ReadBooleans: %v", err)
	}
	want := []bool{true, false, true}
	for i := range want {
		if bs[i] != want[i] {
			t.Fatalf("bool[%d] = %v, want %v", i, bs[i], want[i])
		}
	}
}

func TestMalformedInput(t *testing.T) {
	if _, err := NewReader([]byte{0x02, 0, 0, 0, 0}); err == nil {
		t.Fatalf("expected FormatError for bad tag")
	}
	if _, err := NewReader([]byte{0x00, 0, 0, 0, 5, 1, 2}); err == nil {
		t.Fatalf("expected FormatError for truncated leaf")
	}
	_, err := NewReader([]byte{0xAB})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T", err)
	}
}
