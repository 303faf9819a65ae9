package arithm

import "github.com/rmartinezch/mixnet/bytetree"

// ProductGroup is the composite G^k: an ordered tuple of k independent
// factor groups sharing a common scalar ring, with every operation
// applied componentwise. It is built by composition, not by
// subclassing any factor implementation — the "public key group" G×G
// of spec §3 is a plain instance of this type. Package elgamal does not
// use it: its keys and width-ω ciphertexts are direct structs.
type ProductGroup struct {
	name    string
	factors []Group
	ring    *Ring
}

// NewProductGroup composes factors, which must all share the same
// scalar ring (they must all have the same order q).
func NewProductGroup(name string, factors ...Group) *ProductGroup {
	if len(factors) == 0 {
		panic(arithmErrorf("NewProductGroup: no factors"))
	}
	ring := factors[0].ScalarRing()
	for _, f := range factors[1:] {
		if !f.ScalarRing().Equal(ring) {
			panic(arithmErrorf("NewProductGroup: factors have different scalar rings"))
		}
	}
	return &ProductGroup{name: name, factors: factors, ring: ring}
}

func (g *ProductGroup) Name() string      { return g.name }
func (g *ProductGroup) ScalarRing() *Ring { return g.ring }
func (g *ProductGroup) Width() int        { return len(g.factors) }
func (g *ProductGroup) Factor(i int) Group { return g.factors[i] }

func (g *ProductGroup) Identity() Element {
	parts := make([]Element, len(g.factors))
	for i, f := range g.factors {
		parts[i] = f.Identity()
	}
	return &ProductElement{group: g, parts: parts}
}

func (g *ProductGroup) Generator() Element {
	parts := make([]Element, len(g.factors))
	for i, f := range g.factors {
		parts[i] = f.Generator()
	}
	return &ProductElement{group: g, parts: parts}
}

func (g *ProductGroup) ElementByteLength() int {
	total := 0
	for _, f := range g.factors {
		total += f.ElementByteLength()
	}
	return total
}

func (g *ProductGroup) Equal(other Group) bool {
	o, ok := other.(*ProductGroup)
	return ok && o == g
}

func (g *ProductGroup) decode(rd *bytetree.Reader, safe bool) (Element, error) {
	if !rd.IsNode() {
		return nil, formatErrorf("product element must be a node")
	}
	nc, err := rd.NChildren()
	if err != nil || nc != len(g.factors) {
		return nil, formatErrorf("product element has %d children, want %d", nc, len(g.factors))
	}
	parts := make([]Element, len(g.factors))
	for i, f := range g.factors {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		var e Element
		if safe {
			e, err = f.Decode(c)
		} else {
			e, err = f.DecodeUnsafe(c)
		}
		if err != nil {
			return nil, err
		}
		parts[i] = e
	}
	return &ProductElement{group: g, parts: parts}, nil
}

func (g *ProductGroup) Decode(rd *bytetree.Reader) (Element, error) {
	return g.decode(rd, true)
}

func (g *ProductGroup) DecodeUnsafe(rd *bytetree.Reader) (Element, error) {
	return g.decode(rd, false)
}

func (g *ProductGroup) VerifyMembership(e Element) error {
	pe, ok := e.(*ProductElement)
	if !ok || !pe.group.Equal(g) {
		return &ArithmeticError{Msg: "VerifyMembership: foreign element"}
	}
	for i, f := range g.factors {
		if err := f.VerifyMembership(pe.parts[i]); err != nil {
			return err
		}
	}
	return nil
}

// NewElement builds a product element from per-factor elements.
func (g *ProductGroup) NewElement(parts ...Element) Element {
	if len(parts) != len(g.factors) {
		panic(arithmErrorf("NewElement: got %d parts, want %d", len(parts), len(g.factors)))
	}
	for i, p := range parts {
		checkSameGroup(g.factors[i], p.Group(), "NewElement")
	}
	cp := make([]Element, len(parts))
	copy(cp, parts)
	return &ProductElement{group: g, parts: cp}
}

type ProductElement struct {
	group *ProductGroup
	parts []Element
}

func (e *ProductElement) Group() Group { return e.group }

// Project returns the i-th factor's component.
func (e *ProductElement) Project(i int) Element { return e.parts[i] }

func (e *ProductElement) Mul(b Element) Element {
	ob := b.(*ProductElement)
	checkSameGroup(e.group, ob.group, "Mul")
	parts := make([]Element, len(e.parts))
	for i := range parts {
		parts[i] = e.parts[i].Mul(ob.parts[i])
	}
	return &ProductElement{group: e.group, parts: parts}
}

func (e *ProductElement) Inv() Element {
	parts := make([]Element, len(e.parts))
	for i := range parts {
		parts[i] = e.parts[i].Inv()
	}
	return &ProductElement{group: e.group, parts: parts}
}

func (e *ProductElement) Exp(k *RingElement) Element {
	parts := make([]Element, len(e.parts))
	for i := range parts {
		parts[i] = e.parts[i].Exp(k)
	}
	return &ProductElement{group: e.group, parts: parts}
}

func (e *ProductElement) Equal(b Element) bool {
	ob, ok := b.(*ProductElement)
	if !ok || !ob.group.Equal(e.group) {
		return false
	}
	for i := range e.parts {
		if !e.parts[i].Equal(ob.parts[i]) {
			return false
		}
	}
	return true
}

func (e *ProductElement) Bytes() []byte {
	var out []byte
	for _, p := range e.parts {
		out = append(out, p.Bytes()...)
	}
	return out
}

func (e *ProductElement) ToByteTree() bytetree.Tree {
	children := make([]bytetree.Tree, len(e.parts))
	for i, p := range e.parts {
		children[i] = p.ToByteTree()
	}
	return bytetree.NewNode(children...)
}

// AsProduct type-asserts e to expose Project; it panics if e is not a
// product element, which indicates an internal bug (the caller should
// know the carrier's shape statically).
func AsProduct(e Element) *ProductElement {
	return e.(*ProductElement)
}
