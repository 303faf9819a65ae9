// Package bytetree implements the self-describing binary encoding used
// throughout the mix-net core as both proof storage and random-oracle
// input. A byte tree is either a leaf carrying an opaque byte string or a
// node carrying an ordered list of children; every higher-level value
// (group elements, ring elements, arrays, proof messages) is defined by
// how it maps onto this tree, so the encoding of a value is a pure
// function of its logical content.
package bytetree

import (
	"encoding/binary"
	"fmt"
)

const (
	tagLeaf = 0x00
	tagNode = 0x01

	headerLen = 1 + 4
)

// FormatError signals a malformed byte tree: wrong tag, truncated
// payload, or a length field that does not match the remaining input.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "bytetree: " + e.Msg }

func formatErrorf(format string, args ...interface{}) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// Tree is either a Leaf or a Node.
type Tree interface {
	// Encode appends this tree's wire representation to dst and returns
	// the result.
	Encode(dst []byte) []byte

	// Size returns the exact number of bytes Encode will append.
	Size() int

	isTree()
}

// Leaf carries an opaque byte string.
type Leaf struct {
	Data []byte
}

// NewLeaf wraps b as a leaf. The slice is not copied.
func NewLeaf(b []byte) *Leaf { return &Leaf{Data: b} }

func (l *Leaf) isTree() {}

// Size implements Tree.
func (l *Leaf) Size() int { return headerLen + len(l.Data) }

// Encode implements Tree.
func (l *Leaf) Encode(dst []byte) []byte {
	dst = append(dst, tagLeaf)
	dst = appendUint32(dst, uint32(len(l.Data)))
	dst = append(dst, l.Data...)
	return dst
}

// Node carries an ordered sequence of children.
type Node struct {
	Children []Tree
}

// NewNode builds a node from the given children.
func NewNode(children ...Tree) *Node { return &Node{Children: children} }

func (n *Node) isTree() {}

// Size implements Tree.
func (n *Node) Size() int {
	total := headerLen
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}

// Encode implements Tree.
func (n *Node) Encode(dst []byte) []byte {
	dst = append(dst, tagNode)
	dst = appendUint32(dst, uint32(len(n.Children)))
	for _, c := range n.Children {
		dst = c.Encode(dst)
	}
	return dst
}

// Raw wraps an already-encoded wire byte string — typically the result
// of Reader.RawBytes — so it can be embedded as a child of a Node
// without being decoded and re-encoded. This matters when hashing a
// transcript segment received over the wire: the hash must cover the
// bytes actually received, not a re-encoding of whatever was
// successfully parsed from them.
type Raw struct {
	Data []byte
}

// NewRaw wraps b, which must already be one complete, valid tree
// encoding. The slice is not copied.
func NewRaw(b []byte) *Raw { return &Raw{Data: b} }

func (r *Raw) isTree() {}

// Size implements Tree.
func (r *Raw) Size() int { return len(r.Data) }

// Encode implements Tree.
func (r *Raw) Encode(dst []byte) []byte { return append(dst, r.Data...) }

// Marshal returns the full wire encoding of t.
func Marshal(t Tree) []byte {
	return t.Encode(make([]byte, 0, t.Size()))
}

func appendUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}
