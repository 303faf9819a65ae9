package bytetree

import "encoding/binary"

// Reader walks a byte tree that was received as a flat wire buffer,
// without requiring the whole tree to be decoded up front. It is the
// primary decode-side API: every higher-level `toElement`/`toArray`
// routine consumes bytes through a Reader and turns a truncated or
// mistagged buffer into a *FormatError instead of a panic.
type Reader struct {
	buf []byte

	kind byte // tagLeaf or tagNode

	// Leaf state: unread payload is buf[cursor:end].
	cursor int
	end    int

	// Node state: count children, nextOff points at the header of the
	// next unread child, seen counts children already handed out.
	count   int
	nextOff int
	seen    int

	// start/rawLen span the exact wire bytes (header included) this
	// reader addressed at reset time, for RawBytes.
	start  int
	rawLen int
}

// NewReader wraps buf, which must contain exactly one encoded tree.
// Trailing bytes beyond the root's declared size are tolerated (the
// caller may be reading one child out of a larger sibling list).
func NewReader(buf []byte) (*Reader, error) {
	r := &Reader{}
	if err := r.reset(buf, 0); err != nil {
		return nil, err
	}
	return r, nil
}

// reset points r at the tree header found at buf[pos:].
func (r *Reader) reset(buf []byte, pos int) error {
	if pos+headerLen > len(buf) {
		return formatErrorf("truncated header at offset %d", pos)
	}
	tag := buf[pos]
	if tag != tagLeaf && tag != tagNode {
		return formatErrorf("unknown tag 0x%02x at offset %d", tag, pos)
	}
	n := binary.BigEndian.Uint32(buf[pos+1 : pos+5])
	body := pos + headerLen

	r.buf = buf
	r.kind = tag

	switch tag {
	case tagLeaf:
		end := body + int(n)
		if end > len(buf) || end < body {
			return formatErrorf("leaf length %d overruns buffer at offset %d", n, pos)
		}
		r.cursor = body
		r.end = end
	case tagNode:
		r.count = int(n)
		r.nextOff = body
		r.seen = 0
	}
	r.start = pos
	r.rawLen = r.encodedSize()
	return nil
}

// RawBytes returns the exact wire-format bytes (header included) that
// the tree currently addressed by r occupied at decode time, the same
// bytes a fresh Marshal of the decoded value would produce, without
// requiring the value to be re-encoded. This is what a transcript hash
// must be computed over: the bytes actually received, not a
// re-encoding of whatever was successfully parsed from them.
func (r *Reader) RawBytes() []byte {
	return r.buf[r.start : r.start+r.rawLen]
}

// IsLeaf reports whether the tree currently addressed by r is a leaf.
func (r *Reader) IsLeaf() bool { return r.kind == tagLeaf }

// IsNode reports whether the tree currently addressed by r is a node.
func (r *Reader) IsNode() bool { return r.kind == tagNode }

// Remaining returns, for a node, the number of children not yet
// consumed by NextChild; for a leaf, the number of unread payload
// bytes.
func (r *Reader) Remaining() int {
	if r.kind == tagLeaf {
		return r.end - r.cursor
	}
	return r.count - r.seen
}

// ReadBytes consumes and returns the next n bytes of a leaf's payload.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.kind != tagLeaf {
		return nil, formatErrorf("ReadBytes called on a node")
	}
	if n < 0 || n > r.end-r.cursor {
		return nil, formatErrorf("requested %d bytes, %d available", n, r.end-r.cursor)
	}
	out := r.buf[r.cursor : r.cursor+n]
	r.cursor += n
	return out, nil
}

// ReadAll returns every remaining byte of a leaf's payload.
func (r *Reader) ReadAll() ([]byte, error) {
	return r.ReadBytes(r.end - r.cursor)
}

// ReadInt reads a big-endian unsigned 4-byte integer from a leaf.
func (r *Reader) ReadInt() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadBooleans reads n booleans, one per byte (0x00 = false, any other
// value = true), from a leaf.
func (r *Reader) ReadBooleans(n int) ([]bool, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i, v := range b {
		out[i] = v != 0
	}
	return out, nil
}

// NChildren returns the number of children of the current node.
func (r *Reader) NChildren() (int, error) {
	if r.kind != tagNode {
		return 0, formatErrorf("NChildren called on a leaf")
	}
	return r.count, nil
}

// NextChild advances into the next unread child of the current node and
// returns a Reader addressing it. The returned reader shares the
// underlying buffer.
func (r *Reader) NextChild() (*Reader, error) {
	if r.kind != tagNode {
		return nil, formatErrorf("NextChild called on a leaf")
	}
	if r.seen >= r.count {
		return nil, formatErrorf("no more children (have %d)", r.count)
	}
	child := &Reader{}
	if err := child.reset(r.buf, r.nextOff); err != nil {
		return nil, err
	}
	r.nextOff += child.encodedSize()
	r.seen++
	return child, nil
}

// encodedSize returns the number of bytes the tree rooted at r occupies
// on the wire, including its header. Only valid immediately after
// reset, before any bytes/children are consumed from a fresh sibling
// walk performed by NextChild.
func (r *Reader) encodedSize() int {
	if r.kind == tagLeaf {
		return headerLen + (r.end - r.cursor)
	}
	size := headerLen
	off := r.nextOff
	for i := 0; i < r.count; i++ {
		c := &Reader{}
		if err := c.reset(r.buf, off); err != nil {
			// Reached when a descendant's header is malformed: reset
			// does not validate children up front, so the walk stops
			// here and returns the size counted so far. NextChild
			// reports the malformed child when it gets to it.
			return size
		}
		sz := c.encodedSize()
		size += sz
		off += sz
	}
	return size
}
