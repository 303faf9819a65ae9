// Package proofio provides typed read/write access to the named files
// of a mix-net proof directory (spec §6): one file per wire object,
// each a byte tree except for the small session-parameter triple
// (type, version, width) which travels as a protobuf-encoded struct,
// the way the teacher's util.ProtobufEncodePointList carries auxiliary
// structured data alongside the group-element wire format. There is no
// directory-walking, flag-parsing, or bulletin-board logic here — a
// caller decides which files exist and in which directory.
package proofio

import (
	"encoding/binary"
	"os"

	"go.dedis.ch/protobuf"

	"github.com/rmartinezch/mixnet/arithm"
	"github.com/rmartinezch/mixnet/bytetree"
	"github.com/rmartinezch/mixnet/elgamal"
	"github.com/rmartinezch/mixnet/hvzk"
)

func intLeaf(v int) bytetree.Tree {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return bytetree.NewLeaf(b[:])
}

func readIntLeaf(rd *bytetree.Reader) (int, error) {
	v, err := rd.ReadInt()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

const (
	FilePermutationCommitment = "PCl"
	FilePoSCCommitment        = "PoSCCl"
	FilePoSCReply             = "PoSCRl"
	FilePoSCommitment         = "PoSCl"
	FilePoSReply              = "PoSRl"
	FileCCPoSCommitment       = "CCPoSCl"
	FileCCPoSReply            = "CCPoSRl"
	FileActiveThreshold       = "at"
	FileKeepLists             = "kLl"
	FileMaxCiphertexts        = "mc"
	FileWidth                 = "width"
	FileType                  = "type"
	FileVersion               = "version"
	FileAuxSID                = "auxsid"
)

// WritePermutationCommitment persists U, the output of
// hvzk.CommitPermutation, to the PCl file.
func WritePermutationCommitment(path string, u *arithm.GroupArray) error {
	return bytetree.WriteFile(path, u.ToByteTree())
}

// ReadPermutationCommitment reads a PCl file for a group of the given
// size, decoding leniently: if the tree does not decode as n members of
// group, the result is n copies of the group identity, matching how a
// PoSC/PoS verifier treats U itself as an untrusted wire value. A file
// that cannot be read, or is not one well-formed byte tree, is still an
// error.
func ReadPermutationCommitment(group arithm.Group, n int, path string) (*arithm.GroupArray, error) {
	rd, err := bytetree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := arithm.ToElementArray(group, n, rd, true)
	if err != nil {
		id := make([]arithm.Element, n)
		for i := range id {
			id[i] = group.Identity()
		}
		return arithm.NewGroupArray(group, id), nil
	}
	return u, nil
}

// WritePoSCCommitment persists a PoSCBasicTW round-1 message to the
// PoSCCl file.
func WritePoSCCommitment(path string, c *hvzk.PoSCCommitment) error {
	return bytetree.WriteFile(path, c.ToByteTree())
}

// WritePoSCReply persists a PoSCBasicTW round-3 message to the PoSCRl
// file.
func WritePoSCReply(path string, r *hvzk.PoSCReply) error {
	return bytetree.WriteFile(path, r.ToByteTree())
}

// WritePoSCommitment persists a PoSBasicTW round-1 message to the
// PoSCl file.
func WritePoSCommitment(path string, c *hvzk.PoSCommitment) error {
	return bytetree.WriteFile(path, c.ToByteTree())
}

// WritePoSReply persists a PoSBasicTW round-3 message to the PoSRl
// file.
func WritePoSReply(path string, r *hvzk.PoSReply) error {
	return bytetree.WriteFile(path, r.ToByteTree())
}

// WriteCCPoSCommitment persists a CCPoSBasicW round-1 message to the
// CCPoSCl file.
func WriteCCPoSCommitment(path string, c *hvzk.CCPoSCommitment) error {
	return bytetree.WriteFile(path, c.ToByteTree())
}

// WriteCCPoSReply persists a CCPoSBasicW round-3 message to the
// CCPoSRl file.
func WriteCCPoSReply(path string, r *hvzk.CCPoSReply) error {
	return bytetree.WriteFile(path, r.ToByteTree())
}

// ReadPoSCommitmentWire opens PoSCl for streaming decode, e.g. by
// hvzk.Verify, which needs a *bytetree.Reader rather than a fully
// decoded struct so it can capture the raw commitment bytes for the
// Fiat-Shamir transcript before substituting identities.
func ReadPoSCommitmentWire(path string) (*bytetree.Reader, error) {
	return bytetree.ReadFile(path)
}

// ReadPoSReplyWire opens PoSRl for streaming decode.
func ReadPoSReplyWire(path string) (*bytetree.Reader, error) {
	return bytetree.ReadFile(path)
}

// ReadPoSCCommitmentWire opens PoSCCl for streaming decode.
func ReadPoSCCommitmentWire(path string) (*bytetree.Reader, error) {
	return bytetree.ReadFile(path)
}

// ReadPoSCReplyWire opens PoSCRl for streaming decode.
func ReadPoSCReplyWire(path string) (*bytetree.Reader, error) {
	return bytetree.ReadFile(path)
}

// ReadCCPoSCommitmentWire opens CCPoSCl for streaming decode.
func ReadCCPoSCommitmentWire(path string) (*bytetree.Reader, error) {
	return bytetree.ReadFile(path)
}

// ReadCCPoSReplyWire opens CCPoSRl for streaming decode.
func ReadCCPoSReplyWire(path string) (*bytetree.Reader, error) {
	return bytetree.ReadFile(path)
}

// WriteCiphertexts persists a ciphertext list (an input or output
// batch W/Wp) as a single byte-tree file.
func WriteCiphertexts(path string, w []*elgamal.Ciphertext) error {
	return bytetree.WriteFile(path, elgamal.ToByteTreeArray(w))
}

// ReadCiphertexts reads back a ciphertext list of known width and
// length.
func ReadCiphertexts(group arithm.Group, width, n int, path string) ([]*elgamal.Ciphertext, error) {
	rd, err := bytetree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return elgamal.FromByteTreeArray(group, width, n, rd, true)
}

// WriteActiveThreshold persists the active-threshold parameter to the
// at file, as a 4-byte big-endian integer wrapped in a leaf.
func WriteActiveThreshold(path string, at int) error {
	return bytetree.WriteFile(path, intLeaf(at))
}

// ReadActiveThreshold reads the at file.
func ReadActiveThreshold(path string) (int, error) {
	rd, err := bytetree.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return readIntLeaf(rd)
}

// WriteMaxCiphertexts persists the maxciph parameter to the mc file.
func WriteMaxCiphertexts(path string, mc int) error {
	return bytetree.WriteFile(path, intLeaf(mc))
}

// ReadMaxCiphertexts reads the mc file.
func ReadMaxCiphertexts(path string) (int, error) {
	rd, err := bytetree.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return readIntLeaf(rd)
}

// WriteAuxSID persists the auxiliary session identifier to the auxsid
// file, an opaque byte string.
func WriteAuxSID(path string, auxsid []byte) error {
	return bytetree.WriteFile(path, bytetree.NewLeaf(auxsid))
}

// ReadAuxSID reads the auxsid file.
func ReadAuxSID(path string) ([]byte, error) {
	rd, err := bytetree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rd.ReadAll()
}

// WriteKeepLists persists the per-party keep lists to the kLl file:
// one boolean per ciphertext index per party, true meaning that party
// vouches for (keeps) that ciphertext rather than blaming it.
func WriteKeepLists(path string, keep [][]bool) error {
	parties := make([]bytetree.Tree, len(keep))
	for i, party := range keep {
		b := make([]byte, len(party))
		for j, v := range party {
			if v {
				b[j] = 1
			}
		}
		parties[i] = bytetree.NewLeaf(b)
	}
	return bytetree.WriteFile(path, bytetree.NewNode(parties...))
}

// ReadKeepLists reads the kLl file for the given party count and
// per-party list length.
func ReadKeepLists(path string, parties, n int) ([][]bool, error) {
	rd, err := bytetree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !rd.IsNode() {
		return nil, &bytetree.FormatError{Msg: "keep lists must be a node"}
	}
	nc, err := rd.NChildren()
	if err != nil || nc != parties {
		return nil, &bytetree.FormatError{Msg: "keep lists has wrong party count"}
	}
	out := make([][]bool, parties)
	for i := 0; i < parties; i++ {
		c, err := rd.NextChild()
		if err != nil {
			return nil, err
		}
		booleans, err := c.ReadBooleans(n)
		if err != nil {
			return nil, err
		}
		out[i] = booleans
	}
	return out, nil
}

// SessionParams is the non-proof session-parameter triple: the proof
// system in use (PoS, CCPoS, or PoSC), the wire-format version, and
// the ElGamal ciphertext width. It is encoded with go.dedis.ch/protobuf
// rather than the byte-tree codec since it never enters a Fiat-Shamir
// transcript and has no canonical-encoding requirement.
type SessionParams struct {
	Type    string
	Version string
	Width   int32
}

// WriteSessionParams splits params across the type, version and width
// files named by spec §6, each protobuf-encoded on its own.
func WriteSessionParams(typePath, versionPath, widthPath string, params SessionParams) error {
	if err := writeProtobufFile(typePath, &typeMsg{Type: params.Type}); err != nil {
		return err
	}
	if err := writeProtobufFile(versionPath, &versionMsg{Version: params.Version}); err != nil {
		return err
	}
	return writeProtobufFile(widthPath, &widthMsg{Width: params.Width})
}

// ReadSessionParams reassembles SessionParams from the three files
// written by WriteSessionParams.
func ReadSessionParams(typePath, versionPath, widthPath string) (SessionParams, error) {
	var t typeMsg
	if err := readProtobufFile(typePath, &t); err != nil {
		return SessionParams{}, err
	}
	var v versionMsg
	if err := readProtobufFile(versionPath, &v); err != nil {
		return SessionParams{}, err
	}
	var w widthMsg
	if err := readProtobufFile(widthPath, &w); err != nil {
		return SessionParams{}, err
	}
	return SessionParams{Type: t.Type, Version: v.Version, Width: w.Width}, nil
}

type typeMsg struct{ Type string }
type versionMsg struct{ Version string }
type widthMsg struct{ Width int32 }

func writeProtobufFile(path string, msg interface{}) error {
	data, err := protobuf.Encode(msg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readProtobufFile(path string, msg interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return protobuf.Decode(data, msg)
}
