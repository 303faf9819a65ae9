package bytetree

import "os"

// WriteFile marshals t and writes it to name, following verificatum's
// proof-directory convention of one file per wire object. The file is
// created or truncated with mode 0644.
func WriteFile(name string, t Tree) error {
	return os.WriteFile(name, Marshal(t), 0644)
}

// ReadFile reads name and returns a Reader positioned at its root
// tree. The whole file must be exactly one encoded tree.
func ReadFile(name string) (*Reader, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	rd, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	if rd.encodedSize() != len(data) {
		return nil, formatErrorf("%s: trailing bytes after root tree", name)
	}
	return rd, nil
}
