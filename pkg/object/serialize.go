package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree. Entries are sorted by Name for
// deterministic output. Each entry is one line:
//
//	kind hexdigest name
func MarshalTree(t *Tree) []byte {
	sorted := make([]TreeEntry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %s %s\n", e.Kind, e.Hash, e.Name)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a Tree from its serialized form. Entry names are
// single path segments; anything else is a corrupt tree.
func UnmarshalTree(data []byte) (*Tree, error) {
	t := &Tree{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return t, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: malformed entry %q", ErrCorruptTree, line)
		}
		kind := Kind(parts[0])
		if kind != KindBlob && kind != KindTree {
			return nil, fmt.Errorf("%w: unknown entry kind %q", ErrCorruptTree, parts[0])
		}
		h, err := ParseHash(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTree, err)
		}
		name := parts[2]
		if !ValidEntryName(name) {
			return nil, fmt.Errorf("%w: invalid entry name %q", ErrCorruptTree, name)
		}
		t.Entries = append(t.Entries, TreeEntry{Kind: kind, Hash: h, Name: name})
	}
	return t, nil
}

// ValidEntryName reports whether name can be a tree entry: non-empty, not
// "." or "..", and free of path separators.
func ValidEntryName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\n")
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit:
//
//	tree H
//	parent H     (zero or more)
//
//	message
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// UnmarshalCommit parses a Commit from its serialized form.
func UnmarshalCommit(data []byte) (*Commit, error) {
	text := string(data)
	header, message, ok := strings.Cut(text, "\n\n")
	if !ok {
		// A commit may end right after its headers.
		header = strings.TrimSuffix(text, "\n")
	}
	message = strings.TrimSuffix(message, "\n")

	c := &Commit{Message: message}
	hasTree := false
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed header line %q", ErrCorruptCommit, line)
		}
		switch key {
		case "tree":
			h, err := ParseHash(val)
			if err != nil {
				return nil, fmt.Errorf("%w: tree: %v", ErrCorruptCommit, err)
			}
			c.Tree = h
			hasTree = true
		case "parent":
			h, err := ParseHash(val)
			if err != nil {
				return nil, fmt.Errorf("%w: parent: %v", ErrCorruptCommit, err)
			}
			c.Parents = append(c.Parents, h)
		default:
			return nil, fmt.Errorf("%w: unknown header key %q", ErrCorruptCommit, key)
		}
	}
	if !hasTree {
		return nil, fmt.Errorf("%w: missing tree", ErrCorruptCommit)
	}
	return c, nil
}
