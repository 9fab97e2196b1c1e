package object

import (
	"errors"
	"fmt"
)

// Kind identifies the kind of a stored object.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

// ParseKind validates a kind string read from disk or from a tree entry.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBlob, KindTree, KindCommit:
		return k, nil
	default:
		return "", fmt.Errorf("unknown object kind %q", s)
	}
}

var (
	ErrNotFound      = errors.New("object not found")
	ErrTypeMismatch  = errors.New("object type mismatch")
	ErrCorruptObject = errors.New("corrupt object")
	ErrCorruptTree   = errors.New("corrupt tree")
	ErrCorruptCommit = errors.New("corrupt commit")
)

// TreeEntry is one immediate child of a tree object.
type TreeEntry struct {
	Kind Kind // KindBlob or KindTree
	Hash Hash
	Name string
}

// Tree lists the immediate children of a directory snapshot.
type Tree struct {
	Entries []TreeEntry // sorted by Name when marshaled
}

// Commit points at a tree and records its lineage. The first parent is the
// mainline; a merge commit has two parents.
type Commit struct {
	Tree    Hash
	Parents []Hash
	Message string
}
