package repo

import (
	"fmt"
	"path"
	"strings"

	"github.com/odvcencio/ugit/pkg/object"
)

// treeNode is one directory in the arena built by BuildTree. Children are
// referenced by arena index and always have a larger index than their
// parent.
type treeNode struct {
	files    map[string]object.Hash
	children map[string]int
}

// BuildTree writes the tree objects for a flat path -> blob mapping and
// returns the root tree digest. The same mapping always produces the same
// digest; an empty mapping produces the empty tree.
func (r *Repo) BuildTree(files map[string]object.Hash) (object.Hash, error) {
	nodes := []treeNode{{files: map[string]object.Hash{}, children: map[string]int{}}}

	for p, h := range files {
		segs, err := splitTreePath(p)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("build tree: %w", err)
		}
		cur := 0
		for _, seg := range segs[:len(segs)-1] {
			if _, isFile := nodes[cur].files[seg]; isFile {
				return object.ZeroHash, fmt.Errorf("build tree: %w: %q is both a file and a directory", ErrInvalidPath, seg)
			}
			child, ok := nodes[cur].children[seg]
			if !ok {
				child = len(nodes)
				nodes = append(nodes, treeNode{files: map[string]object.Hash{}, children: map[string]int{}})
				nodes[cur].children[seg] = child
			}
			cur = child
		}
		name := segs[len(segs)-1]
		if _, isDir := nodes[cur].children[name]; isDir {
			return object.ZeroHash, fmt.Errorf("build tree: %w: %q is both a file and a directory", ErrInvalidPath, p)
		}
		nodes[cur].files[name] = h
	}

	// Children before parents.
	digests := make([]object.Hash, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		t := &object.Tree{Entries: make([]object.TreeEntry, 0, len(n.files)+len(n.children))}
		for name, h := range n.files {
			t.Entries = append(t.Entries, object.TreeEntry{Kind: object.KindBlob, Hash: h, Name: name})
		}
		for name, idx := range n.children {
			t.Entries = append(t.Entries, object.TreeEntry{Kind: object.KindTree, Hash: digests[idx], Name: name})
		}
		h, err := r.Store.WriteTree(t)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("build tree: %w", err)
		}
		digests[i] = h
	}
	return digests[0], nil
}

// splitTreePath validates a working-tree path and splits it into segments.
func splitTreePath(p string) ([]string, error) {
	if p == "" || strings.HasPrefix(p, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	segs := strings.Split(p, "/")
	for _, seg := range segs {
		if !object.ValidEntryName(seg) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return segs, nil
}

// FlattenTree reads the tree h recursively into a flat path -> blob mapping,
// with every path prefixed by base. The zero digest reads as an empty tree.
func (r *Repo) FlattenTree(h object.Hash, base string) (map[string]object.Hash, error) {
	out := make(map[string]object.Hash)
	if h.IsZero() {
		return out, nil
	}
	if err := r.flattenTreeRec(h, base, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string, out map[string]object.Hash) error {
	t, err := r.Store.ReadTree(h)
	if err != nil {
		return fmt.Errorf("flatten tree: %w", err)
	}
	for _, e := range t.Entries {
		full := e.Name
		if prefix != "" {
			full = path.Join(prefix, e.Name)
		}
		if e.Kind == object.KindTree {
			if err := r.flattenTreeRec(e.Hash, full, out); err != nil {
				return err
			}
			continue
		}
		out[full] = e.Hash
	}
	return nil
}

// WriteTree writes the index as a tree and returns its digest.
func (r *Repo) WriteTree() (object.Hash, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return object.ZeroHash, err
	}
	return r.BuildTree(idx)
}
