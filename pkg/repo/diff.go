package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/ugit/pkg/object"
)

// Diff renders the changes between two flattened snapshots as concatenated
// unified diffs, one per changed path in path order, labelled a/<path> and
// b/<path>. Blobs missing from the store are read from the working tree,
// so a snapshot from ScanWorkingTree can be compared without storing it.
func (r *Repo) Diff(ctx context.Context, from, to map[string]object.Hash) ([]byte, error) {
	var buf bytes.Buffer
	for _, ch := range ChangedFiles(from, to) {
		a, err := r.snapshotContent(ch.Path, from[ch.Path])
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		b, err := r.snapshotContent(ch.Path, to[ch.Path])
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		out, err := r.tool.Diff(ctx, a, b, "a/"+ch.Path, "b/"+ch.Path)
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", ch.Path, err)
		}
		buf.Write(out)
	}
	return buf.Bytes(), nil
}

// snapshotContent returns the content of blob h at path. The zero digest is
// empty content.
func (r *Repo) snapshotContent(path string, h object.Hash) ([]byte, error) {
	if h.IsZero() {
		return nil, nil
	}
	if r.Store.Has(h) {
		return r.Store.ReadBlob(h)
	}
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, object.ErrNotFound)
	}
	if object.HashObject(object.KindBlob, data) != h {
		return nil, fmt.Errorf("%s changed while diffing: %w", path, object.ErrNotFound)
	}
	return data, nil
}

// CommitDiff renders the changes introduced by commit h against its first
// parent (or against the empty tree for a root commit).
func (r *Repo) CommitDiff(ctx context.Context, h object.Hash) ([]byte, error) {
	c, err := r.GetCommit(h)
	if err != nil {
		return nil, err
	}
	var parent object.Hash
	if len(c.Parents) > 0 {
		parent = c.Parents[0]
	}
	from, err := r.commitFiles(parent)
	if err != nil {
		return nil, err
	}
	to, err := r.FlattenTree(c.Tree, "")
	if err != nil {
		return nil, err
	}
	return r.Diff(ctx, from, to)
}
