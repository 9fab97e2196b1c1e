package repo

import (
	"container/list"
	"fmt"
	"iter"

	"github.com/odvcencio/ugit/pkg/object"
)

// Ancestors yields the seeds and every commit reachable from them through
// parent links, each once. A commit is yielded before it is read, so a
// consumer may fetch it into the store first. Traversal favors first
// parents: the first parent of a commit is visited next, the others are
// queued behind everything already pending. Zero seeds are skipped.
func (r *Repo) Ancestors(seeds ...object.Hash) iter.Seq2[object.Hash, error] {
	return func(yield func(object.Hash, error) bool) {
		queue := list.New()
		for _, s := range seeds {
			queue.PushBack(s)
		}
		visited := make(map[object.Hash]struct{})

		for queue.Len() > 0 {
			h := queue.Remove(queue.Front()).(object.Hash)
			if h.IsZero() {
				continue
			}
			if _, ok := visited[h]; ok {
				continue
			}
			visited[h] = struct{}{}
			if !yield(h, nil) {
				return
			}

			c, err := r.GetCommit(h)
			if err != nil {
				yield(object.ZeroHash, fmt.Errorf("ancestors of %s: %w", h.Short(), err))
				return
			}
			if len(c.Parents) > 0 {
				queue.PushFront(c.Parents[0])
				for _, p := range c.Parents[1:] {
					queue.PushBack(p)
				}
			}
		}
	}
}

// IsAncestor reports whether candidate is descendant or one of its
// ancestors.
func (r *Repo) IsAncestor(candidate, descendant object.Hash) (bool, error) {
	for h, err := range r.Ancestors(descendant) {
		if err != nil {
			return false, err
		}
		if h == candidate {
			return true, nil
		}
	}
	return false, nil
}

// MergeBase returns a common ancestor of a and b: the first commit reachable
// from b, in Ancestors order, that is also reachable from a. This is not
// guaranteed to be the lowest common ancestor when histories criss-cross.
// The zero digest means the histories are unrelated.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, error) {
	fromA := make(map[object.Hash]struct{})
	for h, err := range r.Ancestors(a) {
		if err != nil {
			return object.ZeroHash, fmt.Errorf("merge base: %w", err)
		}
		fromA[h] = struct{}{}
	}
	for h, err := range r.Ancestors(b) {
		if err != nil {
			return object.ZeroHash, fmt.Errorf("merge base: %w", err)
		}
		if _, ok := fromA[h]; ok {
			return h, nil
		}
	}
	return object.ZeroHash, nil
}

// ObjectsReachableFrom yields every commit reachable from the seeds, each
// followed by the tree and blob digests reachable from its tree that were
// not yielded before. Every digest is yielded once, before it is read.
func (r *Repo) ObjectsReachableFrom(seeds ...object.Hash) iter.Seq2[object.Hash, error] {
	return func(yield func(object.Hash, error) bool) {
		visited := make(map[object.Hash]struct{})
		for h, err := range r.Ancestors(seeds...) {
			if err != nil {
				yield(object.ZeroHash, err)
				return
			}
			if !yield(h, nil) {
				return
			}
			c, err := r.GetCommit(h)
			if err != nil {
				yield(object.ZeroHash, fmt.Errorf("reachable objects: %w", err))
				return
			}
			for t, err := range r.Store.WalkTree(c.Tree, visited) {
				if !yield(t, err) || err != nil {
					return
				}
			}
		}
	}
}
