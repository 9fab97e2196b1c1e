package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/ugit/pkg/object"
)

// Unstage restores index entries to their HEAD versions.
//
// Behavior:
// - If a path exists in HEAD, its index entry is reset to HEAD's blob.
// - If a path does not exist in HEAD, its index entry is removed.
// - A directory path applies to every entry below it.
// - If no paths are provided, the entire index is reset to HEAD.
//
// Unstage does not modify the working tree.
func (r *Repo) Unstage(paths ...string) error {
	headFiles, err := r.headFiles()
	if err != nil {
		return fmt.Errorf("unstage: %w", err)
	}

	return r.WithIndex(func(idx Index) error {
		targets, err := r.resolveUnstageTargets(paths, idx, headFiles)
		if err != nil {
			return fmt.Errorf("unstage: %w", err)
		}
		for _, p := range targets {
			if h, ok := headFiles[p]; ok {
				idx[p] = h
				continue
			}
			delete(idx, p)
		}
		return nil
	})
}

// headFiles flattens the tree of the HEAD commit; an unborn branch is an
// empty snapshot.
func (r *Repo) headFiles() (map[string]object.Hash, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	return r.commitFiles(head)
}

func (r *Repo) resolveUnstageTargets(paths []string, idx Index, head map[string]object.Hash) ([]string, error) {
	known := make(map[string]struct{}, len(idx)+len(head))
	for p := range idx {
		known[p] = struct{}{}
	}
	for p := range head {
		known[p] = struct{}{}
	}
	if len(paths) == 0 {
		return sortedPathSet(known), nil
	}

	selected := make(map[string]struct{})
	for _, raw := range paths {
		rel, err := r.relPath(raw)
		if err != nil {
			return nil, err
		}
		matched := false
		for p := range known {
			if rel == "" || p == rel || strings.HasPrefix(p, rel+"/") {
				selected[p] = struct{}{}
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: pathspec %q did not match any tracked file", ErrInvalidPath, raw)
		}
	}
	return sortedPathSet(selected), nil
}

func sortedPathSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
