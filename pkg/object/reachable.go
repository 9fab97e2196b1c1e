package object

import (
	"fmt"
	"iter"
)

// WalkTree yields root and every tree and blob digest reachable from it,
// skipping anything already in visited and recording what it yields there.
// Each digest is yielded before it is read, so a caller copying objects from
// another store can fetch it first.
func (s *Store) WalkTree(root Hash, visited map[Hash]struct{}) iter.Seq2[Hash, error] {
	return func(yield func(Hash, error) bool) {
		if root.IsZero() {
			return
		}
		if _, ok := visited[root]; ok {
			return
		}

		visited[root] = struct{}{}
		stack := []Hash{root}
		for len(stack) > 0 {
			h := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(h, nil) {
				return
			}

			tree, err := s.ReadTree(h)
			if err != nil {
				yield(ZeroHash, fmt.Errorf("walk tree %s: %w", h, err))
				return
			}
			var subtrees []Hash
			for _, e := range tree.Entries {
				if _, ok := visited[e.Hash]; ok {
					continue
				}
				visited[e.Hash] = struct{}{}
				if e.Kind == KindTree {
					subtrees = append(subtrees, e.Hash)
					continue
				}
				if !yield(e.Hash, nil) {
					return
				}
			}
			for i := len(subtrees) - 1; i >= 0; i-- {
				stack = append(stack, subtrees[i])
			}
		}
	}
}
