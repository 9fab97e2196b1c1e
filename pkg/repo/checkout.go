package repo

import (
	"fmt"

	"github.com/odvcencio/ugit/pkg/object"
)

// Checkout switches to the revision name. The index and the working tree
// are replaced by the revision's tree; uncommitted changes to tracked and
// untracked (non-ignored) files are discarded. HEAD becomes a symbolic
// reference to refs/heads/<name> when name is a branch and a detached
// digest otherwise.
func (r *Repo) Checkout(name string) error {
	h, err := r.ResolveRevision(name)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	c, err := r.GetCommit(h)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.ReadTreeIntoIndex(c.Tree, true); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	head := Direct(h)
	if r.IsBranch(name) {
		head = Symbolic(BranchPrefix + name)
	}
	if err := r.Refs.Update(HeadRef, head, false); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// Reset moves HEAD (the current branch, when HEAD is symbolic) to h. The
// index and working tree are left alone.
func (r *Repo) Reset(h object.Hash) error {
	if _, err := r.GetCommit(h); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.Refs.UpdateWithReason(HeadRef, Direct(h), true, "reset: moving to "+h.String()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
