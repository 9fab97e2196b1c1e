package repo

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/merge"
	"github.com/odvcencio/ugit/pkg/object"
)

// MergeResult describes what Merge did.
type MergeResult struct {
	Incoming    object.Hash
	Base        object.Hash   // zero when the histories share no commit
	FastForward bool          // HEAD moved to Incoming; nothing to commit
	Report      *merge.Report // per-path outcome of a true merge
}

// Merge merges the commit incoming into HEAD.
//
// When HEAD is the merge base, incoming is strictly ahead and HEAD is moved
// to it with the index and working tree replaced by its tree. Otherwise the
// trees of the merge base (empty when there is none), HEAD and incoming are
// merged path by path, MERGE_HEAD is set to incoming, and the result is
// staged and checked out. The caller finishes a true merge with Commit,
// which records both parents. Conflicting paths are staged with conflict
// markers in their content.
func (r *Repo) Merge(ctx context.Context, incoming object.Hash) (*MergeResult, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if head.IsZero() {
		return nil, fmt.Errorf("merge: %w", ErrNoHead)
	}

	base, err := r.MergeBase(incoming, head)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	res := &MergeResult{Incoming: incoming, Base: base}
	logger := log.WithFields(log.Fields{"head": head.Short(), "incoming": incoming.Short(), "base": base.Short()})

	if base == head {
		c, err := r.GetCommit(incoming)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.ReadTreeIntoIndex(c.Tree, true); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.Refs.UpdateWithReason(HeadRef, Direct(incoming), true, "merge: fast-forward"); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		logger.Debug("fast-forward merge")
		res.FastForward = true
		return res, nil
	}

	baseFiles, err := r.commitFiles(base)
	if err != nil {
		return nil, fmt.Errorf("merge: base: %w", err)
	}
	oursFiles, err := r.commitFiles(head)
	if err != nil {
		return nil, fmt.Errorf("merge: HEAD: %w", err)
	}
	theirsFiles, err := r.commitFiles(incoming)
	if err != nil {
		return nil, fmt.Errorf("merge: incoming: %w", err)
	}

	merged, report, err := merge.Trees(ctx, r.Store, r.tool, baseFiles, oursFiles, theirsFiles)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	// A failed tree merge must not leave MERGE_HEAD behind for Commit.
	if err := r.Refs.Update(MergeHeadRef, Direct(incoming), false); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	err = r.WithIndex(func(idx Index) error {
		clear(idx)
		for p, h := range merged {
			idx[p] = h
		}
		return r.checkoutWorkingTree(idx)
	})
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	logger.WithField("conflicts", report.Conflicts).Debug("three-way merge staged")
	res.Report = report
	return res, nil
}

// commitFiles flattens the tree of commit h; the zero digest is an empty
// snapshot.
func (r *Repo) commitFiles(h object.Hash) (map[string]object.Hash, error) {
	if h.IsZero() {
		return map[string]object.Hash{}, nil
	}
	c, err := r.GetCommit(h)
	if err != nil {
		return nil, err
	}
	return r.FlattenTree(c.Tree, "")
}
