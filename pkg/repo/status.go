package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/ugit/pkg/object"
)

// ChangeAction describes how a path differs between two snapshots.
type ChangeAction string

const (
	ActionNew      ChangeAction = "new file"
	ActionDeleted  ChangeAction = "deleted"
	ActionModified ChangeAction = "modified"
)

// FileChange is one differing path between two snapshots.
type FileChange struct {
	Path   string
	Action ChangeAction
}

// ChangedFiles compares two flattened snapshots and returns the differing
// paths sorted by name.
func ChangedFiles(from, to map[string]object.Hash) []FileChange {
	var out []FileChange
	for p, h := range to {
		old, ok := from[p]
		switch {
		case !ok:
			out = append(out, FileChange{Path: p, Action: ActionNew})
		case old != h:
			out = append(out, FileChange{Path: p, Action: ActionModified})
		}
	}
	for p := range from {
		if _, ok := to[p]; !ok {
			out = append(out, FileChange{Path: p, Action: ActionDeleted})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// StatusReport is the state of the repository relative to HEAD.
type StatusReport struct {
	Branch    string      // current branch, empty when detached
	Head      object.Hash // zero on an unborn branch
	MergeHead object.Hash // zero unless a merge is in progress
	Staged    []FileChange
	Unstaged  []FileChange
}

// Status compares HEAD against the index (staged changes) and the index
// against the working tree (unstaged changes).
func (r *Repo) Status() (*StatusReport, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	head, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	mergeHead, err := r.Refs.Resolve(MergeHeadRef, true)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	headFiles, err := r.commitFiles(head)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, err := r.ScanWorkingTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	return &StatusReport{
		Branch:    branch,
		Head:      head,
		MergeHead: mergeHead.Hash(),
		Staged:    ChangedFiles(headFiles, idx),
		Unstaged:  ChangedFiles(idx, work),
	}, nil
}
