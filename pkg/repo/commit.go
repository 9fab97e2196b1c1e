package repo

import (
	"fmt"
	"iter"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/object"
)

// Commit records the index as a new commit and advances HEAD to it.
//
//  1. Write the index as a tree.
//  2. Parents are HEAD (if it resolves) followed by MERGE_HEAD (if set).
//  3. Write the commit object.
//  4. Advance HEAD through symbolic indirection, so the current branch moves.
//  5. Remove MERGE_HEAD, which concludes a pending merge.
func (r *Repo) Commit(message string) (object.Hash, error) {
	tree, err := r.WriteTree()
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}

	c := &object.Commit{Tree: tree, Message: message}
	for _, name := range []string{HeadRef, MergeHeadRef} {
		v, err := r.Refs.Resolve(name, true)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("commit: %w", err)
		}
		if !v.IsZero() {
			c.Parents = append(c.Parents, v.Hash())
		}
	}

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	if err := r.Refs.UpdateWithReason(HeadRef, Direct(h), true, "commit: "+firstLine(message)); err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	if err := r.Refs.Delete(MergeHeadRef, false); err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}

	log.WithFields(log.Fields{"commit": h.Short(), "parents": len(c.Parents)}).Debug("committed")
	return h, nil
}

// GetCommit reads and parses the commit h.
func (r *Repo) GetCommit(h object.Hash) (*object.Commit, error) {
	return r.Store.ReadCommit(h)
}

// HeadCommit returns the digest HEAD resolves to, or the zero digest when
// the current branch has no commits yet.
func (r *Repo) HeadCommit() (object.Hash, error) {
	v, err := r.Refs.Resolve(HeadRef, true)
	if err != nil {
		return object.ZeroHash, err
	}
	return v.Hash(), nil
}

// LogEntry is one commit yielded by Log.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// Log yields the commits reachable from start in Ancestors order.
func (r *Repo) Log(start object.Hash) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		for h, err := range r.Ancestors(start) {
			if err != nil {
				yield(LogEntry{}, err)
				return
			}
			c, err := r.GetCommit(h)
			if err != nil {
				yield(LogEntry{Hash: h}, err)
				return
			}
			if !yield(LogEntry{Hash: h, Commit: c}, nil) {
				return
			}
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
