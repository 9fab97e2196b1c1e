// Package remote synchronizes objects and references between two
// repositories on the same filesystem, and moves history through bundle
// files.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/object"
	"github.com/odvcencio/ugit/pkg/repo"
)

// ErrNonFastForward is returned by Push when the peer's reference is not an
// ancestor of the value being pushed.
var ErrNonFastForward = errors.New("non-fast-forward update rejected")

// RefUpdate records a reference that was moved.
type RefUpdate struct {
	Name string
	Old  object.Hash // zero when the reference was created
	New  object.Hash
}

// FetchResult summarizes a Fetch or a bundle import.
type FetchResult struct {
	Objects int         // objects copied into the local store
	Refs    []RefUpdate // tracking refs that changed, sorted by name
}

// PushResult summarizes a Push.
type PushResult struct {
	Ref     string
	Old     object.Hash // peer value before the push, zero if absent
	New     object.Hash
	Objects int // objects copied into the peer store
}

// UpToDate reports whether the push had nothing to do.
func (p *PushResult) UpToDate() bool { return p.Old == p.New }

// Fetch copies every branch of the repository at remotePath into local. All
// objects reachable from the peer's branches that local lacks are copied,
// then refs/remote/<branch> is set to each peer branch value.
func Fetch(ctx context.Context, local *repo.Repo, remotePath string) (*FetchResult, error) {
	peer, err := repo.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	logger := log.WithField("remote", peer.RootDir)

	branches, err := branchValues(peer)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	tips := make([]object.Hash, 0, len(branches))
	for _, b := range branches {
		tips = append(tips, b.Value.Hash())
	}

	n, err := copyClosure(ctx, peer, local.Store, tips, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	res := &FetchResult{Objects: n}

	for _, b := range branches {
		name := repo.RemotePrefix + strings.TrimPrefix(b.Name, repo.BranchPrefix)
		upd, changed, err := setTrackingRef(local, name, b.Value.Hash(), "fetch: "+peer.RootDir)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		if changed {
			res.Refs = append(res.Refs, upd)
		}
	}
	logger.WithFields(log.Fields{"objects": res.Objects, "refs": len(res.Refs)}).Debug("fetch complete")
	return res, nil
}

// Push sends the local reference refName (a full name such as
// refs/heads/master) to the repository at remotePath.
//
// The push is accepted when the peer lacks refName or its value is an
// ancestor of the local value; otherwise ErrNonFastForward is returned and
// the peer is left untouched. Only objects outside the closure of the peer's
// existing references are copied, then the peer reference is moved.
func Push(ctx context.Context, local *repo.Repo, remotePath, refName string) (*PushResult, error) {
	peer, err := repo.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	localVal, err := local.Refs.Resolve(refName, true)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", refName, err)
	}
	if localVal.IsZero() {
		return nil, fmt.Errorf("push %s: %w", refName, repo.ErrUnknownRevision)
	}
	peerVal, err := peer.Refs.Resolve(refName, true)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", refName, err)
	}

	res := &PushResult{Ref: refName, Old: peerVal.Hash(), New: localVal.Hash()}
	logger := log.WithFields(log.Fields{"remote": peer.RootDir, "ref": refName})

	if !peerVal.IsZero() && res.Old != res.New {
		ok, err := local.IsAncestor(res.Old, res.New)
		if err != nil {
			return nil, fmt.Errorf("push %s: %w", refName, err)
		}
		if !ok {
			return nil, fmt.Errorf("push %s: %w: remote is at %s", refName, ErrNonFastForward, res.Old.Short())
		}
	}

	known, err := peerClosure(ctx, peer)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", refName, err)
	}
	res.Objects, err = copyClosure(ctx, local, peer.Store, []object.Hash{res.New}, known)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", refName, err)
	}

	if !res.UpToDate() {
		err = peer.Refs.UpdateWithReason(refName, repo.Direct(res.New), true, "push: from "+local.RootDir)
		if err != nil {
			return nil, fmt.Errorf("push %s: %w", refName, err)
		}
	}
	logger.WithFields(log.Fields{"objects": res.Objects, "old": res.Old.Short(), "new": res.New.Short()}).Debug("push complete")
	return res, nil
}

// branchValues lists the branches of r with their dereferenced values.
func branchValues(r *repo.Repo) ([]repo.NamedRef, error) {
	var out []repo.NamedRef
	for ref, err := range r.Refs.All(repo.BranchPrefix, true) {
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// peerClosure returns every object reachable from any reference of r, read
// from r's own store.
func peerClosure(ctx context.Context, r *repo.Repo) (map[object.Hash]struct{}, error) {
	var tips []object.Hash
	for ref, err := range r.Refs.All("", true) {
		if err != nil {
			return nil, err
		}
		tips = append(tips, ref.Value.Hash())
	}
	known := make(map[object.Hash]struct{})
	for h, err := range r.ObjectsReachableFrom(tips...) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		known[h] = struct{}{}
	}
	return known, nil
}

// copyClosure copies the objects reachable from tips in src into dst,
// skipping those in skip and those dst already has. Objects are copied as
// the traversal reaches them, so src's graph is always read from src.
func copyClosure(ctx context.Context, src *repo.Repo, dst *object.Store, tips []object.Hash, skip map[object.Hash]struct{}) (int, error) {
	copied := 0
	for h, err := range src.ObjectsReachableFrom(tips...) {
		if err != nil {
			return copied, err
		}
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		if _, ok := skip[h]; ok {
			continue
		}
		wrote, err := src.Store.CopyTo(dst, h)
		if err != nil {
			return copied, err
		}
		if wrote {
			copied++
		}
	}
	return copied, nil
}

// setTrackingRef points name at h without following symbolic values and
// reports whether anything changed.
func setTrackingRef(r *repo.Repo, name string, h object.Hash, reason string) (RefUpdate, bool, error) {
	old, err := r.Refs.Resolve(name, false)
	if err != nil {
		return RefUpdate{}, false, err
	}
	upd := RefUpdate{Name: name, Old: old.Hash(), New: h}
	if !old.IsSymbolic() && old.Hash() == h {
		return upd, false, nil
	}
	if err := r.Refs.UpdateWithReason(name, repo.Direct(h), false, reason); err != nil {
		return upd, false, err
	}
	return upd, true, nil
}
