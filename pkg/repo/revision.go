package repo

import (
	"fmt"

	"github.com/odvcencio/ugit/pkg/object"
)

const (
	minPrefixLen = 4
	headAlias    = "@"
)

// ResolveRevision turns a user-supplied name into a digest. "@" means HEAD.
// The name is tried as a reference in this order: literally, under refs/,
// refs/tags/ and refs/heads/. A full 64-character hex digest is taken as is,
// and a shorter hex string resolves when it is the unique prefix of a stored
// object.
func (r *Repo) ResolveRevision(name string) (object.Hash, error) {
	if name == "" {
		return object.ZeroHash, fmt.Errorf("resolve %q: %w", name, ErrUnknownRevision)
	}
	if name == headAlias {
		name = HeadRef
	}

	for _, candidate := range []string{name, "refs/" + name, TagPrefix + name, BranchPrefix + name} {
		if !ValidRefName(candidate) {
			continue
		}
		stored, err := r.Refs.Resolve(candidate, false)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("resolve %q: %w", name, err)
		}
		if stored.IsZero() {
			continue
		}
		v, err := r.Refs.Resolve(candidate, true)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("resolve %q: %w", name, err)
		}
		if v.IsZero() {
			// e.g. HEAD on a branch with no commits yet
			return object.ZeroHash, fmt.Errorf("resolve %q: %w: %s has no commits", name, ErrUnknownRevision, stored.Target())
		}
		return v.Hash(), nil
	}

	if len(name) == 2*object.HashSize && object.IsHex(name) {
		return object.ParseHash(name)
	}

	if len(name) >= minPrefixLen && object.IsHex(name) {
		matches, err := r.Store.FindByPrefix(name)
		if err != nil {
			return object.ZeroHash, fmt.Errorf("resolve %q: %w", name, err)
		}
		switch len(matches) {
		case 0:
		case 1:
			return matches[0], nil
		default:
			return object.ZeroHash, fmt.Errorf("resolve %q: %w: %d objects match", name, ErrAmbiguousRevision, len(matches))
		}
	}

	return object.ZeroHash, fmt.Errorf("resolve %q: %w", name, ErrUnknownRevision)
}
