package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/ugit/pkg/object"
)

// validateShortName checks a branch or tag name: non-empty, no "..",
// no leading '-', no leading or trailing '/', and no whitespace.
func validateShortName(kind, name string) error {
	switch {
	case name == "",
		strings.Contains(name, ".."),
		strings.HasPrefix(name, "-"),
		strings.HasPrefix(name, "/"),
		strings.HasSuffix(name, "/"),
		strings.ContainsAny(name, " \t\n\r"),
		!ValidRefName(name):
		return fmt.Errorf("%w: %s name %q", ErrInvalidRefName, kind, name)
	}
	return nil
}

// createRef writes a new reference under prefix, refusing to overwrite.
func (r *Repo) createRef(kind, prefix, name string, target object.Hash) error {
	name = strings.TrimSpace(name)
	if err := validateShortName(kind, name); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	refName := prefix + name
	existing, err := r.Refs.Resolve(refName, false)
	if err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	if !existing.IsZero() {
		return fmt.Errorf("create %s %q: %w", kind, name, ErrRefExists)
	}
	if err := r.Refs.UpdateWithReason(refName, Direct(target), false, "create "+kind); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// CreateBranch creates refs/heads/<name> pointing at target.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	return r.createRef("branch", BranchPrefix, name, target)
}

// DeleteBranch removes refs/heads/<name>. The current branch cannot be
// deleted.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}
	if !r.IsBranch(name) {
		return fmt.Errorf("delete branch %q: %w", name, ErrUnknownRevision)
	}
	return r.Refs.Delete(BranchPrefix+name, false)
}

// IsBranch reports whether refs/heads/<name> holds a value.
func (r *Repo) IsBranch(name string) bool {
	if !ValidRefName(BranchPrefix + name) {
		return false
	}
	v, err := r.Refs.Resolve(BranchPrefix+name, false)
	return err == nil && !v.IsZero()
}

// BranchNames returns the branch names, sorted.
func (r *Repo) BranchNames() ([]string, error) {
	return r.shortNames(BranchPrefix)
}

// CurrentBranch returns the branch HEAD points at, or "" when HEAD is
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Refs.Resolve(HeadRef, false)
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if !head.IsSymbolic() {
		return "", nil
	}
	return strings.TrimPrefix(head.Target(), BranchPrefix), nil
}

func (r *Repo) shortNames(prefix string) ([]string, error) {
	var names []string
	for ref, err := range r.Refs.All(prefix, false) {
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimPrefix(ref.Name, prefix))
	}
	return names, nil
}
