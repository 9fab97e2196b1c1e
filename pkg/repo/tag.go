package repo

import (
	"fmt"

	"github.com/odvcencio/ugit/pkg/object"
)

// CreateTag creates refs/tags/<name> pointing at target.
func (r *Repo) CreateTag(name string, target object.Hash) error {
	return r.createRef("tag", TagPrefix, name, target)
}

// DeleteTag removes refs/tags/<name>.
func (r *Repo) DeleteTag(name string) error {
	v, err := r.Refs.Resolve(TagPrefix+name, false)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if v.IsZero() {
		return fmt.Errorf("delete tag %q: %w", name, ErrUnknownRevision)
	}
	return r.Refs.Delete(TagPrefix+name, false)
}

// TagNames returns the tag names, sorted.
func (r *Repo) TagNames() ([]string, error) {
	return r.shortNames(TagPrefix)
}
