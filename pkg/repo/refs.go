package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"

	"github.com/odvcencio/ugit/pkg/object"
)

// Well-known reference names and namespaces.
const (
	HeadRef      = "HEAD"
	MergeHeadRef = "MERGE_HEAD"
	BranchPrefix = "refs/heads/"
	TagPrefix    = "refs/tags/"
	RemotePrefix = "refs/remote/"
)

// maxRefDepth bounds symbolic reference chains.
const maxRefDepth = 16

const symbolicPrefix = "ref: "

// RefValue is the value of a reference: either a direct commit digest or
// the name of another reference. The zero RefValue means "absent".
type RefValue struct {
	hash     object.Hash
	target   string
	symbolic bool
}

// Direct returns a value pointing at a digest.
func Direct(h object.Hash) RefValue {
	return RefValue{hash: h}
}

// Symbolic returns a value pointing at another reference.
func Symbolic(name string) RefValue {
	return RefValue{target: name, symbolic: true}
}

func (v RefValue) IsSymbolic() bool  { return v.symbolic }
func (v RefValue) Hash() object.Hash { return v.hash }
func (v RefValue) Target() string    { return v.target }

// IsZero reports whether the value is empty: a zero digest, or a symbolic
// value with no target.
func (v RefValue) IsZero() bool {
	if v.symbolic {
		return v.target == ""
	}
	return v.hash.IsZero()
}

func (v RefValue) String() string {
	if v.symbolic {
		return symbolicPrefix + v.target
	}
	return v.hash.String()
}

// NamedRef pairs a reference name with its value.
type NamedRef struct {
	Name  string
	Value RefValue
}

// RefStore keeps references as one file per name under a store directory.
type RefStore struct {
	dir string
}

// NewRefStore returns a RefStore rooted at dir (the .ugit directory).
func NewRefStore(dir string) *RefStore {
	return &RefStore{dir: dir}
}

func (s *RefStore) refPath(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// ValidRefName reports whether name can be stored: a relative slash path
// without empty, "." or ".." segments.
func ValidRefName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.ContainsAny(name, "\\\n") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// read returns the stored value of name without following it. A missing
// file is the zero value.
func (s *RefStore) read(name string) (RefValue, error) {
	if !ValidRefName(name) {
		return RefValue{}, fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	data, err := os.ReadFile(s.refPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RefValue{}, nil
		}
		return RefValue{}, fmt.Errorf("read ref %s: %w", name, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return RefValue{}, nil
	}
	if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
		return Symbolic(strings.TrimSpace(target)), nil
	}
	h, err := object.ParseHash(content)
	if err != nil {
		return RefValue{}, fmt.Errorf("read ref %s: %w", name, err)
	}
	return Direct(h), nil
}

// resolve returns the terminal name and its stored value. Without deref the
// terminal name is name itself.
func (s *RefStore) resolve(name string, deref bool) (string, RefValue, error) {
	for range maxRefDepth {
		v, err := s.read(name)
		if err != nil {
			return "", RefValue{}, err
		}
		if !deref || !v.symbolic {
			return name, v, nil
		}
		name = v.target
	}
	return "", RefValue{}, fmt.Errorf("%w: %s", ErrRefCycle, name)
}

// Resolve returns the value of name. With deref, symbolic values are
// followed to a direct value or to absence (the zero RefValue).
func (s *RefStore) Resolve(name string, deref bool) (RefValue, error) {
	_, v, err := s.resolve(name, deref)
	return v, err
}

// Update stores value under name. With deref, a symbolic chain starting at
// name is followed and the terminal reference is written instead, so
// updating a symbolic HEAD moves the branch it points at.
func (s *RefStore) Update(name string, value RefValue, deref bool) error {
	return s.UpdateWithReason(name, value, deref, "")
}

// UpdateWithReason is Update that also records reason in the reflog of the
// terminal reference when value is direct. If the ref is written but the
// reflog append fails, a *RefUpdateReflogError is returned.
func (s *RefStore) UpdateWithReason(name string, value RefValue, deref bool, reason string) error {
	if value.IsZero() {
		return fmt.Errorf("update ref %s: %w", name, ErrInvalidValue)
	}
	if value.symbolic && !ValidRefName(value.target) {
		return fmt.Errorf("update ref %s: %w: %q", name, ErrInvalidRefName, value.target)
	}
	terminal, old, err := s.resolve(name, deref)
	if err != nil {
		return fmt.Errorf("update ref %s: %w", name, err)
	}

	p := s.refPath(terminal)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("update ref %s: mkdir: %w", terminal, err)
	}
	if err := renameio.WriteFile(p, []byte(value.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("update ref %s: %w", terminal, err)
	}

	if value.symbolic || terminal == MergeHeadRef {
		return nil
	}
	if err := s.appendReflog(terminal, old.hash, value.hash, reason); err != nil {
		return &RefUpdateReflogError{Ref: terminal, OldHash: old.hash, NewHash: value.hash, Err: err}
	}
	return nil
}

// Delete removes name (or, with deref, the terminal reference of its
// chain). Deleting an absent reference is a no-op.
func (s *RefStore) Delete(name string, deref bool) error {
	terminal, _, err := s.resolve(name, deref)
	if err != nil {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	if err := os.Remove(s.refPath(terminal)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete ref %s: %w", terminal, err)
	}
	return nil
}

// All yields HEAD, MERGE_HEAD and every reference under refs/ whose name
// starts with prefix, skipping empty values. The set of names is taken
// before the first yield; values are read as they are yielded.
func (s *RefStore) All(prefix string, deref bool) iter.Seq2[NamedRef, error] {
	return func(yield func(NamedRef, error) bool) {
		names, err := s.names()
		if err != nil {
			yield(NamedRef{}, err)
			return
		}
		for _, name := range names {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			v, err := s.Resolve(name, deref)
			if err != nil {
				yield(NamedRef{Name: name}, err)
				return
			}
			if v.IsZero() {
				continue
			}
			if !yield(NamedRef{Name: name, Value: v}, nil) {
				return
			}
		}
	}
}

// names lists HEAD, MERGE_HEAD and the files under refs/, sorted after the
// two special names.
func (s *RefStore) names() ([]string, error) {
	var refs []string
	root := filepath.Join(s.dir, "refs")
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		// renameio temp files are dot-prefixed.
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		refs = append(refs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	sort.Strings(refs)
	return append([]string{HeadRef, MergeHeadRef}, refs...), nil
}

// ShortRefName strips the refs/heads/, refs/tags/ or refs/remote/ prefix
// for display.
func ShortRefName(name string) string {
	for _, prefix := range []string{BranchPrefix, TagPrefix, RemotePrefix} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return rest
		}
	}
	return name
}
