package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"
)

// Store is a content-addressed object store with a flat layout: one file per
// object at objects/<hex-digest>, containing "kind\x00payload".
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), h.String())
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	info, err := os.Stat(s.objectPath(h))
	return err == nil && info.Mode().IsRegular()
}

// Put stores data under kind and returns its digest. An object that already
// exists is left untouched, so repeated puts of identical content are no-ops.
// New objects are written to a temp file and renamed into place.
func (s *Store) Put(kind Kind, data []byte) (Hash, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return ZeroHash, fmt.Errorf("object write: %w", err)
	}
	h := HashObject(kind, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	if err := os.MkdirAll(s.objectsDir(), 0o755); err != nil {
		return ZeroHash, fmt.Errorf("object write mkdir: %w", err)
	}

	raw := make([]byte, 0, len(kind)+1+len(data))
	raw = append(raw, kind...)
	raw = append(raw, 0)
	raw = append(raw, data...)
	if err := renameio.WriteFile(s.objectPath(h), raw, 0o644); err != nil {
		return ZeroHash, fmt.Errorf("object write %s: %w", h, err)
	}
	return h, nil
}

// Get retrieves an object by hash. When expected is non-empty the stored kind
// must match it.
func (s *Store) Get(h Hash, expected Kind) (Kind, []byte, error) {
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("object read %s: %w: no kind separator", h, ErrCorruptObject)
	}
	kind, err := ParseKind(string(raw[:nul]))
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorruptObject, err)
	}
	if expected != "" && kind != expected {
		return "", nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, kind, expected)
	}
	return kind, raw[nul+1:], nil
}

// FindByPrefix returns the digests of stored objects whose hex form starts
// with prefix, sorted.
func (s *Store) FindByPrefix(prefix string) ([]Hash, error) {
	prefix = strings.ToLower(prefix)
	entries, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("find objects %q: %w", prefix, err)
	}

	var out []Hash
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		h, err := ParseHash(e.Name())
		if err != nil {
			// temp files and strays
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out, nil
}

// CopyTo copies the object h from s into dst unless dst already has it. The
// payload is re-hashed on the way in and must reproduce h.
func (s *Store) CopyTo(dst *Store, h Hash) (bool, error) {
	if dst.Has(h) {
		return false, nil
	}
	kind, data, err := s.Get(h, "")
	if err != nil {
		return false, err
	}
	written, err := dst.Put(kind, data)
	if err != nil {
		return false, err
	}
	if written != h {
		return false, fmt.Errorf("object copy %s: %w: content hashes to %s", h, ErrCorruptObject, written)
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores file content.
func (s *Store) WriteBlob(data []byte) (Hash, error) {
	return s.Put(KindBlob, data)
}

// ReadBlob reads file content.
func (s *Store) ReadBlob(h Hash) ([]byte, error) {
	_, data, err := s.Get(h, KindBlob)
	return data, err
}

// WriteTree serializes and stores a Tree.
func (s *Store) WriteTree(t *Tree) (Hash, error) {
	return s.Put(KindTree, MarshalTree(t))
}

// ReadTree reads and parses a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	_, data, err := s.Get(h, KindTree)
	if err != nil {
		return nil, err
	}
	t, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return t, nil
}

// WriteCommit serializes and stores a Commit.
func (s *Store) WriteCommit(c *Commit) (Hash, error) {
	return s.Put(KindCommit, MarshalCommit(c))
}

// ReadCommit reads and parses a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	_, data, err := s.Get(h, KindCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}
