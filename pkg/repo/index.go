package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/odvcencio/ugit/pkg/object"
)

// Index is the staging area: working-tree path (forward slashes) to blob
// digest. It is persisted as a single JSON object at .ugit/index.
type Index map[string]object.Hash

func (r *Repo) indexPath() string {
	return filepath.Join(r.Dir, "index")
}

// ReadIndex loads the index. A missing file is an empty index.
func (r *Repo) ReadIndex() (Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(Index), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	idx := make(Index)
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("read index: unmarshal: %w", err)
	}
	return idx, nil
}

// WriteIndex atomically replaces the index file.
func (r *Repo) WriteIndex(idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("write index: marshal: %w", err)
	}
	if err := renameio.WriteFile(r.indexPath(), data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// WithIndex loads the index, lets fn modify it in place, and writes it back.
// The index is written back even when fn fails, so progress made before the
// failure is kept; both errors are returned.
func (r *Repo) WithIndex(fn func(Index) error) error {
	idx, err := r.ReadIndex()
	if err != nil {
		return err
	}
	fnErr := fn(idx)
	return errors.Join(fnErr, r.WriteIndex(idx))
}
