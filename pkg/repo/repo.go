package repo

import (
	"errors"
	"fmt"

	"github.com/odvcencio/ugit/pkg/merge"
	"github.com/odvcencio/ugit/pkg/object"
)

var (
	ErrNotRepository     = errors.New("not a ugit repository")
	ErrUnknownRevision   = errors.New("unknown revision")
	ErrAmbiguousRevision = errors.New("ambiguous revision")
	ErrInvalidValue      = errors.New("empty reference value")
	ErrInvalidRefName    = errors.New("invalid reference name")
	ErrRefCycle          = errors.New("symbolic reference cycle")
	ErrRefExists         = errors.New("reference already exists")
	ErrInvalidPath       = errors.New("invalid path")
	ErrNoHead            = errors.New("HEAD does not point at a commit")
)

// StoreDirName is the name of the store directory inside a working tree.
const StoreDirName = ".ugit"

// Repo is an opened repository: a working tree rooted at RootDir with its
// store in Dir. Every operation goes through a Repo handle, so two handles
// (local and peer) can be used side by side.
type Repo struct {
	RootDir string        // working directory root
	Dir     string        // .ugit/ directory
	Store   *object.Store // content-addressed object store
	Refs    *RefStore
	Config  *Config

	tool merge.Tool
}

// MergeTool returns the text-merge primitive configured for this repository.
func (r *Repo) MergeTool() merge.Tool {
	return r.tool
}

// SetMergeTool overrides the configured text-merge primitive.
func (r *Repo) SetMergeTool(t merge.Tool) {
	r.tool = t
}

func (r *Repo) loadTool() error {
	t, err := merge.NewTool(r.Config.Merge.Tool, r.Config.Merge.Diff3Command, r.Config.Merge.DiffCommand)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	r.tool = t
	return nil
}
