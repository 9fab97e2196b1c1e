package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/object"
)

// Init creates the store directory under path, or reuses an existing one.
// A default config is written if none exists, and HEAD is pointed at the
// default branch unless HEAD is already set.
func Init(path string) (*Repo, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	dir := filepath.Join(root, StoreDirName)

	for _, d := range []string{
		filepath.Join(dir, "objects"),
		filepath.Join(dir, "refs", "heads"),
		filepath.Join(dir, "refs", "tags"),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	if _, err := os.Stat(configPath(dir)); errors.Is(err, fs.ErrNotExist) {
		if err := WriteConfig(dir, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}

	r, err := open(root)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	head, err := r.Refs.Resolve(HeadRef, false)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if head.IsZero() {
		branch := BranchPrefix + r.Config.Core.DefaultBranch
		if err := r.Refs.Update(HeadRef, Symbolic(branch), false); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}
	log.WithField("dir", dir).Debug("initialized repository")
	return r, nil
}

// Open opens the repository whose working tree is exactly path.
func Open(path string) (*Repo, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}
	if !isStoreDir(filepath.Join(root, StoreDirName)) {
		return nil, fmt.Errorf("open %s: %w", root, ErrNotRepository)
	}
	return open(root)
}

// Discover searches upward from path for a directory containing .ugit/ and
// opens it.
func Discover(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		if isStoreDir(filepath.Join(cur, StoreDirName)) {
			return open(cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s (or any parent): %w", abs, ErrNotRepository)
		}
		cur = parent
	}
}

func isStoreDir(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func open(root string) (*Repo, error) {
	dir := filepath.Join(root, StoreDirName)
	cfg, err := ReadConfig(dir)
	if err != nil {
		return nil, err
	}
	r := &Repo{
		RootDir: root,
		Dir:     dir,
		Store:   object.NewStore(dir),
		Refs:    NewRefStore(dir),
		Config:  cfg,
	}
	if err := r.loadTool(); err != nil {
		return nil, err
	}
	return r, nil
}
