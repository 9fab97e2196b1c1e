package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/ugit/pkg/object"
)

// ScanWorkingTree hashes every non-ignored regular file in the working tree
// as a blob, without storing anything, and returns path -> digest.
func (r *Repo) ScanWorkingTree() (map[string]object.Hash, error) {
	ic, err := r.ignoreChecker()
	if err != nil {
		return nil, err
	}
	paths, err := r.listFiles(ic, r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("scan working tree: %w", err)
	}

	var (
		mu  sync.Mutex
		out = make(map[string]object.Hash, len(paths))
		g   errgroup.Group
	)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rel := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("scan working tree: %w", err)
			}
			h := object.HashObject(object.KindBlob, data)
			mu.Lock()
			out[rel] = h
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// listFiles returns the slash-relative paths of non-ignored regular files
// under dir, skipping ignored directories entirely.
func (r *Repo) listFiles(ic *IgnoreChecker, dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if ic.IsIgnored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ic.IsIgnored(rel, false) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

// Add stores the given files as blobs and stages them. Directories are added
// recursively. Ignored paths are skipped; a path that does not exist is an
// error.
func (r *Repo) Add(paths ...string) error {
	ic, err := r.ignoreChecker()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return r.WithIndex(func(idx Index) error {
		for _, p := range paths {
			rel, err := r.relPath(p)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}

			var files []string
			switch {
			case info.IsDir():
				if rel != "" && ic.IsIgnored(rel, true) {
					continue
				}
				files, err = r.listFiles(ic, abs)
				if err != nil {
					return fmt.Errorf("add %s: %w", p, err)
				}
			case ic.IsIgnored(rel, false):
				log.WithField("path", rel).Debug("add: skipping ignored path")
				continue
			default:
				files = []string{rel}
			}

			for _, f := range files {
				data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(f)))
				if err != nil {
					return fmt.Errorf("add: %w", err)
				}
				h, err := r.Store.WriteBlob(data)
				if err != nil {
					return fmt.Errorf("add %s: %w", f, err)
				}
				idx[f] = h
			}
		}
		return nil
	})
}

// relPath maps a user-supplied path to a slash path relative to the working
// tree root. Relative paths are taken relative to the process working
// directory when that lies inside the working tree, and relative to the root
// otherwise. The root itself maps to "".
func (r *Repo) relPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		abs = filepath.Join(r.RootDir, p)
		if cwd, err := os.Getwd(); err == nil && isWithin(r.RootDir, cwd) {
			abs = filepath.Join(cwd, p)
		}
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil || !isWithin(r.RootDir, abs) {
		return "", fmt.Errorf("%w: %q is outside the working tree", ErrInvalidPath, p)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func isWithin(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ReadTreeIntoIndex replaces the index with the contents of tree h and, when
// updateWorking is set, checks those contents out into the working tree.
func (r *Repo) ReadTreeIntoIndex(h object.Hash, updateWorking bool) error {
	return r.WithIndex(func(idx Index) error {
		files, err := r.FlattenTree(h, "")
		if err != nil {
			return fmt.Errorf("read tree: %w", err)
		}
		clear(idx)
		for p, blob := range files {
			idx[p] = blob
		}
		if updateWorking {
			return r.checkoutWorkingTree(idx)
		}
		return nil
	})
}

// checkoutWorkingTree makes the working tree match idx: every non-ignored
// file is removed, then every non-ignored directory left empty, then each
// index entry is written out.
func (r *Repo) checkoutWorkingTree(idx Index) error {
	if err := r.emptyWorkingTree(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	paths := make([]string, 0, len(idx))
	for p := range idx {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		data, err := r.Store.ReadBlob(idx[p])
		if err != nil {
			return fmt.Errorf("checkout %s: %w", p, err)
		}
		abs := filepath.Join(r.RootDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("checkout %s: %w", p, err)
		}
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return fmt.Errorf("checkout %s: %w", p, err)
		}
	}
	log.WithField("files", len(paths)).Debug("checked out working tree")
	return nil
}

func (r *Repo) emptyWorkingTree() error {
	ic, err := r.ignoreChecker()
	if err != nil {
		return err
	}

	var dirs []string
	err = filepath.WalkDir(r.RootDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if ic.IsIgnored(rel, true) {
				return filepath.SkipDir
			}
			dirs = append(dirs, p)
			return nil
		}
		// The root ignore file stays so the same rules apply after checkout.
		if rel == IgnoreFileName || ic.IsIgnored(rel, false) {
			return nil
		}
		return os.Remove(p)
	})
	if err != nil {
		return err
	}

	// Deepest first. A directory still holding ignored files stays.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, d := range dirs {
		if err := os.Remove(d); err != nil && !errors.Is(err, fs.ErrNotExist) && !isDirNotEmpty(d) {
			return err
		}
	}
	return nil
}

func isDirNotEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
