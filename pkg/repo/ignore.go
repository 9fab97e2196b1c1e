package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the optional per-repository ignore file at the root of
// the working tree.
const IgnoreFileName = ".ugitignore"

// IgnoreChecker determines if a path should be ignored. The store directory
// is always ignored; the remaining rules come from config and .ugitignore,
// with gitignore pattern semantics.
type IgnoreChecker struct {
	matcher *gitignore.GitIgnore
}

// NewIgnoreChecker compiles patterns plus the .ugitignore file in root, if
// there is one.
func NewIgnoreChecker(root string, patterns []string) (*IgnoreChecker, error) {
	ignoreFile := filepath.Join(root, IgnoreFileName)
	_, err := os.Stat(ignoreFile)
	switch {
	case err == nil:
		m, err := gitignore.CompileIgnoreFileAndLines(ignoreFile, patterns...)
		if err != nil {
			return nil, fmt.Errorf("ignore rules: %w", err)
		}
		return &IgnoreChecker{matcher: m}, nil
	case errors.Is(err, fs.ErrNotExist):
		return &IgnoreChecker{matcher: gitignore.CompileIgnoreLines(patterns...)}, nil
	default:
		return nil, fmt.Errorf("ignore rules: %w", err)
	}
}

// IsIgnored reports whether the slash-separated path, relative to the
// working tree root, is ignored. A store directory is ignored at any depth,
// so nested repositories are never scanned or emptied. Directories are
// matched with a trailing slash so that directory-only patterns apply to
// them.
func (ic *IgnoreChecker) IsIgnored(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	if slices.Contains(strings.Split(path, "/"), StoreDirName) {
		return true
	}
	if ic == nil || ic.matcher == nil {
		return false
	}
	if isDir && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return ic.matcher.MatchesPath(path)
}

func (r *Repo) ignoreChecker() (*IgnoreChecker, error) {
	return NewIgnoreChecker(r.RootDir, r.Config.Core.Ignore)
}
