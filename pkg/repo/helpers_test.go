package repo

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/object"
)

func setup(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	p := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func readFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func fileExists(r *Repo, rel string) bool {
	_, err := os.Stat(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	return err == nil
}

// commitAll writes files into the working tree, stages them and commits.
func commitAll(t *testing.T, r *Repo, msg string, files map[string]string) object.Hash {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p, content := range files {
		writeFile(t, r, p, content)
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if len(paths) > 0 {
		require.NoError(t, r.Add(paths...))
	}
	h, err := r.Commit(msg)
	require.NoError(t, err)
	return h
}

func blobHash(s string) object.Hash {
	return object.HashObject(object.KindBlob, []byte(s))
}
