package remote

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/object"
	"github.com/odvcencio/ugit/pkg/repo"
)

func newRepo(t *testing.T) *repo.Repo {
	t.Helper()
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	return r
}

func commitAll(t *testing.T, r *repo.Repo, msg string, files map[string]string) object.Hash {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p, content := range files {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
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

func refHash(t *testing.T, r *repo.Repo, name string) object.Hash {
	t.Helper()
	v, err := r.Refs.Resolve(name, true)
	require.NoError(t, err)
	return v.Hash()
}

func closure(t *testing.T, r *repo.Repo, tips ...object.Hash) []object.Hash {
	t.Helper()
	var out []object.Hash
	for h, err := range r.ObjectsReachableFrom(tips...) {
		require.NoError(t, err)
		out = append(out, h)
	}
	return out
}
