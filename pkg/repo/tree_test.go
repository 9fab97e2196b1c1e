package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/object"
)

func TestBuildTreeRoundTrip(t *testing.T) {
	r := setup(t)
	files := map[string]object.Hash{}
	for _, p := range []string{"README", "src/main.go", "src/lib/a.go", "src/lib/b.go", "docs/x.md"} {
		h, err := r.Store.WriteBlob([]byte(p))
		require.NoError(t, err)
		files[p] = h
	}

	root, err := r.BuildTree(files)
	require.NoError(t, err)

	again, err := r.BuildTree(files)
	require.NoError(t, err)
	assert.Equal(t, root, again)

	flat, err := r.FlattenTree(root, "")
	require.NoError(t, err)
	assert.Equal(t, files, flat)

	prefixed, err := r.FlattenTree(root, "base")
	require.NoError(t, err)
	assert.Equal(t, files["src/lib/a.go"], prefixed["base/src/lib/a.go"])

	top, err := r.Store.ReadTree(root)
	require.NoError(t, err)
	var names []string
	for _, e := range top.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"README", "docs", "src"}, names)
}

func TestBuildTreeEmpty(t *testing.T) {
	r := setup(t)
	root, err := r.BuildTree(nil)
	require.NoError(t, err)
	assert.Equal(t, object.HashObject(object.KindTree, nil), root)

	flat, err := r.FlattenTree(root, "")
	require.NoError(t, err)
	assert.Empty(t, flat)

	flat, err = r.FlattenTree(object.ZeroHash, "")
	require.NoError(t, err)
	assert.Empty(t, flat)
}

func TestBuildTreeRejectsBadPaths(t *testing.T) {
	r := setup(t)
	h := blobHash("x")
	for _, files := range []map[string]object.Hash{
		{"a": h, "a/b": h},
		{"/abs": h},
		{"a/../b": h},
		{"a//b": h},
	} {
		_, err := r.BuildTree(files)
		assert.ErrorIs(t, err, ErrInvalidPath)
	}
}

func TestWithIndexWritesBackOnError(t *testing.T) {
	r := setup(t)
	h := blobHash("x")

	err := r.WithIndex(func(idx Index) error {
		idx["a.txt"] = h
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	idx, err := r.ReadIndex()
	require.NoError(t, err)
	assert.Equal(t, Index{"a.txt": h}, idx)
}
