package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/object"
)

func TestResetMovesBranchOnly(t *testing.T) {
	r := setup(t)
	c1 := commitAll(t, r, "one", map[string]string{"a.txt": "1\n"})
	commitAll(t, r, "two", map[string]string{"a.txt": "2\n"})

	require.NoError(t, r.Reset(c1))

	branch, err := r.Refs.Resolve("refs/heads/master", false)
	require.NoError(t, err)
	assert.Equal(t, c1, branch.Hash())
	head, err := r.Refs.Resolve(HeadRef, false)
	require.NoError(t, err)
	assert.True(t, head.IsSymbolic())

	assert.Equal(t, "2\n", readFile(t, r, "a.txt"))
	idx, err := r.ReadIndex()
	require.NoError(t, err)
	assert.Equal(t, blobHash("2\n"), idx["a.txt"])

	entries, err := r.Refs.Reflog(HeadRef, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "reset: moving to "+c1.String(), entries[0].Reason)
}

func TestResetRejectsNonCommit(t *testing.T) {
	r := setup(t)
	commitAll(t, r, "one", map[string]string{"a.txt": "1\n"})
	assert.ErrorIs(t, r.Reset(blobHash("1\n")), object.ErrTypeMismatch)
	assert.ErrorIs(t, r.Reset(blobHash("absent")), object.ErrNotFound)
}

func TestUnstage(t *testing.T) {
	r := setup(t)
	commitAll(t, r, "one", map[string]string{"a.txt": "1\n", "dir/x.txt": "x\n"})

	writeFile(t, r, "a.txt", "2\n")
	writeFile(t, r, "b.txt", "b\n")
	writeFile(t, r, "dir/x.txt", "x2\n")
	require.NoError(t, r.Add("a.txt", "b.txt", "dir"))

	require.NoError(t, r.Unstage("b.txt"))
	idx, err := r.ReadIndex()
	require.NoError(t, err)
	assert.NotContains(t, idx, "b.txt")
	assert.Equal(t, blobHash("2\n"), idx["a.txt"])

	require.NoError(t, r.Unstage("dir"))
	idx, err = r.ReadIndex()
	require.NoError(t, err)
	assert.Equal(t, blobHash("x\n"), idx["dir/x.txt"])

	require.NoError(t, r.Unstage())
	idx, err = r.ReadIndex()
	require.NoError(t, err)
	assert.Equal(t, Index{"a.txt": blobHash("1\n"), "dir/x.txt": blobHash("x\n")}, idx)

	// The working tree is untouched.
	assert.Equal(t, "2\n", readFile(t, r, "a.txt"))
	assert.ErrorIs(t, r.Unstage("nope.txt"), ErrInvalidPath)
}

func TestUnstageUnbornBranch(t *testing.T) {
	r := setup(t)
	writeFile(t, r, "a.txt", "a\n")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, r.Unstage())
	idx, err := r.ReadIndex()
	require.NoError(t, err)
	assert.Empty(t, idx)
}
