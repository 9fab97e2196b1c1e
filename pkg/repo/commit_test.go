package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/object"
)

func TestCommitFirstHasNoParents(t *testing.T) {
	r := setup(t)
	h := commitAll(t, r, "initial", map[string]string{"a.txt": "a\n", "d/b.txt": "b\n"})

	c, err := r.GetCommit(h)
	require.NoError(t, err)
	assert.Empty(t, c.Parents)
	assert.Equal(t, "initial", c.Message)

	files, err := r.FlattenTree(c.Tree, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]object.Hash{"a.txt": blobHash("a\n"), "d/b.txt": blobHash("b\n")}, files)

	head, err := r.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, h, head)
	branch, err := r.Refs.Resolve("refs/heads/master", false)
	require.NoError(t, err)
	assert.Equal(t, h, branch.Hash())
}

func TestCommitChainsParents(t *testing.T) {
	r := setup(t)
	c1 := commitAll(t, r, "one", map[string]string{"a.txt": "1\n"})
	c2 := commitAll(t, r, "two", map[string]string{"a.txt": "2\n"})

	c, err := r.GetCommit(c2)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c1}, c.Parents)
}

func TestCommitEmptyIndex(t *testing.T) {
	r := setup(t)
	h, err := r.Commit("nothing")
	require.NoError(t, err)
	c, err := r.GetCommit(h)
	require.NoError(t, err)
	assert.Equal(t, object.HashObject(object.KindTree, nil), c.Tree)
}

func TestCommitDetachedHead(t *testing.T) {
	r := setup(t)
	c1 := commitAll(t, r, "one", map[string]string{"a.txt": "1\n"})
	require.NoError(t, r.Refs.Update(HeadRef, Direct(c1), false))

	c2 := commitAll(t, r, "two", map[string]string{"a.txt": "2\n"})
	head, err := r.Refs.Resolve(HeadRef, false)
	require.NoError(t, err)
	assert.Equal(t, Direct(c2), head)

	// The branch stays where it was.
	branch, err := r.Refs.Resolve("refs/heads/master", false)
	require.NoError(t, err)
	assert.Equal(t, c1, branch.Hash())
}

func TestLogFollowsHistory(t *testing.T) {
	r := setup(t)
	c1 := commitAll(t, r, "one", map[string]string{"a.txt": "1\n"})
	c2 := commitAll(t, r, "two", map[string]string{"a.txt": "2\n"})
	c3 := commitAll(t, r, "three", map[string]string{"a.txt": "3\n"})

	var got []object.Hash
	var msgs []string
	for e, err := range r.Log(c3) {
		require.NoError(t, err)
		got = append(got, e.Hash)
		msgs = append(msgs, e.Commit.Message)
	}
	assert.Equal(t, []object.Hash{c3, c2, c1}, got)
	assert.Equal(t, []string{"three", "two", "one"}, msgs)
}

func TestLogMissingCommit(t *testing.T) {
	r := setup(t)
	var errs int
	for _, err := range r.Log(blobHash("absent")) {
		if err != nil {
			errs++
			assert.ErrorIs(t, err, object.ErrNotFound)
		}
	}
	assert.Equal(t, 1, errs)
}
