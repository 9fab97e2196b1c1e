package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchCreateListDelete(t *testing.T) {
	r := setup(t)
	c := commitAll(t, r, "one", map[string]string{"a.txt": "a\n"})

	require.NoError(t, r.CreateBranch("feature", c))
	require.NoError(t, r.CreateBranch("bugfix/x", c))

	names, err := r.BranchNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"bugfix/x", "feature", "master"}, names)
	assert.True(t, r.IsBranch("feature"))
	assert.False(t, r.IsBranch("nope"))

	require.NoError(t, r.DeleteBranch("feature"))
	assert.False(t, r.IsBranch("feature"))
	assert.ErrorIs(t, r.DeleteBranch("feature"), ErrUnknownRevision)
}

func TestBranchCreateRefusesOverwrite(t *testing.T) {
	r := setup(t)
	c := commitAll(t, r, "one", map[string]string{"a.txt": "a\n"})
	require.NoError(t, r.CreateBranch("feature", c))
	assert.ErrorIs(t, r.CreateBranch("feature", c), ErrRefExists)
}

func TestBranchInvalidNames(t *testing.T) {
	r := setup(t)
	c := commitAll(t, r, "one", map[string]string{"a.txt": "a\n"})
	for _, name := range []string{"", "-x", "a..b", "a b", "a/", "/a", "a//b"} {
		assert.ErrorIs(t, r.CreateBranch(name, c), ErrInvalidRefName, name)
	}
}

func TestCurrentBranch(t *testing.T) {
	r := setup(t)
	name, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", name)

	c := commitAll(t, r, "one", map[string]string{"a.txt": "a\n"})
	assert.Error(t, r.DeleteBranch("master"))

	require.NoError(t, r.Refs.Update(HeadRef, Direct(c), false))
	name, err = r.CurrentBranch()
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestUnbornBranchIsNotListed(t *testing.T) {
	r := setup(t)
	names, err := r.BranchNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestTags(t *testing.T) {
	r := setup(t)
	c := commitAll(t, r, "one", map[string]string{"a.txt": "a\n"})

	require.NoError(t, r.CreateTag("v2", c))
	require.NoError(t, r.CreateTag("v1", c))
	assert.ErrorIs(t, r.CreateTag("v1", c), ErrRefExists)

	names, err := r.TagNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, names)

	require.NoError(t, r.DeleteTag("v1"))
	assert.ErrorIs(t, r.DeleteTag("v1"), ErrUnknownRevision)
	names, err = r.TagNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"v2"}, names)
}
