package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/repo"
)

func TestFetchCopiesBranchesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	peer := newRepo(t)
	c1 := commitAll(t, peer, "one", map[string]string{"a.txt": "1\n", "d/b.txt": "b\n"})
	require.NoError(t, peer.CreateBranch("feature", c1))
	c2 := commitAll(t, peer, "two", map[string]string{"a.txt": "2\n"})

	local := newRepo(t)
	res, err := Fetch(ctx, local, peer.RootDir)
	require.NoError(t, err)
	assert.Equal(t, len(closure(t, peer, c2)), res.Objects)
	assert.Equal(t, []RefUpdate{
		{Name: "refs/remote/feature", New: c1},
		{Name: "refs/remote/master", New: c2},
	}, res.Refs)

	for _, h := range closure(t, peer, c2) {
		assert.True(t, local.Store.Has(h))
	}
	assert.Equal(t, c2, refHash(t, local, "refs/remote/master"))
	assert.Equal(t, c1, refHash(t, local, "refs/remote/feature"))

	// Local branches are not touched.
	assert.True(t, refHash(t, local, repo.HeadRef).IsZero())

	again, err := Fetch(ctx, local, peer.RootDir)
	require.NoError(t, err)
	assert.Zero(t, again.Objects)
	assert.Empty(t, again.Refs)
}

func TestFetchNotARepository(t *testing.T) {
	local := newRepo(t)
	_, err := Fetch(context.Background(), local, t.TempDir())
	assert.ErrorIs(t, err, repo.ErrNotRepository)
}

func TestPushToEmptyPeer(t *testing.T) {
	ctx := context.Background()
	local := newRepo(t)
	c1 := commitAll(t, local, "one", map[string]string{"a.txt": "1\n", "d/b.txt": "b\n"})
	peer := newRepo(t)

	res, err := Push(ctx, local, peer.RootDir, "refs/heads/master")
	require.NoError(t, err)
	assert.True(t, res.Old.IsZero())
	assert.Equal(t, c1, res.New)
	assert.Equal(t, len(closure(t, local, c1)), res.Objects)
	assert.Equal(t, c1, refHash(t, peer, "refs/heads/master"))

	// A second commit only sends what the peer lacks: commit, root tree,
	// changed blob.
	c2 := commitAll(t, local, "two", map[string]string{"a.txt": "2\n"})
	res, err = Push(ctx, local, peer.RootDir, "refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, c1, res.Old)
	assert.Equal(t, 3, res.Objects)
	assert.Equal(t, c2, refHash(t, peer, "refs/heads/master"))

	res, err = Push(ctx, local, peer.RootDir, "refs/heads/master")
	require.NoError(t, err)
	assert.True(t, res.UpToDate())
	assert.Zero(t, res.Objects)
}

func TestPushRejectsNonFastForward(t *testing.T) {
	ctx := context.Background()
	local := newRepo(t)
	base := commitAll(t, local, "base", map[string]string{"a.txt": "base\n"})
	peer := newRepo(t)
	_, err := Push(ctx, local, peer.RootDir, "refs/heads/master")
	require.NoError(t, err)

	// Both sides move on independently.
	theirs := commitAll(t, peer, "peer work", map[string]string{"p.txt": "p\n"})
	ours := commitAll(t, local, "local work", map[string]string{"l.txt": "l\n"})
	require.NotEqual(t, base, theirs)

	_, err = Push(ctx, local, peer.RootDir, "refs/heads/master")
	assert.ErrorIs(t, err, ErrNonFastForward)

	assert.Equal(t, theirs, refHash(t, peer, "refs/heads/master"))
	assert.False(t, peer.Store.Has(ours))
	_, err = peer.Store.ReadBlob(blobOf("l\n"))
	assert.Error(t, err)
}

func TestPushAfterFetchAndMerge(t *testing.T) {
	ctx := context.Background()
	local := newRepo(t)
	commitAll(t, local, "base", map[string]string{"a.txt": "base\n"})
	peer := newRepo(t)
	_, err := Push(ctx, local, peer.RootDir, "refs/heads/master")
	require.NoError(t, err)
	theirs := commitAll(t, peer, "peer work", map[string]string{"p.txt": "p\n"})
	commitAll(t, local, "local work", map[string]string{"l.txt": "l\n"})

	_, err = Fetch(ctx, local, peer.RootDir)
	require.NoError(t, err)
	res, err := local.Merge(ctx, refHash(t, local, "refs/remote/master"))
	require.NoError(t, err)
	require.False(t, res.FastForward)
	merged, err := local.Commit("merge peer")
	require.NoError(t, err)

	push, err := Push(ctx, local, peer.RootDir, "refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, theirs, push.Old)
	assert.Equal(t, merged, push.New)
	assert.Equal(t, merged, refHash(t, peer, "refs/heads/master"))
}

func TestPushUnknownRef(t *testing.T) {
	local := newRepo(t)
	peer := newRepo(t)
	_, err := Push(context.Background(), local, peer.RootDir, "refs/heads/master")
	assert.ErrorIs(t, err, repo.ErrUnknownRevision)
}

func TestPushCancelled(t *testing.T) {
	local := newRepo(t)
	commitAll(t, local, "one", map[string]string{"a.txt": "1\n"})
	peer := newRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Push(ctx, local, peer.RootDir, "refs/heads/master")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, refHash(t, peer, "refs/heads/master").IsZero())
}
