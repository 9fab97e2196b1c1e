package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/ugit/pkg/object"
)

func writeBlobs(t *testing.T, s *object.Store, files map[string]string) map[string]object.Hash {
	t.Helper()
	out := make(map[string]object.Hash, len(files))
	for p, content := range files {
		h, err := s.WriteBlob([]byte(content))
		require.NoError(t, err)
		out[p] = h
	}
	return out
}

func readBlob(t *testing.T, s *object.Store, h object.Hash) string {
	t.Helper()
	data, err := s.ReadBlob(h)
	require.NoError(t, err)
	return string(data)
}

func TestTreesResolvesEachPath(t *testing.T) {
	s := object.NewStore(t.TempDir())
	base := writeBlobs(t, s, map[string]string{
		"same.txt":   "same\n",
		"ours.txt":   "old\n",
		"theirs.txt": "old\n",
		"both.txt":   "a\nb\nc\n",
	})
	ours := writeBlobs(t, s, map[string]string{
		"same.txt":   "same\n",
		"ours.txt":   "new\n",
		"theirs.txt": "old\n",
		"both.txt":   "A\nb\nc\n",
		"added.txt":  "added by ours\n",
	})
	theirs := writeBlobs(t, s, map[string]string{
		"same.txt":   "same\n",
		"ours.txt":   "old\n",
		"theirs.txt": "new\n",
		"both.txt":   "a\nb\nC\n",
	})

	result, report, err := Trees(context.Background(), s, Builtin{}, base, ours, theirs)
	require.NoError(t, err)

	assert.Equal(t, "same\n", readBlob(t, s, result["same.txt"]))
	assert.Equal(t, "new\n", readBlob(t, s, result["ours.txt"]))
	assert.Equal(t, "new\n", readBlob(t, s, result["theirs.txt"]))
	assert.Equal(t, "A\nb\nC\n", readBlob(t, s, result["both.txt"]))
	assert.Equal(t, "added by ours\n", readBlob(t, s, result["added.txt"]))

	assert.Equal(t, []FileResult{
		{Path: "added.txt", Status: TookOurs},
		{Path: "both.txt", Status: Merged},
		{Path: "ours.txt", Status: TookOurs},
		{Path: "same.txt", Status: Unchanged},
		{Path: "theirs.txt", Status: TookTheirs},
	}, report.Files)
	assert.Zero(t, report.Conflicts)
}

func TestTreesConflict(t *testing.T) {
	s := object.NewStore(t.TempDir())
	base := writeBlobs(t, s, map[string]string{"f.txt": "base\n"})
	ours := writeBlobs(t, s, map[string]string{"f.txt": "ours\n"})
	theirs := writeBlobs(t, s, map[string]string{"f.txt": "theirs\n"})

	result, report, err := Trees(context.Background(), s, Builtin{}, base, ours, theirs)
	require.NoError(t, err)

	content := readBlob(t, s, result["f.txt"])
	assert.Contains(t, content, "<<<<<<< HEAD\nours\n")
	assert.Contains(t, content, "=======\ntheirs\n>>>>>>> MERGE_HEAD\n")
	assert.Equal(t, 1, report.Conflicts)
	assert.Equal(t, []string{"f.txt"}, report.ConflictedPaths())
}

func TestTreesEmptyBase(t *testing.T) {
	s := object.NewStore(t.TempDir())
	ours := writeBlobs(t, s, map[string]string{"a.txt": "a\n", "shared.txt": "x\n"})
	theirs := writeBlobs(t, s, map[string]string{"b.txt": "b\n", "shared.txt": "x\n"})

	result, report, err := Trees(context.Background(), s, Builtin{}, nil, ours, theirs)
	require.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Equal(t, "a\n", readBlob(t, s, result["a.txt"]))
	assert.Equal(t, "b\n", readBlob(t, s, result["b.txt"]))
	assert.Equal(t, "x\n", readBlob(t, s, result["shared.txt"]))
	assert.Zero(t, report.Conflicts)
}

// A path removed on one side keeps a blob in the result; absent content is
// merged as empty content.
func TestTreesAbsentIsEmpty(t *testing.T) {
	s := object.NewStore(t.TempDir())
	base := writeBlobs(t, s, map[string]string{"gone.txt": "content\n"})
	theirs := writeBlobs(t, s, map[string]string{"gone.txt": "content\n"})

	result, _, err := Trees(context.Background(), s, Builtin{}, base, map[string]object.Hash{}, theirs)
	require.NoError(t, err)
	require.Contains(t, result, "gone.txt")
	assert.Empty(t, readBlob(t, s, result["gone.txt"]))
}

func TestTreesMissingBlob(t *testing.T) {
	s := object.NewStore(t.TempDir())
	missing := map[string]object.Hash{"f": object.HashObject(object.KindBlob, []byte("nope"))}
	_, _, err := Trees(context.Background(), s, Builtin{}, nil, missing, nil)
	assert.ErrorIs(t, err, object.ErrNotFound)
}
