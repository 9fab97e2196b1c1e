package object

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalTreeSortsEntries(t *testing.T) {
	a := HashObject(KindBlob, []byte("a"))
	b := HashObject(KindBlob, []byte("b"))

	t1 := &Tree{Entries: []TreeEntry{
		{Kind: KindBlob, Hash: b, Name: "z.txt"},
		{Kind: KindBlob, Hash: a, Name: "a.txt"},
	}}
	t2 := &Tree{Entries: []TreeEntry{
		{Kind: KindBlob, Hash: a, Name: "a.txt"},
		{Kind: KindBlob, Hash: b, Name: "z.txt"},
	}}
	assert.Equal(t, MarshalTree(t1), MarshalTree(t2))

	want := "blob " + a.String() + " a.txt\nblob " + b.String() + " z.txt\n"
	assert.Equal(t, want, string(MarshalTree(t1)))
}

func TestTreeRoundTrip(t *testing.T) {
	in := &Tree{Entries: []TreeEntry{
		{Kind: KindBlob, Hash: HashObject(KindBlob, []byte("x")), Name: "file with spaces.txt"},
		{Kind: KindTree, Hash: HashObject(KindTree, nil), Name: "sub"},
	}}
	out, err := UnmarshalTree(MarshalTree(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	empty, err := UnmarshalTree(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Entries)
}

func TestUnmarshalTreeCorrupt(t *testing.T) {
	h := HashObject(KindBlob, []byte("x")).String()
	tests := map[string]string{
		"unknown kind":   "commit " + h + " name\n",
		"separator":      "blob " + h + " a/b\n",
		"dot dot":        "blob " + h + " ..\n",
		"malformed line": "blob " + h + "\n",
		"bad digest":     "blob nothex name\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalTree([]byte(data))
			assert.ErrorIs(t, err, ErrCorruptTree)
		})
	}
}

func TestCommitRoundTrip(t *testing.T) {
	tree := HashObject(KindTree, nil)
	p1 := HashObject(KindCommit, []byte("p1"))
	p2 := HashObject(KindCommit, []byte("p2"))

	messages := []string{"simple", "", "multi\n\nline\n", "trailing newline\n"}
	for _, msg := range messages {
		in := &Commit{Tree: tree, Parents: []Hash{p1, p2}, Message: msg}
		out, err := UnmarshalCommit(MarshalCommit(in))
		require.NoError(t, err)
		assert.Equal(t, in, out, "message %q", msg)
	}
}

func TestMarshalCommitFormat(t *testing.T) {
	tree := HashObject(KindTree, nil)
	parent := HashObject(KindCommit, []byte("p"))
	got := string(MarshalCommit(&Commit{Tree: tree, Parents: []Hash{parent}, Message: "msg"}))
	want := "tree " + tree.String() + "\nparent " + parent.String() + "\n\nmsg\n"
	assert.Equal(t, want, got)
}

func TestUnmarshalCommitCorrupt(t *testing.T) {
	tree := HashObject(KindTree, nil).String()
	tests := map[string]string{
		"missing tree": "parent " + tree + "\n\nmsg\n",
		"unknown key":  "tree " + tree + "\nauthor someone\n\nmsg\n",
		"bad digest":   "tree xyz\n\nmsg\n",
		"no value":     "tree\n\nmsg\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalCommit([]byte(data))
			assert.ErrorIs(t, err, ErrCorruptCommit)
		})
	}
}

func TestUnmarshalCommitWithoutMessage(t *testing.T) {
	tree := HashObject(KindTree, nil).String()
	c, err := UnmarshalCommit([]byte(strings.Join([]string{"tree " + tree}, "\n") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, c.Message)
	assert.Empty(t, c.Parents)
}
