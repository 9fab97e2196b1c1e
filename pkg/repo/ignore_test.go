package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreDefaults(t *testing.T) {
	ic, err := NewIgnoreChecker(t.TempDir(), DefaultIgnore)
	require.NoError(t, err)

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{".ugit", true, true},
		{".ugit/objects/abc", false, true},
		{"peer/.ugit", true, true},
		{"peer/.ugit/HEAD", false, true},
		{"a/b/.ugit/objects/abc", false, true},
		{"ugit/x", false, false},
		{"notes.ipynb", false, true},
		{"sub/notes.ipynb", false, true},
		{".ipynb_checkpoints", true, true},
		{"sub/.ipynb_checkpoints", true, true},
		{".gitignore", false, true},
		{"ugit.egg-info", true, true},
		{"main.go", false, false},
		{"sub", true, false},
		{".ugitignore", false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ic.IsIgnored(tc.path, tc.isDir), tc.path)
	}
}

func TestIgnoreFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("*.log\nbuild/\n!keep.log\n"), 0o644))

	ic, err := NewIgnoreChecker(root, nil)
	require.NoError(t, err)
	assert.True(t, ic.IsIgnored("debug.log", false))
	assert.False(t, ic.IsIgnored("keep.log", false))
	assert.True(t, ic.IsIgnored("build", true))
	assert.False(t, ic.IsIgnored("main.go", false))
}

func TestNilIgnoreCheckerOnlyIgnoresStore(t *testing.T) {
	var ic *IgnoreChecker
	assert.True(t, ic.IsIgnored(".ugit", true))
	assert.False(t, ic.IsIgnored("x.ipynb", false))
}
