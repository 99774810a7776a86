package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealFS_ValidateRelPath(t *testing.T) {
	fs := NewRealFS()

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "valid relative path", path: "foo/bar/baz.txt", wantError: false},
		{name: "valid single file", path: "file.txt", wantError: false},
		{name: "dot prefix file", path: ".hidden/file.txt", wantError: false},
		{name: "interior dot-dot that stays inside", path: "a/b/../c.txt", wantError: false},
		{name: "empty path", path: "", wantError: true},
		{name: "current directory", path: ".", wantError: true},
		{name: "absolute path", path: "/etc/hosts", wantError: true},
		{name: "parent traversal", path: "../etc/hosts", wantError: true},
		{name: "traversal escaping via middle", path: "foo/../../../etc/hosts", wantError: true},
		{name: "bare dot-dot", path: "..", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateRelPath(tt.path)
			if tt.wantError {
				assert.Error(t, err, "path %q", tt.path)
			} else {
				assert.NoError(t, err, "path %q", tt.path)
			}
		})
	}
}

func TestRealFS_CopyFile(t *testing.T) {
	fs := NewRealFS()
	dir := t.TempDir()

	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0640))

	dst := filepath.Join(dir, "nested", "deep", "dst.txt")
	require.NoError(t, fs.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestRealFS_CopyFileRejectsDirectory(t *testing.T) {
	fs := NewRealFS()
	dir := t.TempDir()

	err := fs.CopyFile(dir, filepath.Join(dir, "out"))
	assert.Error(t, err)
}

func TestRealFS_AtomicWrite(t *testing.T) {
	fs := NewRealFS()
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "log.json")

	require.NoError(t, fs.AtomicWrite(path, []byte(`{"ok":true}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Overwrite leaves no temp files behind
	require.NoError(t, fs.AtomicWrite(path, []byte(`{"ok":false}`), 0600))
	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRealFS_LinkSharesContent(t *testing.T) {
	fs := NewRealFS()
	dir := t.TempDir()

	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("same inode"), 0644))

	link := filepath.Join(dir, "link.txt")
	require.NoError(t, fs.Link(src, link))

	data, err := os.ReadFile(link)
	require.NoError(t, err)
	assert.Equal(t, "same inode", string(data))
}

func TestRealFS_Exists(t *testing.T) {
	fs := NewRealFS()
	dir := t.TempDir()

	present := filepath.Join(dir, "here.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0644))

	exists, err := fs.Exists(present)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = fs.Exists(filepath.Join(dir, "absent.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
}
