package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/fsops"
	"github.com/danieljhkim/cleansweep/internal/hash"
)

func newTestOperator(t *testing.T) (*Operator, string, string) {
	t.Helper()
	project := t.TempDir()
	backup := filepath.Join(t.TempDir(), "backup")

	op, err := NewOperator(project, backup, fsops.NewRealFS(), hash.NewSHA256Hasher(), nil)
	require.NoError(t, err)
	return op, project, backup
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewOperator_MissingProjectRoot(t *testing.T) {
	_, err := NewOperator(filepath.Join(t.TempDir(), "absent"), t.TempDir(), fsops.NewRealFS(), hash.NewSHA256Hasher(), nil)
	assert.Error(t, err)
}

func TestConfine(t *testing.T) {
	op, project, _ := newTestOperator(t)

	tests := []struct {
		name      string
		rel       string
		wantError bool
	}{
		{name: "simple file", rel: "index.php", wantError: false},
		{name: "nested file", rel: "src/lib/util.php", wantError: false},
		{name: "interior dot-dot staying inside", rel: "src/../index.php", wantError: false},
		{name: "leading dot-dot", rel: "../outside.php", wantError: true},
		{name: "deep escape", rel: "a/../../../../etc/passwd", wantError: true},
		{name: "absolute path", rel: "/etc/passwd", wantError: true},
		{name: "empty", rel: "", wantError: true},
		{name: "bare dot-dot", rel: "..", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := op.Confine(tt.rel)
			if tt.wantError {
				require.ErrorIs(t, err, ErrTraversal)
				return
			}
			require.NoError(t, err)
			assert.True(t, len(resolved) > len(project))
			assert.Equal(t, project, resolved[:len(project)])
		})
	}
}

func TestDelete(t *testing.T) {
	t.Run("deletes and backs up", func(t *testing.T) {
		op, project, backup := newTestOperator(t)
		writeFile(t, project, "old/stale.php", "<?php // stale")

		res := op.Delete(action.Action{Type: action.Delete, Source: "old/stale.php", Risk: action.Low, Reason: "stale"})
		require.Equal(t, StatusOK, res.Status)

		assert.NoFileExists(t, filepath.Join(project, "old/stale.php"))
		assert.Equal(t, filepath.Join(backup, "old/stale.php"), res.BackupPath)

		data, err := os.ReadFile(res.BackupPath)
		require.NoError(t, err)
		assert.Equal(t, "<?php // stale", string(data))
	})

	t.Run("missing source is skipped", func(t *testing.T) {
		op, _, _ := newTestOperator(t)

		res := op.Delete(action.Action{Type: action.Delete, Source: "absent.php", Risk: action.Low, Reason: "stale"})
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, ReasonNotFound, res.Reason)
		assert.Empty(t, res.BackupPath)
	})

	t.Run("traversal is refused", func(t *testing.T) {
		op, _, _ := newTestOperator(t)

		res := op.Delete(action.Action{Type: action.Delete, Source: "../escape.php", Risk: action.Low, Reason: "stale"})
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, ReasonTraversalBlocked, res.Reason)
	})

	t.Run("prunes newly empty parent but not project root", func(t *testing.T) {
		op, project, _ := newTestOperator(t)
		writeFile(t, project, "only/child.php", "x")
		writeFile(t, project, "rooted.php", "y")

		res := op.Delete(action.Action{Type: action.Delete, Source: "only/child.php", Risk: action.Low, Reason: "stale"})
		require.Equal(t, StatusOK, res.Status)
		assert.NoDirExists(t, filepath.Join(project, "only"))

		res = op.Delete(action.Action{Type: action.Delete, Source: "rooted.php", Risk: action.Low, Reason: "stale"})
		require.Equal(t, StatusOK, res.Status)
		assert.DirExists(t, project)
	})

	t.Run("keeps non-empty parent", func(t *testing.T) {
		op, project, _ := newTestOperator(t)
		writeFile(t, project, "dir/a.php", "a")
		writeFile(t, project, "dir/b.php", "b")

		res := op.Delete(action.Action{Type: action.Delete, Source: "dir/a.php", Risk: action.Low, Reason: "stale"})
		require.Equal(t, StatusOK, res.Status)
		assert.DirExists(t, filepath.Join(project, "dir"))
		assert.FileExists(t, filepath.Join(project, "dir/b.php"))
	})
}

func TestMove(t *testing.T) {
	t.Run("moves with backup and parent creation", func(t *testing.T) {
		op, project, backup := newTestOperator(t)
		writeFile(t, project, "misplaced.php", "content")

		res := op.Move(action.Action{Type: action.Move, Source: "misplaced.php", Destination: "legacy/deep/misplaced.php", Risk: action.Medium, Reason: "relocate"})
		require.Equal(t, StatusOK, res.Status)

		assert.NoFileExists(t, filepath.Join(project, "misplaced.php"))
		moved, err := os.ReadFile(filepath.Join(project, "legacy/deep/misplaced.php"))
		require.NoError(t, err)
		assert.Equal(t, "content", string(moved))
		assert.Equal(t, filepath.Join(backup, "misplaced.php"), res.BackupPath)
	})

	t.Run("missing source fails", func(t *testing.T) {
		op, _, _ := newTestOperator(t)

		res := op.Move(action.Action{Type: action.Move, Source: "absent.php", Destination: "x.php", Risk: action.Low, Reason: "relocate"})
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, ReasonNotFound, res.Reason)
	})

	t.Run("existing destination fails distinctly", func(t *testing.T) {
		op, project, _ := newTestOperator(t)
		writeFile(t, project, "src.php", "src")
		writeFile(t, project, "dst.php", "dst")

		res := op.Move(action.Action{Type: action.Move, Source: "src.php", Destination: "dst.php", Risk: action.Low, Reason: "relocate"})
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, ReasonDestinationExists, res.Reason)

		// Neither file was touched
		data, err := os.ReadFile(filepath.Join(project, "dst.php"))
		require.NoError(t, err)
		assert.Equal(t, "dst", string(data))
		assert.FileExists(t, filepath.Join(project, "src.php"))
	})

	t.Run("identical source and destination is a no-op", func(t *testing.T) {
		op, project, _ := newTestOperator(t)
		writeFile(t, project, "same.php", "same")

		res := op.Move(action.Action{Type: action.Move, Source: "same.php", Destination: "same.php", Risk: action.Low, Reason: "relocate"})
		assert.Equal(t, StatusOK, res.Status)
		assert.FileExists(t, filepath.Join(project, "same.php"))
	})

	t.Run("traversal on destination is refused", func(t *testing.T) {
		op, project, _ := newTestOperator(t)
		writeFile(t, project, "src.php", "src")

		res := op.Move(action.Action{Type: action.Move, Source: "src.php", Destination: "../../evil.php", Risk: action.Low, Reason: "relocate"})
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, ReasonTraversalBlocked, res.Reason)
		assert.FileExists(t, filepath.Join(project, "src.php"))
	})
}

func TestRollback(t *testing.T) {
	t.Run("restores executed entries in reverse", func(t *testing.T) {
		op, project, backup := newTestOperator(t)
		writeFile(t, project, "a.php", "content-a")
		writeFile(t, project, "sub/b.php", "content-b")

		resA := op.Delete(action.Action{Type: action.Delete, Source: "a.php", Risk: action.Low, Reason: "stale"})
		resB := op.Move(action.Action{Type: action.Move, Source: "sub/b.php", Destination: "moved/b.php", Risk: action.Low, Reason: "relocate"})
		require.Equal(t, StatusOK, resA.Status)
		require.Equal(t, StatusOK, resB.Status)

		entries := []RestoreEntry{
			{Status: "executed", BackupPath: resA.BackupPath},
			{Status: "executed", BackupPath: resB.BackupPath},
		}
		count := op.Rollback(backup, entries)
		assert.Equal(t, 2, count)

		dataA, err := os.ReadFile(filepath.Join(project, "a.php"))
		require.NoError(t, err)
		assert.Equal(t, "content-a", string(dataA))

		dataB, err := os.ReadFile(filepath.Join(project, "sub/b.php"))
		require.NoError(t, err)
		assert.Equal(t, "content-b", string(dataB))
	})

	t.Run("skipped and error entries are not restored", func(t *testing.T) {
		op, _, backup := newTestOperator(t)

		entries := []RestoreEntry{
			{Status: "skipped", BackupPath: ""},
			{Status: "error", BackupPath: ""},
			{Status: "executed", BackupPath: ""}, // no-op move: nothing to undo
		}
		assert.Equal(t, 0, op.Rollback(backup, entries))
	})

	t.Run("missing backup file is tolerated", func(t *testing.T) {
		op, _, backup := newTestOperator(t)

		entries := []RestoreEntry{
			{Status: "executed", BackupPath: filepath.Join(backup, "gone.php")},
		}
		assert.Equal(t, 0, op.Rollback(backup, entries))
	})
}

func TestBackupPreservesRelativePath(t *testing.T) {
	op, project, backup := newTestOperator(t)
	writeFile(t, project, "deep/nested/dir/file.php", "x")

	res := op.Delete(action.Action{Type: action.Delete, Source: "deep/nested/dir/file.php", Risk: action.Low, Reason: "stale"})
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, filepath.Join(backup, "deep/nested/dir/file.php"), res.BackupPath)
	assert.FileExists(t, res.BackupPath)
}
