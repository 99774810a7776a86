package gitignore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/clock"
)

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	project := t.TempDir()
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewWriter(project, nil, clk, nil), project
}

func ignoreAction(source string) action.Action {
	return action.Action{Type: action.AddIgnoreRule, Source: source, Risk: action.Low, Reason: "ignore"}
}

func TestNewEntries(t *testing.T) {
	t.Run("rooted trailing-slash entries, sorted and deduped", func(t *testing.T) {
		w, _ := newTestWriter(t)

		entries, err := w.NewEntries([]action.Action{
			ignoreAction("vendor"),
			ignoreAction("cache/"),
			ignoreAction("vendor"), // duplicate proposal
			{Type: action.Delete, Source: "junk.php", Risk: action.Low, Reason: "x"}, // not an ignore rule
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"/cache/", "/vendor/"}, entries)
	})

	t.Run("skips entries already present", func(t *testing.T) {
		w, project := newTestWriter(t)
		require.NoError(t, os.WriteFile(filepath.Join(project, ".gitignore"), []byte("/vendor/\n"), 0644))

		entries, err := w.NewEntries([]action.Action{ignoreAction("vendor"), ignoreAction("tmp")})
		require.NoError(t, err)
		assert.Equal(t, []string{"/tmp/"}, entries)
	})
}

func TestBuildContent(t *testing.T) {
	t.Run("fresh file gets header and entries", func(t *testing.T) {
		w, _ := newTestWriter(t)

		content, err := w.BuildContent([]string{"/vendor/"})
		require.NoError(t, err)
		assert.Equal(t, "# Added by cleansweep 2024-06-01T12:00:00Z\n/vendor/\n", content)
	})

	t.Run("appends after existing content with separator", func(t *testing.T) {
		w, project := newTestWriter(t)
		require.NoError(t, os.WriteFile(filepath.Join(project, ".gitignore"), []byte("*.log"), 0644))

		content, err := w.BuildContent([]string{"/vendor/"})
		require.NoError(t, err)
		assert.Equal(t, "*.log\n\n# Added by cleansweep 2024-06-01T12:00:00Z\n/vendor/\n", content)
	})

	t.Run("no entries leaves content untouched", func(t *testing.T) {
		w, project := newTestWriter(t)
		require.NoError(t, os.WriteFile(filepath.Join(project, ".gitignore"), []byte("*.log\n"), 0644))

		content, err := w.BuildContent(nil)
		require.NoError(t, err)
		assert.Equal(t, "*.log\n", content)
	})
}

func TestApply(t *testing.T) {
	t.Run("dry run returns diff without writing", func(t *testing.T) {
		w, project := newTestWriter(t)

		diff, err := w.Apply([]action.Action{ignoreAction("vendor")}, true)
		require.NoError(t, err)
		assert.Contains(t, diff, "+/vendor/")
		assert.NoFileExists(t, filepath.Join(project, ".gitignore"))
	})

	t.Run("live run writes the file", func(t *testing.T) {
		w, project := newTestWriter(t)

		diff, err := w.Apply([]action.Action{ignoreAction("vendor")}, false)
		require.NoError(t, err)
		assert.NotEmpty(t, diff)

		data, err := os.ReadFile(filepath.Join(project, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "/vendor/\n")
	})

	t.Run("nothing to add yields empty diff and no write", func(t *testing.T) {
		w, project := newTestWriter(t)
		require.NoError(t, os.WriteFile(filepath.Join(project, ".gitignore"), []byte("/vendor/\n"), 0644))

		diff, err := w.Apply([]action.Action{ignoreAction("vendor")}, false)
		require.NoError(t, err)
		assert.Empty(t, diff)

		data, err := os.ReadFile(filepath.Join(project, ".gitignore"))
		require.NoError(t, err)
		assert.Equal(t, "/vendor/\n", string(data))
	})
}
