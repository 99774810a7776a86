// Package gitignore applies ADD_IGNORE_RULE actions by appending rooted
// entries to the project's .gitignore. It is the "external writer" from the
// planning core's point of view: the core only proposes ignore rules, this
// package turns accepted proposals into file content.
package gitignore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/clock"
	"github.com/danieljhkim/cleansweep/internal/fsops"
)

// Writer reads and updates one project's .gitignore.
type Writer struct {
	path   string
	fs     fsops.FS
	clock  clock.Clock
	logger *zap.Logger
}

// NewWriter creates a Writer for the .gitignore at the root of projectDir.
func NewWriter(projectDir string, fs fsops.FS, clk clock.Clock, logger *zap.Logger) *Writer {
	if fs == nil {
		fs = fsops.NewRealFS()
	}
	if clk == nil {
		clk = &clock.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		path:   filepath.Join(projectDir, ".gitignore"),
		fs:     fs,
		clock:  clk,
		logger: logger,
	}
}

// ReadExisting returns the current .gitignore content.
// A missing file yields an empty string.
func (w *Writer) ReadExisting() (string, error) {
	data, err := w.fs.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", w.path, err)
	}
	return string(data), nil
}

// NewEntries extracts the ignore lines to add from ADD_IGNORE_RULE actions:
// one rooted, trailing-slash entry per source directory, deduplicated
// against the existing file and each other, sorted.
func (w *Writer) NewEntries(actions []action.Action) ([]string, error) {
	existing, err := w.ReadExisting()
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var entries []string
	for _, a := range actions {
		if a.Type != action.AddIgnoreRule {
			continue
		}
		entry := "/" + strings.Trim(a.Source, "/") + "/"
		if present[entry] {
			continue
		}
		present[entry] = true
		entries = append(entries, entry)
	}

	sort.Strings(entries)
	return entries, nil
}

// BuildContent appends the new entries to the existing content under a
// timestamped comment header. No entries means the content is unchanged.
func (w *Writer) BuildContent(entries []string) (string, error) {
	existing, err := w.ReadExisting()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return existing, nil
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString("\n")
	}
	if existing != "" {
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("# Added by cleansweep %s\n", w.clock.Now().UTC().Format(time.RFC3339)))
	for _, entry := range entries {
		b.WriteString(entry)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Diff renders the change between the current file and the proposed content
// in unified-diff style. Since updates are pure appends, the diff lists the
// appended lines. Empty string means no change.
func (w *Writer) Diff(proposed string) (string, error) {
	existing, err := w.ReadExisting()
	if err != nil {
		return "", err
	}
	if proposed == existing {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("--- .gitignore (current)\n")
	b.WriteString("+++ .gitignore (proposed)\n")
	appended := strings.TrimPrefix(proposed, existing)
	for _, line := range strings.Split(strings.TrimRight(appended, "\n"), "\n") {
		b.WriteString("+")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Apply generates the updated .gitignore for the given actions and returns
// the diff. In dry-run mode nothing is written; in live mode the file is
// replaced atomically.
func (w *Writer) Apply(actions []action.Action, dryRun bool) (string, error) {
	entries, err := w.NewEntries(actions)
	if err != nil {
		return "", err
	}
	content, err := w.BuildContent(entries)
	if err != nil {
		return "", err
	}
	diff, err := w.Diff(content)
	if err != nil {
		return "", err
	}

	if !dryRun && diff != "" {
		if err := w.fs.AtomicWrite(w.path, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", w.path, err)
		}
		w.logger.Info("updated ignore file",
			zap.String("path", w.path),
			zap.Int("entries", len(entries)))
	}
	return diff, nil
}
