package executor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/fileops"
	"github.com/danieljhkim/cleansweep/internal/fsops"
)

// LogFileName is the execution log file persisted inside each backup set.
const LogFileName = "execution_log.json"

// Status is the recorded outcome of one attempted action.
type Status string

// Log entry status constants.
const (
	StatusExecuted Status = "executed"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
)

// LogEntry records one attempted action during a live run. Entries are
// created at dispatch time, immutable once written, and consumed read-only
// by rollback.
type LogEntry struct {
	// Action is the action that was attempted.
	Action action.Action `json:"action"`

	// Status is the recorded outcome.
	Status Status `json:"status"`

	// BackupPath is the absolute path of the pre-mutation backup copy,
	// set for executed DELETE/MOVE actions.
	BackupPath string `json:"backup_path,omitempty"`

	// Error holds the failure reason when Status is error.
	Error string `json:"error,omitempty"`
}

// BackupSet is the record of one run: the run identity, the timestamped
// backup directory mirroring every touched file, and the execution log.
// It is the sole input to rollback. Backup sets are never auto-deleted.
type BackupSet struct {
	// RunID uniquely identifies the run, independent of the timestamp.
	RunID string `json:"run_id"`

	// Timestamp is the UTC stamp the backup directory is named by.
	Timestamp string `json:"timestamp"`

	// BackupDir is the backup directory; empty for dry runs, which create
	// no directory.
	BackupDir string `json:"backup_dir"`

	// Log is the per-action execution log.
	Log []LogEntry `json:"action_log"`
}

// Tally is the executed/skipped/error summary of a run.
type Tally struct {
	Executed int
	Skipped  int
	Errors   int
}

// Tally summarizes the log by status.
func (b *BackupSet) Tally() Tally {
	var t Tally
	for _, entry := range b.Log {
		switch entry.Status {
		case StatusExecuted:
			t.Executed++
		case StatusSkipped:
			t.Skipped++
		case StatusError:
			t.Errors++
		}
	}
	return t
}

// RestoreEntries projects the log into the shape rollback consumes.
func (b *BackupSet) RestoreEntries() []fileops.RestoreEntry {
	entries := make([]fileops.RestoreEntry, 0, len(b.Log))
	for _, e := range b.Log {
		entries = append(entries, fileops.RestoreEntry{
			Status:     string(e.Status),
			BackupPath: e.BackupPath,
		})
	}
	return entries
}

// Persist writes the execution log into the backup directory so a later,
// independent invocation can roll the run back.
func (b *BackupSet) Persist(fs fsops.FS) error {
	if b.BackupDir == "" {
		return fmt.Errorf("cannot persist backup set without a backup directory")
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution log: %w", err)
	}
	path := filepath.Join(b.BackupDir, LogFileName)
	if err := fs.AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write execution log: %w", err)
	}
	return nil
}

// LoadBackupSet reads a persisted backup set from its backup directory.
func LoadBackupSet(fs fsops.FS, backupDir string) (*BackupSet, error) {
	path := filepath.Join(backupDir, LogFileName)
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLogMissing, backupDir)
		}
		return nil, fmt.Errorf("failed to read execution log: %w", err)
	}

	var set BackupSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse execution log: %w", err)
	}
	// The directory the log was loaded from is authoritative: the set may
	// have been relocated since the run.
	set.BackupDir = backupDir
	return &set, nil
}
