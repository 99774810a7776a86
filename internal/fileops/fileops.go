// Package fileops performs the actual delete/move mutations against disk,
// confined to the project root, with a mandatory pre-mutation backup of
// every touched file.
//
// Every public operation returns a structured Result instead of an error so
// the execution engine can always produce a complete log: expected failure
// modes (missing source, traversal attempt, existing destination, permission
// denial) map to a small closed set of reasons rather than raw OS errors.
package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/fsops"
	"github.com/danieljhkim/cleansweep/internal/hash"
)

// ErrTraversal indicates a path whose resolved form escapes the project root.
var ErrTraversal = errors.New("path escapes project root")

// Status is the outcome class of one operation.
type Status string

// Operation outcome constants.
const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Reason narrows a non-OK status to one of a closed set of causes.
type Reason string

// Failure reason constants. Detail carries the raw OS message when useful;
// callers should branch on Reason only.
const (
	ReasonNone              Reason = ""
	ReasonTraversalBlocked  Reason = "traversal-blocked"
	ReasonNotFound          Reason = "not-found"
	ReasonDestinationExists Reason = "destination-exists"
	ReasonPermissionDenied  Reason = "permission-denied"
	ReasonOSFailure         Reason = "os-failure"
)

// Result is the structured outcome of one delete/move operation.
type Result struct {
	// Status is the outcome class.
	Status Status

	// Reason identifies the cause when Status is not ok.
	Reason Reason

	// Detail is an optional human-readable elaboration.
	Detail string

	// BackupPath is the absolute path of the pre-mutation backup copy,
	// set only when a backup was taken.
	BackupPath string
}

// RestoreEntry is the minimal slice of an execution log entry that rollback
// needs: the recorded status and the backup location.
type RestoreEntry struct {
	Status     string
	BackupPath string
}

// Operator executes confined filesystem mutations for one project root and
// one backup directory.
type Operator struct {
	projectDir string
	backupDir  string
	fs         fsops.FS
	hasher     hash.Hasher
	logger     *zap.Logger
}

// NewOperator creates an Operator rooted at projectDir, backing files up
// under backupDir. projectDir must exist; backupDir is created lazily by the
// first backup. Nil fs, hasher, and logger fall back to the real
// implementations (and a no-op logger).
func NewOperator(projectDir, backupDir string, fs fsops.FS, hasher hash.Hasher, logger *zap.Logger) (*Operator, error) {
	if fs == nil {
		fs = fsops.NewRealFS()
	}
	if hasher == nil {
		hasher = hash.NewSHA256Hasher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", abs)
	}

	absBackup, err := filepath.Abs(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup directory: %w", err)
	}

	return &Operator{
		projectDir: abs,
		backupDir:  absBackup,
		fs:         fs,
		hasher:     hasher,
		logger:     logger,
	}, nil
}

// Confine resolves a relative path against the project root and rejects any
// path whose resolved form escapes it. This is the sole defense between a
// crafted `..` path and a real delete or move.
func (o *Operator) Confine(rel string) (string, error) {
	if err := o.fs.ValidateRelPath(rel); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTraversal, err)
	}

	resolved := filepath.Join(o.projectDir, filepath.Clean(rel))
	if resolved != o.projectDir && !strings.HasPrefix(resolved, o.projectDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves to %q", ErrTraversal, rel, resolved)
	}

	return resolved, nil
}

// Delete removes the action's source file after backing it up. A missing
// source is reported as skipped, not an error: independent analyzers may
// propose deleting a file another action already removed.
func (o *Operator) Delete(a action.Action) Result {
	src, err := o.Confine(a.Source)
	if err != nil {
		return Result{Status: StatusError, Reason: ReasonTraversalBlocked, Detail: err.Error()}
	}

	exists, err := o.fs.Exists(src)
	if err != nil {
		return o.failure(err)
	}
	if !exists {
		o.logger.Warn("delete source not found on disk", zap.String("source", a.Source))
		return Result{Status: StatusSkipped, Reason: ReasonNotFound}
	}

	backup, err := o.backup(src, a.Source)
	if err != nil {
		return o.failure(err)
	}

	if err := o.fs.Remove(src); err != nil {
		return o.failure(err)
	}

	o.pruneEmptyParent(src)

	o.logger.Info("deleted file",
		zap.String("source", a.Source),
		zap.String("backup", backup))
	return Result{Status: StatusOK, BackupPath: backup}
}

// Move relocates the action's source to its destination after backing the
// source up. It fails if the source is absent or the destination already
// exists; an identical source and destination is a no-op.
func (o *Operator) Move(a action.Action) Result {
	src, err := o.Confine(a.Source)
	if err != nil {
		return Result{Status: StatusError, Reason: ReasonTraversalBlocked, Detail: err.Error()}
	}
	dst, err := o.Confine(a.Destination)
	if err != nil {
		return Result{Status: StatusError, Reason: ReasonTraversalBlocked, Detail: err.Error()}
	}

	exists, err := o.fs.Exists(src)
	if err != nil {
		return o.failure(err)
	}
	if !exists {
		o.logger.Warn("move source not found on disk", zap.String("source", a.Source))
		return Result{Status: StatusError, Reason: ReasonNotFound}
	}

	if src == dst {
		return Result{Status: StatusOK, Detail: "source and destination are identical"}
	}

	dstExists, err := o.fs.Exists(dst)
	if err != nil {
		return o.failure(err)
	}
	if dstExists {
		return Result{Status: StatusError, Reason: ReasonDestinationExists, Detail: a.Destination}
	}

	backup, err := o.backup(src, a.Source)
	if err != nil {
		return o.failure(err)
	}

	if err := o.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return o.failure(err)
	}
	if err := o.fs.Rename(src, dst); err != nil {
		return o.failure(err)
	}

	o.logger.Info("moved file",
		zap.String("source", a.Source),
		zap.String("destination", a.Destination),
		zap.String("backup", backup))
	return Result{Status: StatusOK, BackupPath: backup}
}

// Rollback replays an execution log in reverse order, copying each executed
// entry's backup file back to its original path. Entries that were skipped
// or errored are not touched. Returns the number of files restored.
func (o *Operator) Rollback(backupDir string, entries []RestoreEntry) int {
	count := 0
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.Status != "executed" && entry.Status != string(StatusOK) {
			continue
		}
		if entry.BackupPath == "" {
			continue
		}

		exists, err := o.fs.Exists(entry.BackupPath)
		if err != nil || !exists {
			o.logger.Warn("backup file not found for rollback", zap.String("backup", entry.BackupPath))
			continue
		}

		rel, err := filepath.Rel(backupDir, entry.BackupPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			o.logger.Warn("backup path outside backup directory", zap.String("backup", entry.BackupPath))
			continue
		}

		original := filepath.Join(o.projectDir, rel)
		if err := o.fs.CopyFile(entry.BackupPath, original); err != nil {
			o.logger.Error("rollback restore failed",
				zap.String("backup", entry.BackupPath),
				zap.Error(err))
			continue
		}

		o.logger.Info("restored file",
			zap.String("original", original),
			zap.String("backup", entry.BackupPath))
		count++
	}
	return count
}

// backup mirrors src under the backup directory, preserving its path
// relative to the project root. A hard link is preferred (cheap, same
// device); cross-device backups fall back to a full copy verified by hash.
func (o *Operator) backup(src, source string) (string, error) {
	dst := filepath.Join(o.backupDir, source)
	if err := o.fs.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if err := o.fs.Link(src, dst); err == nil {
		return dst, nil
	}

	if err := o.fs.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := o.verifyCopy(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// verifyCopy compares source and backup digests after a copy fallback.
func (o *Operator) verifyCopy(src, dst string) error {
	srcSum, err := o.hasher.HashFile(src)
	if err != nil {
		return fmt.Errorf("failed to hash source: %w", err)
	}
	dstSum, err := o.hasher.HashFile(dst)
	if err != nil {
		return fmt.Errorf("failed to hash backup: %w", err)
	}
	if srcSum != dstSum {
		return fmt.Errorf("backup digest mismatch for %s", src)
	}
	return nil
}

// pruneEmptyParent removes the parent directory of a deleted file if that
// directory is now empty. The project root itself is never removed.
func (o *Operator) pruneEmptyParent(src string) {
	parent := filepath.Dir(src)
	if parent == o.projectDir {
		return
	}
	entries, err := o.fs.ReadDir(parent)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := o.fs.Remove(parent); err != nil {
		o.logger.Warn("failed to remove empty parent directory",
			zap.String("dir", parent),
			zap.Error(err))
	}
}

// failure maps an OS-level error onto the closed reason set.
func (o *Operator) failure(err error) Result {
	reason := ReasonOSFailure
	if os.IsPermission(err) || errors.Is(err, os.ErrPermission) {
		reason = ReasonPermissionDenied
	}
	return Result{Status: StatusError, Reason: reason, Detail: err.Error()}
}
