// Package executor is the runtime gate between a resolved plan and the
// filesystem: it decides per action whether to apply, confirm, or refuse,
// creates a tamper-resistant backup before any mutation, and produces the
// execution log that makes every live run reversible.
package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/clock"
	"github.com/danieljhkim/cleansweep/internal/fileops"
	"github.com/danieljhkim/cleansweep/internal/fsops"
	"github.com/danieljhkim/cleansweep/internal/hash"
)

// ConfirmFunc answers an interactive confirmation prompt. Injected so the
// engine's control flow is testable without a terminal; production wiring
// attaches a real terminal prompt.
type ConfirmFunc func(prompt string) bool

// Options configures an Executor. The zero value is a dry run against the
// default filesystem: the engine never mutates disk unless Live is set
// explicitly.
type Options struct {
	// Live enables real mutations. False means dry run.
	Live bool

	// Confirm gates MEDIUM and HIGH risk actions. A nil Confirm in live
	// mode denies every gated action: with no confirmation source the cost
	// of an unwanted skip is far lower than the cost of an unwanted
	// mutation.
	Confirm ConfirmFunc

	// BackupRoot is the directory under which the run's backup set is
	// created. Required for live runs.
	BackupRoot string

	Clock  clock.Clock
	FS     fsops.FS
	Hasher hash.Hasher
	Logger *zap.Logger
}

// Executor walks a resolved plan and applies, simulates, or refuses each
// action. One Executor serves exactly one run.
type Executor struct {
	plan       *action.Plan
	projectDir string
	opts       Options
	done       bool
}

// New creates an Executor for one run of the given plan.
func New(plan *action.Plan, projectDir string, opts Options) *Executor {
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.FS == nil {
		opts.FS = fsops.NewRealFS()
	}
	if opts.Hasher == nil {
		opts.Hasher = hash.NewSHA256Hasher()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Executor{
		plan:       plan,
		projectDir: projectDir,
		opts:       opts,
	}
}

// Execute runs the plan once.
//
// Dry-run mode logs every action as a simulated step and returns a backup
// set with an empty log; no backup directory is created and the filesystem
// operator is never invoked.
//
// Live mode creates a fresh user-only backup directory, walks the plan in
// order gating each action by risk, dispatches confirmed actions to the
// filesystem operator, and persists the execution log into the backup
// directory. A single action's failure is captured as an error entry and
// does not abort the rest of the plan.
func (e *Executor) Execute() (*BackupSet, error) {
	if e.done {
		return nil, ErrAlreadyExecuted
	}
	e.done = true

	if _, err := os.Stat(e.projectDir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectRootMissing, e.projectDir)
	}

	runID := uuid.NewString()
	timestamp := e.opts.Clock.Now().UTC().Format(clock.BackupStamp)

	if !e.opts.Live {
		return e.dryRun(runID, timestamp), nil
	}
	return e.liveRun(runID, timestamp)
}

func (e *Executor) dryRun(runID, timestamp string) *BackupSet {
	for _, a := range e.plan.Actions {
		e.opts.Logger.Info("dry-run",
			zap.String("type", string(a.Type)),
			zap.String("source", a.Source),
			zap.String("destination", a.Destination),
			zap.String("risk", a.Risk.String()),
			zap.String("reason", a.Reason))
	}
	return &BackupSet{
		RunID:     runID,
		Timestamp: timestamp,
		Log:       []LogEntry{},
	}
}

func (e *Executor) liveRun(runID, timestamp string) (*BackupSet, error) {
	backupDir, err := e.createBackupDir(timestamp)
	if err != nil {
		return nil, err
	}

	op, err := fileops.NewOperator(e.projectDir, backupDir, e.opts.FS, e.opts.Hasher, e.opts.Logger)
	if err != nil {
		return nil, err
	}

	// The MEDIUM batch is decided once; the prompt covers the whole batch.
	mediumTotal := 0
	for _, a := range e.plan.Actions {
		if a.Risk == action.Medium {
			mediumTotal++
		}
	}
	mediumDecided := false
	mediumApproved := false

	set := &BackupSet{
		RunID:     runID,
		Timestamp: timestamp,
		BackupDir: backupDir,
		Log:       make([]LogEntry, 0, len(e.plan.Actions)),
	}

	// Walk in plan order: the resolver's move-chain ordering must survive
	// risk gating.
	for _, a := range e.plan.Actions {
		approved := false
		switch a.Risk {
		case action.Low:
			approved = true
		case action.Medium:
			if !mediumDecided {
				mediumDecided = true
				mediumApproved = e.confirm(fmt.Sprintf("Proceed with %d medium-risk action(s)?", mediumTotal))
			}
			approved = mediumApproved
		case action.High:
			approved = e.confirm(fmt.Sprintf("%s %s (HIGH risk: %s)?", a.Type, a.Source, a.Reason))
		}

		if !approved {
			e.opts.Logger.Info("action skipped by gate",
				zap.String("type", string(a.Type)),
				zap.String("source", a.Source),
				zap.String("risk", a.Risk.String()))
			set.Log = append(set.Log, LogEntry{Action: a, Status: StatusSkipped})
			continue
		}

		set.Log = append(set.Log, e.dispatch(op, a))
	}

	if err := set.Persist(e.opts.FS); err != nil {
		return set, err
	}
	return set, nil
}

// confirm applies the deny-by-default rule for gated actions.
func (e *Executor) confirm(prompt string) bool {
	if e.opts.Confirm == nil {
		return false
	}
	return e.opts.Confirm(prompt)
}

// dispatch routes one confirmed action to the filesystem operator and maps
// the structured result onto a log entry.
func (e *Executor) dispatch(op *fileops.Operator, a action.Action) LogEntry {
	var res fileops.Result
	switch a.Type {
	case action.Delete:
		res = op.Delete(a)
	case action.Move:
		res = op.Move(a)
	case action.AddIgnoreRule, action.ReportOnly:
		// No file operation: ignore rules are applied by the ignore-file
		// writer and report-only actions are notes.
		return LogEntry{Action: a, Status: StatusExecuted}
	default:
		return LogEntry{Action: a, Status: StatusError, Error: fmt.Sprintf("unknown action type %q", a.Type)}
	}

	switch res.Status {
	case fileops.StatusOK:
		return LogEntry{Action: a, Status: StatusExecuted, BackupPath: res.BackupPath}
	case fileops.StatusSkipped:
		return LogEntry{Action: a, Status: StatusSkipped, Error: string(res.Reason)}
	default:
		msg := string(res.Reason)
		if res.Detail != "" {
			msg = fmt.Sprintf("%s: %s", res.Reason, res.Detail)
		}
		return LogEntry{Action: a, Status: StatusError, Error: msg}
	}
}

// createBackupDir creates the run's timestamped backup directory under the
// backup root, restricted to the owning user: backed-up source files may
// contain embedded secrets.
func (e *Executor) createBackupDir(timestamp string) (string, error) {
	if e.opts.BackupRoot == "" {
		return "", fmt.Errorf("backup root is required for a live run")
	}
	dir := filepath.Join(e.opts.BackupRoot, timestamp)
	if err := e.opts.FS.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	// MkdirAll honors umask; force the mode
	if err := e.opts.FS.Chmod(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to restrict backup directory: %w", err)
	}
	return dir, nil
}

// Rollback loads the execution log persisted in backupDir and restores every
// executed entry to its original path under projectDir, in reverse order.
// Returns the number of files restored.
func Rollback(projectDir, backupDir string, fs fsops.FS, hasher hash.Hasher, logger *zap.Logger) (int, error) {
	if fs == nil {
		fs = fsops.NewRealFS()
	}
	if hasher == nil {
		hasher = hash.NewSHA256Hasher()
	}
	set, err := LoadBackupSet(fs, backupDir)
	if err != nil {
		return 0, err
	}

	op, err := fileops.NewOperator(projectDir, backupDir, fs, hasher, logger)
	if err != nil {
		return 0, err
	}
	return op.Rollback(backupDir, set.RestoreEntries()), nil
}
