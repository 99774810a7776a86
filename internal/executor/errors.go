package executor

import "errors"

var (
	// ErrProjectRootMissing indicates the project root does not exist, which
	// makes the whole run meaningless. Surfaced before any backup directory
	// is created.
	ErrProjectRootMissing = errors.New("project root does not exist")

	// ErrAlreadyExecuted indicates Execute was called twice on one engine.
	ErrAlreadyExecuted = errors.New("plan already executed")

	// ErrLogMissing indicates a backup directory has no execution log.
	ErrLogMissing = errors.New("execution log not found in backup directory")
)
