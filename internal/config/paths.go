// Package config manages cleansweep configuration and filesystem paths.
//
// The backup root and other settings live under a user-scoped data
// directory, defaulting to ~/.cleansweep/ with backups/ and config.yaml
// inside. The root can be redirected with an environment variable so tests
// and sandboxed runs never touch the real home directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by cleansweep.
type Paths struct {
	// Root is the base directory for all cleansweep data (default: ~/.cleansweep)
	Root string

	// BackupRoot is the directory under which each live run creates its
	// timestamped backup set
	BackupRoot string

	// Config is the path to the global config file
	Config string
}

// DefaultPaths returns the default paths for cleansweep.
// Paths can be overridden with environment variables:
// - CLEANSWEEP_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("CLEANSWEEP_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".cleansweep")
	}

	return &Paths{
		Root:       root,
		BackupRoot: filepath.Join(root, "backups"),
		Config:     filepath.Join(root, "config.yaml"),
	}, nil
}

// EnsureDirectories creates all necessary directories if they don't exist.
// The backup root is user-only: backed-up files may contain embedded secrets.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	if err := os.MkdirAll(p.BackupRoot, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.BackupRoot, err)
	}
	return nil
}
