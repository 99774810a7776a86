// Package cli wires the planning and execution core to a terminal: loading
// analyzer proposals, building and resolving plans, running them against a
// project directory, and rolling runs back.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
)

// rootCmd is the root command for cleansweep.
var rootCmd = &cobra.Command{
	Use:     "cleansweep",
	Version: "dev",
	Short:   "Plan and safely execute filesystem cleanups",
	Long: `cleansweep turns analyzer proposals into a deduplicated, conflict-free,
risk-ordered plan, then applies that plan with mandatory backups and
guaranteed rollback.

Every live run mirrors each touched file into a timestamped backup set
before mutating it; 'cleansweep rollback' restores a run from that set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion overrides the version shown by --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the CLI logger: quiet by default, development output
// with --verbose.
func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(rollbackCmd)
}
