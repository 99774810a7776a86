package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/cleansweep/internal/executor"
)

var (
	rollbackBackupDir  string
	rollbackProjectDir string
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore a project from a run's backup set",
	Long: `Load the execution log persisted in a backup directory and restore
every executed file to its original path, in reverse execution order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		restored, err := executor.Rollback(rollbackProjectDir, rollbackBackupDir, nil, nil, logger)
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}

		PrintSuccess(fmt.Sprintf("Restored %s from %s",
			PrintCount(restored, "file", "files"), rollbackBackupDir))
		return nil
	},
}

func init() {
	rollbackCmd.Flags().StringVar(&rollbackBackupDir, "backup-dir", "", "Backup directory of the run to undo (required)")
	rollbackCmd.Flags().StringVar(&rollbackProjectDir, "project-dir", "", "Project root to restore into (required)")
	_ = rollbackCmd.MarkFlagRequired("backup-dir")
	_ = rollbackCmd.MarkFlagRequired("project-dir")
}
