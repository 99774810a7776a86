package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/executor"
	"github.com/danieljhkim/cleansweep/internal/gitignore"
)

var (
	execPlanFile   string
	execProjectDir string
	execLive       bool
	execYes        bool
)

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a saved plan (dry run unless --live)",
	Long: `Run a saved plan against a project directory. Dry run is the default
and touches nothing; --live mutates the project after backing up every
affected file into a timestamped backup set.

Medium-risk actions are confirmed once as a batch; high-risk actions are
confirmed one by one. --yes answers every prompt with yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		paths, _, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(execPlanFile)
		if err != nil {
			return fmt.Errorf("failed to read plan file: %w", err)
		}
		plan, err := action.UnmarshalPlan(data)
		if err != nil {
			return err
		}

		if !execLive {
			PrintWarning("Dry run: no files will be modified. Pass --live to apply.")
		}

		var confirm executor.ConfirmFunc
		if execYes {
			confirm = approveAll
		} else {
			confirm = terminalConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		exec := executor.New(plan, execProjectDir, executor.Options{
			Live:       execLive,
			Confirm:    confirm,
			BackupRoot: paths.BackupRoot,
			Logger:     logger,
		})
		set, err := exec.Execute()
		if err != nil {
			return err
		}

		// Ignore rules go through the ignore-file writer, not the executor.
		writer := gitignore.NewWriter(execProjectDir, nil, nil, logger)
		diff, err := writer.Apply(plan.Actions, !execLive)
		if err != nil {
			return err
		}
		if diff != "" {
			PrintSection("Ignore File Changes")
			PrintInfo(diff)
		}

		tally := set.Tally()
		PrintSection("Run Summary")
		PrintLabelValue("Run ID", set.RunID)
		PrintLabelValue("Executed", fmt.Sprintf("%d", tally.Executed))
		PrintLabelValue("Skipped", fmt.Sprintf("%d", tally.Skipped))
		PrintLabelValue("Errors", fmt.Sprintf("%d", tally.Errors))

		if !execLive {
			PrintSuccess(fmt.Sprintf("Dry run of %s complete",
				PrintCount(len(plan.Actions), "action", "actions")))
			return nil
		}

		PrintLabelValue("Backup", set.BackupDir)
		if tally.Errors > 0 {
			PrintWarning(fmt.Sprintf("Run finished with %s; see the execution log in %s",
				PrintCount(tally.Errors, "error", "errors"), set.BackupDir))
			return nil
		}
		PrintSuccess(fmt.Sprintf("Executed %s; rollback with: cleansweep rollback --backup-dir %s --project-dir %s",
			PrintCount(tally.Executed, "action", "actions"), set.BackupDir, execProjectDir))
		return nil
	},
}

func init() {
	executeCmd.Flags().StringVar(&execPlanFile, "plan", "", "Plan file produced by 'cleansweep plan' (required)")
	executeCmd.Flags().StringVar(&execProjectDir, "project-dir", "", "Project root the plan targets (required)")
	executeCmd.Flags().BoolVar(&execLive, "live", false, "Apply the plan instead of simulating it")
	executeCmd.Flags().BoolVar(&execYes, "yes", false, "Answer yes to every confirmation prompt")
	_ = executeCmd.MarkFlagRequired("plan")
	_ = executeCmd.MarkFlagRequired("project-dir")
}
