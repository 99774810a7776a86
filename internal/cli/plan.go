package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/clock"
	"github.com/danieljhkim/cleansweep/internal/fsops"
	"github.com/danieljhkim/cleansweep/internal/planner"
)

var (
	planProposals  string
	planProjectDir string
	planMaxRisk    string
	planOutput     string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a conflict-free plan from analyzer proposals",
	Long: `Load analyzer proposal batches from a JSON file, merge them into one
deduplicated, risk-ordered plan, resolve structural conflicts, and save the
plan for a later 'cleansweep execute'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if info, err := os.Stat(planProjectDir); err != nil || !info.IsDir() {
			return fmt.Errorf("project directory %s does not exist", planProjectDir)
		}

		data, err := os.ReadFile(planProposals)
		if err != nil {
			return fmt.Errorf("failed to read proposals file: %w", err)
		}
		var results []action.AnalysisResult
		if err := json.Unmarshal(data, &results); err != nil {
			return fmt.Errorf("failed to parse proposals file: %w", err)
		}

		// Batch validation: report every problem, then refuse
		invalid := 0
		for _, result := range results {
			for _, failure := range action.ValidateAll(result.Actions) {
				invalid++
				PrintError(fmt.Sprintf("%s action %d (%s): %v",
					result.AnalyzerName, failure.Index, failure.Action.Source, failure.Problems))
			}
		}
		if invalid > 0 {
			return fmt.Errorf("proposals contain %d invalid action(s)", invalid)
		}

		maxRisk := planMaxRisk
		if maxRisk == "" {
			maxRisk = cfg.MaxRisk
		}
		if maxRisk == "" {
			maxRisk = "HIGH"
		}
		ceiling, err := action.ParseRiskLevel(maxRisk)
		if err != nil {
			return err
		}

		plan := planner.NewBuilder(results, planProjectDir, &clock.RealClock{}, logger).Build()
		planner.FilterMaxRisk(plan, ceiling)

		resolver := planner.NewResolver(plan, logger)
		plan = resolver.Resolve()

		if conflicts := resolver.Report(); len(conflicts) > 0 {
			PrintSection("Conflicts Resolved")
			for _, c := range conflicts {
				PrintWarning(fmt.Sprintf("%s %s: %s", c.Type, c.Source, c.Resolution))
			}
		}

		summary := plan.Summarize()
		PrintSection("Plan Summary")
		PrintLabelValue("Total actions", fmt.Sprintf("%d", summary.Total))
		for _, risk := range []action.RiskLevel{action.Low, action.Medium, action.High} {
			PrintLabelValue(PrintRisk(risk.String()), fmt.Sprintf("%d", summary.ByRisk[risk]))
		}

		if len(plan.Actions) > 0 {
			PrintSection("Actions")
			for _, a := range plan.Actions {
				line := fmt.Sprintf("  %-16s %-8s %s", a.Type, PrintRisk(a.Risk.String()), a.Source)
				if a.Destination != "" {
					line += " → " + a.Destination
				}
				if a.Conflict {
					line += "  (conflict)"
				}
				PrintInfo(line)
			}
		}

		planData, err := action.MarshalPlan(plan)
		if err != nil {
			return err
		}
		if err := fsops.NewRealFS().AtomicWrite(planOutput, planData, 0644); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}

		fmt.Println()
		PrintSuccess(fmt.Sprintf("Plan with %s saved to %s",
			PrintCount(len(plan.Actions), "action", "actions"), planOutput))
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planProposals, "proposals", "", "JSON file of analyzer proposal batches (required)")
	planCmd.Flags().StringVar(&planProjectDir, "project-dir", "", "Project root the plan targets (required)")
	planCmd.Flags().StringVar(&planMaxRisk, "max-risk", "", "Risk ceiling: LOW, MEDIUM or HIGH (default from config, else HIGH)")
	planCmd.Flags().StringVar(&planOutput, "output", "action_plan.json", "Where to write the plan")
	_ = planCmd.MarkFlagRequired("proposals")
	_ = planCmd.MarkFlagRequired("project-dir")
}
