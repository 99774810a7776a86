package planner

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/danieljhkim/cleansweep/internal/action"
	"github.com/danieljhkim/cleansweep/internal/clock"
)

// typeOrder is the execution priority of each action type: ignore-rule
// additions land first (non-destructive, and later passes depend on them),
// then deletes, then moves, with report-only actions last since they have no
// side effect.
var typeOrder = map[action.ActionType]int{
	action.AddIgnoreRule: 0,
	action.Delete:        1,
	action.Move:          2,
	action.ReportOnly:    3,
}

// Builder merges proposal batches from multiple analyzers into one
// canonical, deduplicated, deterministically ordered plan.
type Builder struct {
	results    []action.AnalysisResult
	projectDir string
	clock      clock.Clock
	logger     *zap.Logger
}

// NewBuilder creates a Builder over the given analyzer results.
// A nil clock defaults to the system clock; a nil logger is replaced with a
// no-op logger.
func NewBuilder(results []action.AnalysisResult, projectDir string, clk clock.Clock, logger *zap.Logger) *Builder {
	if clk == nil {
		clk = &clock.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		results:    results,
		projectDir: projectDir,
		clock:      clk,
		logger:     logger,
	}
}

// Build produces the plan. Algorithm steps:
// 1. Flatten all proposed actions into one sequence
// 2. Deduplicate by (type, source), keeping the most conservative risk
// 3. Sort by risk, then type priority, then source path
// 4. Stamp with the UTC creation time and the project root
// An empty input yields a valid empty plan; this stage never fails.
func (b *Builder) Build() *action.Plan {
	var all []action.Action
	for _, result := range b.results {
		b.logger.Debug("collecting analyzer proposals",
			zap.String("analyzer", result.AnalyzerName),
			zap.Int("actions", len(result.Actions)))
		all = append(all, result.Actions...)
	}

	deduped := deduplicate(all)
	sortActions(deduped)

	return &action.Plan{
		Actions:    deduped,
		CreatedAt:  b.clock.Now().UTC().Format(time.RFC3339),
		ProjectDir: b.projectDir,
	}
}

// deduplicate collapses actions sharing (type, source) into the one with the
// lowest risk label: independent heuristics agreeing an action is needed
// means trusting the most conservative risk estimate. First occurrence wins
// ties so the result is independent of map iteration order.
func deduplicate(actions []action.Action) []action.Action {
	type key struct {
		t action.ActionType
		s string
	}

	best := make(map[key]int, len(actions))
	var order []key

	for i, a := range actions {
		k := key{t: a.Type, s: a.Source}
		if j, seen := best[k]; !seen {
			best[k] = i
			order = append(order, k)
		} else if a.Risk.Less(actions[j].Risk) {
			best[k] = i
		}
	}

	kept := make([]action.Action, 0, len(order))
	for _, k := range order {
		kept = append(kept, actions[best[k]])
	}
	return kept
}

// sortActions orders the plan with a three-level key: ascending risk, then
// action-type priority, then source path for determinism.
func sortActions(actions []action.Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Risk != actions[j].Risk {
			return actions[i].Risk < actions[j].Risk
		}
		if typeOrder[actions[i].Type] != typeOrder[actions[j].Type] {
			return typeOrder[actions[i].Type] < typeOrder[actions[j].Type]
		}
		return actions[i].Source < actions[j].Source
	})
}

// FilterMaxRisk removes actions riskier than the given ceiling.
func FilterMaxRisk(plan *action.Plan, ceiling action.RiskLevel) {
	kept := plan.Actions[:0]
	for _, a := range plan.Actions {
		if !ceiling.Less(a.Risk) {
			kept = append(kept, a)
		}
	}
	plan.Actions = kept
}
