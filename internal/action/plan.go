package action

import (
	"encoding/json"
	"fmt"
)

// Plan is an ordered sequence of actions plus the creation timestamp and the
// project root it was built against. A plan coming out of the conflict
// resolver carries no structural contradictions.
type Plan struct {
	// Actions is the ordered list of actions to execute.
	Actions []Action `json:"actions"`

	// CreatedAt is the RFC-3339 UTC creation time.
	CreatedAt string `json:"created_at"`

	// ProjectDir is the project root the plan targets.
	ProjectDir string `json:"project_dir"`
}

// Summary aggregates plan counts for reporting.
type Summary struct {
	Total  int
	ByRisk map[RiskLevel]int
	ByType map[ActionType]int
}

// Summarize counts the plan's actions by risk level and action type.
func (p *Plan) Summarize() Summary {
	s := Summary{
		Total:  len(p.Actions),
		ByRisk: map[RiskLevel]int{Low: 0, Medium: 0, High: 0},
		ByType: map[ActionType]int{AddIgnoreRule: 0, Delete: 0, Move: 0, ReportOnly: 0},
	}
	for _, a := range p.Actions {
		s.ByRisk[a.Risk]++
		s.ByType[a.Type]++
	}
	return s
}

// MarshalPlan serializes a plan to indented JSON.
func MarshalPlan(p *Plan) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return data, nil
}

// UnmarshalPlan parses a plan from JSON and validates every action in it.
func UnmarshalPlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	if failures := ValidateAll(p.Actions); len(failures) > 0 {
		return nil, fmt.Errorf("plan contains %d invalid action(s): first is %q (%v)",
			len(failures), failures[0].Action.Source, failures[0].Problems)
	}
	return &p, nil
}
