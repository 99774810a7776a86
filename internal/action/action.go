// Package action defines the shared vocabulary for proposed filesystem
// mutations: the Action record, risk levels with a total order, the
// Plan container, and the analyzer result batch consumed by the
// planner.
//
// Actions are created by analyzers, reshaped by the planner and conflict
// resolver, and treated as immutable once handed to the executor. All
// entities serialize losslessly to JSON (enums as their string names) so a
// plan can be persisted between the planning phase and a later execution
// phase.
package action

import (
	"encoding/json"
	"fmt"
)

// ActionType identifies the kind of mutation an action proposes.
// The set is closed; dispatch over it must stay exhaustive.
type ActionType string

// Action type constants
const (
	Delete        ActionType = "DELETE"
	Move          ActionType = "MOVE"
	AddIgnoreRule ActionType = "ADD_IGNORE_RULE"
	ReportOnly    ActionType = "REPORT_ONLY"
)

// ParseActionType converts a serialized name back into an ActionType.
func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case Delete, Move, AddIgnoreRule, ReportOnly:
		return ActionType(s), nil
	default:
		return "", fmt.Errorf("unknown action type %q", s)
	}
}

// RiskLevel classifies how much human confirmation an action requires.
// Levels are totally ordered: Low < Medium < High.
type RiskLevel int

// Risk level constants, in ascending order of required caution.
const (
	Low RiskLevel = iota
	Medium
	High
)

// String returns the serialized name of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
}

// ParseRiskLevel converts a serialized name back into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return Low, nil
	case "MEDIUM":
		return Medium, nil
	case "HIGH":
		return High, nil
	default:
		return Low, fmt.Errorf("unknown risk level %q", s)
	}
}

// Less reports whether r is strictly safer than other.
func (r RiskLevel) Less(other RiskLevel) bool {
	return r < other
}

// MarshalJSON serializes the risk level as its string name.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON parses the risk level from its string name.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Action is one proposed filesystem mutation or report note.
//
// Source and Destination are paths relative to the project root.
// Destination is required for MOVE actions and forbidden for every other
// type. Conflict is set only by the conflict resolver.
type Action struct {
	Type        ActionType `json:"action_type"`
	Source      string     `json:"source"`
	Destination string     `json:"destination,omitempty"`
	Risk        RiskLevel  `json:"risk_level"`
	Reason      string     `json:"reason"`
	Conflict    bool       `json:"conflict"`
}

// Validate checks the action's structural invariants and returns one error
// string per violation. An empty slice means the action is valid. Returning
// a list rather than failing on the first problem lets callers batch-validate
// an entire proposal set and report every problem at once.
func (a Action) Validate() []string {
	var errs []string

	if a.Source == "" {
		errs = append(errs, "source must be non-empty")
	}
	if a.Reason == "" {
		errs = append(errs, "reason must be non-empty")
	}

	switch a.Type {
	case Move:
		if a.Destination == "" {
			errs = append(errs, "MOVE action must have a non-empty destination")
		}
	case Delete:
		if a.Destination != "" {
			errs = append(errs, "DELETE action must not have a destination")
		}
	case AddIgnoreRule, ReportOnly:
		if a.Destination != "" {
			errs = append(errs, fmt.Sprintf("%s action must not have a destination", a.Type))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown action type %q", a.Type))
	}

	return errs
}

// ValidationError describes every problem found in one action of a batch.
type ValidationError struct {
	// Index is the position of the offending action in the validated slice.
	Index int

	// Action is the offending action.
	Action Action

	// Problems is the list of violated invariants.
	Problems []string
}

// ValidateAll validates a batch of actions and returns one entry per invalid
// action. A nil result means every action is valid.
func ValidateAll(actions []Action) []ValidationError {
	var failures []ValidationError
	for i, a := range actions {
		if problems := a.Validate(); len(problems) > 0 {
			failures = append(failures, ValidationError{
				Index:    i,
				Action:   a,
				Problems: problems,
			})
		}
	}
	return failures
}

// AnalysisResult is one analyzer's batch of proposed actions.
// Only Actions is consumed by the planner; AnalyzerName is kept for
// traceability and Metadata is passed through untouched for reporting.
type AnalysisResult struct {
	AnalyzerName string         `json:"analyzer_name"`
	Actions      []Action       `json:"actions"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}
