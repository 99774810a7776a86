package planner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/danieljhkim/cleansweep/internal/action"
)

// ConflictType identifies the class of a detected conflict.
type ConflictType string

// Conflict class constants.
const (
	ConflictDeleteMove    ConflictType = "DELETE_MOVE_CONFLICT"
	ConflictDuplicateMove ConflictType = "DUPLICATE_MOVE_CONFLICT"
	ConflictRedundantDel  ConflictType = "REDUNDANT_DELETE"
	ConflictMoveCycle     ConflictType = "MOVE_CYCLE"
)

// Conflict is one audit record of a detected contradiction and the
// deterministic resolution that was applied.
type Conflict struct {
	// Type is the conflict class.
	Type ConflictType `json:"type"`

	// Source is the path (or paths, comma-joined for cycles) involved.
	Source string `json:"source"`

	// Resolution describes the action taken.
	Resolution string `json:"resolution"`
}

// Resolver detects and resolves structural contradictions in a built plan.
//
// Passes run in a fixed order over an in-memory slice (never map iteration
// order); later passes must not reintroduce conflicts resolved earlier:
//  1. Delete vs. move on the same source
//  2. Two moves with the same source, different destinations
//  3. Deletes made redundant by an ignore-rule addition
//  4. Move-chain reordering (with cycle detection)
//
// Chain reordering runs strictly last so that source and duplicate conflicts
// have already pruned the action set before the move graph is built.
type Resolver struct {
	plan      *action.Plan
	conflicts []Conflict
	logger    *zap.Logger
}

// NewResolver creates a Resolver for the given plan.
// A nil logger is replaced with a no-op logger.
func NewResolver(plan *action.Plan, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{plan: plan, logger: logger}
}

// Resolve runs all conflict passes in order and returns a plan with zero
// structural contradictions. Every action touched by a resolution carries
// conflict=true. A plan with zero actions returns unchanged.
func (r *Resolver) Resolve() *action.Plan {
	actions := make([]action.Action, len(r.plan.Actions))
	copy(actions, r.plan.Actions)

	actions = r.resolveDeleteMove(actions)
	actions = r.resolveDuplicateMoves(actions)
	actions = r.dropRedundantDeletes(actions)
	actions = r.reorderMoveChains(actions)

	return &action.Plan{
		Actions:    actions,
		CreatedAt:  r.plan.CreatedAt,
		ProjectDir: r.plan.ProjectDir,
	}
}

// Report returns the audit records for every conflict that was detected,
// in detection order. Empty when the plan was already contradiction-free.
func (r *Resolver) Report() []Conflict {
	return r.conflicts
}

// resolveDeleteMove drops any DELETE whose source is also the source of a
// MOVE: a file cannot be both removed and relocated. The surviving move is
// flagged and escalated to HIGH risk: a file independently flagged for
// deletion and relocation deserves manual review even if each action alone
// looked safe.
func (r *Resolver) resolveDeleteMove(actions []action.Action) []action.Action {
	moveSources := make(map[string]bool)
	deleteSources := make(map[string]bool)
	for _, a := range actions {
		switch a.Type {
		case action.Move:
			moveSources[a.Source] = true
		case action.Delete:
			deleteSources[a.Source] = true
		}
	}

	kept := actions[:0]
	for _, a := range actions {
		if a.Type == action.Delete && moveSources[a.Source] {
			r.record(ConflictDeleteMove, a.Source, "DELETE removed, MOVE kept with HIGH risk")
			continue
		}
		if a.Type == action.Move && deleteSources[a.Source] {
			a.Conflict = true
			a.Risk = action.High
		}
		kept = append(kept, a)
	}
	return kept
}

// resolveDuplicateMoves keeps exactly one MOVE per source: the one that
// sorts first under the builder's ordering (lowest risk, ties broken by
// destination path). The survivor is flagged so reports show the ambiguity.
func (r *Resolver) resolveDuplicateMoves(actions []action.Action) []action.Action {
	bySource := make(map[string][]int)
	var sources []string
	for i, a := range actions {
		if a.Type == action.Move {
			if _, seen := bySource[a.Source]; !seen {
				sources = append(sources, a.Source)
			}
			bySource[a.Source] = append(bySource[a.Source], i)
		}
	}

	// Iterate in first-occurrence order so the report is deterministic
	drop := make(map[int]bool)
	for _, source := range sources {
		indices := bySource[source]
		if len(indices) < 2 {
			continue
		}

		winner := indices[0]
		for _, i := range indices[1:] {
			if less := moveLess(actions[i], actions[winner]); less {
				winner = i
			}
		}

		var dropped []string
		for _, i := range indices {
			if i != winner {
				drop[i] = true
				dropped = append(dropped, actions[i].Destination)
			}
		}
		actions[winner].Conflict = true

		r.record(ConflictDuplicateMove, source,
			fmt.Sprintf("kept MOVE to %s, dropped %s", actions[winner].Destination, strings.Join(dropped, ", ")))
	}

	if len(drop) == 0 {
		return actions
	}
	kept := actions[:0]
	for i, a := range actions {
		if !drop[i] {
			kept = append(kept, a)
		}
	}
	return kept
}

// moveLess orders competing moves by (risk, destination).
func moveLess(a, b action.Action) bool {
	if a.Risk != b.Risk {
		return a.Risk < b.Risk
	}
	return a.Destination < b.Destination
}

// dropRedundantDeletes removes any DELETE whose source lies under a
// directory with an ADD_IGNORE_RULE action: the directory is about to stop
// being tracked, so deleting files inside it individually adds risk for no
// benefit.
func (r *Resolver) dropRedundantDeletes(actions []action.Action) []action.Action {
	var ignoredDirs []string
	for _, a := range actions {
		if a.Type == action.AddIgnoreRule {
			ignoredDirs = append(ignoredDirs, strings.TrimRight(a.Source, "/"))
		}
	}
	if len(ignoredDirs) == 0 {
		return actions
	}

	kept := actions[:0]
	for _, a := range actions {
		if a.Type == action.Delete {
			covered := ""
			for _, dir := range ignoredDirs {
				if strings.HasPrefix(a.Source, dir+"/") {
					covered = dir
					break
				}
			}
			if covered != "" {
				r.record(ConflictRedundantDel, a.Source,
					fmt.Sprintf("DELETE removed, covered by ADD_IGNORE_RULE for %s", covered))
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

// reorderMoveChains topologically sorts moves so a file is moved out of a
// location before another file is moved into it: when A moves X→Y and B
// moves Y→Z, B must execute first. Non-move actions keep their relative
// positions ahead of the move block. Ready moves are dequeued in their
// pre-existing plan order, so the builder's ordering is the tie-break.
//
// A cycle (X→Y, Y→X) is not resolvable automatically: its members are
// flagged, escalated to HIGH risk, and appended in their original relative
// order for manual resolution.
func (r *Resolver) reorderMoveChains(actions []action.Action) []action.Action {
	var nonMoves []action.Action
	var moves []int
	for i, a := range actions {
		if a.Type == action.Move {
			moves = append(moves, i)
		} else {
			nonMoves = append(nonMoves, a)
		}
	}
	if len(moves) == 0 {
		return nonMoves
	}

	// After the duplicate pass each source has at most one move.
	bySource := make(map[string]int, len(moves))
	for _, i := range moves {
		bySource[actions[i].Source] = i
	}

	// successors[x] lists moves that must execute after move x:
	// a move depends on the move that vacates its destination.
	successors := make(map[int][]int)
	inDegree := make(map[int]int, len(moves))
	for _, i := range moves {
		inDegree[i] = 0
	}
	for _, i := range moves {
		if other, ok := bySource[actions[i].Destination]; ok && other != i {
			successors[other] = append(successors[other], i)
			inDegree[i]++
		}
	}

	// Stable Kahn: the queue is seeded and extended in plan order.
	var queue []int
	for _, i := range moves {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	var ordered []action.Action
	done := make(map[int]bool, len(moves))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, actions[i])
		done[i] = true
		for _, succ := range successors[i] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	// Anything left is part of a cycle: flag, escalate, keep original order.
	if len(done) < len(moves) {
		var cycleSources []string
		for _, i := range moves {
			if !done[i] {
				a := actions[i]
				a.Conflict = true
				a.Risk = action.High
				ordered = append(ordered, a)
				cycleSources = append(cycleSources, a.Source)
			}
		}
		r.record(ConflictMoveCycle, strings.Join(cycleSources, ", "),
			"move cycle cannot be resolved automatically, flagged for manual review")
	}

	return append(nonMoves, ordered...)
}

// record appends one audit entry and logs it.
func (r *Resolver) record(ct ConflictType, source, resolution string) {
	r.conflicts = append(r.conflicts, Conflict{Type: ct, Source: source, Resolution: resolution})
	r.logger.Warn("conflict resolved",
		zap.String("type", string(ct)),
		zap.String("source", source),
		zap.String("resolution", resolution))
}
