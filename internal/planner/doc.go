// Package planner turns independently-generated analyzer proposals into a
// deduplicated, conflict-free, risk-ordered execution plan.
//
// The Builder merges proposal batches into one canonical plan; the Resolver
// then removes structural contradictions (competing deletes and moves,
// ambiguous move targets, redundant deletes, move chains) with deterministic
// resolutions and an auditable conflict report. Both stages are pure,
// single-threaded transformations that never touch disk.
package planner
