// Copyright Matt King, 2026. All rights reserved.

package types

// PlanStatus is the lifecycle state of one planned file operation.
type PlanStatus string

const (
	// StatusWouldMove is a planned move not yet executed (dry-run).
	StatusWouldMove PlanStatus = "would-move"

	// StatusMoved is an executed move.
	StatusMoved PlanStatus = "moved"

	// StatusSkippedLimit marks a row skipped by --limit.
	StatusSkippedLimit PlanStatus = "skipped-limit"

	// StatusKeep marks a duplicate left in place (dedup without
	// --delete-duplicates).
	StatusKeep PlanStatus = "keep"

	// StatusDeleted is an executed duplicate deletion.
	StatusDeleted PlanStatus = "deleted"

	// StatusMissing marks a source file that disappeared before planning.
	StatusMissing PlanStatus = "missing"

	// StatusError marks a failed operation; Notes carries the error.
	StatusError PlanStatus = "error"
)

// PlanRow is one line of a rename or dedup plan. Plans are written as
// CSV so a run can be audited, verified against disk, and reverted.
type PlanRow struct {
	// Src is the file's path before the operation.
	Src string `json:"src" yaml:"src"`

	// Dst is the target path. Empty for rows that plan no move.
	Dst string `json:"dst" yaml:"dst"`

	// Status is the row's state after the run that wrote the plan.
	Status PlanStatus `json:"status" yaml:"status"`

	// Notes carries audit detail (inference diffs, error text).
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}
