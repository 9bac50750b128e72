// Copyright Matt King, 2026. All rights reserved.

// Package plan reads and writes the CSV rename plans every mutating
// workflow leaves behind, and can apply, revert, or verify one against
// disk. See docs/ARCHITECTURE § Plans.
package plan

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattkingphysio/letterkit/internal/fsutil"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

var header = []string{"src", "dst", "status", "notes"}

// Write writes rows as a CSV plan with the standard header. The file
// handle is closed on every exit path.
func Write(path string, rows []types.PlanRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing plan header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Src, row.Dst, string(row.Status), row.Notes}); err != nil {
			return fmt.Errorf("writing plan row for %s: %w", row.Src, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing plan %s: %w", path, err)
	}
	return f.Close()
}

// Read parses a CSV plan. A leading header row is skipped when present.
func Read(path string) ([]types.PlanRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows []types.PlanRow
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing plan %s: %w", path, err)
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == "src" {
				continue
			}
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("plan %s: row has %d fields, want at least 3", path, len(rec))
		}
		row := types.PlanRow{Src: rec[0], Dst: rec[1], Status: types.PlanStatus(rec[2])}
		if len(rec) > 3 {
			row.Notes = rec[3]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ApplySummary counts the outcome of an apply or revert.
type ApplySummary struct {
	Applied int
	Skipped int
	Failed  int
}

// Total returns the number of rows considered.
func (s ApplySummary) Total() int { return s.Applied + s.Skipped + s.Failed }

// HasFailures reports whether any row failed.
func (s ApplySummary) HasFailures() bool { return s.Failed > 0 }

// Apply executes the pending moves of a plan. Rows whose status is not
// would-move are skipped. limit > 0 caps the number of moves; dryRun
// reports what would happen without touching disk. Outside dry-run,
// every executed row is updated in place with the path the file really
// landed on (a taken target diverts to a -2, -3, ... variant) and the
// moved status; the caller rewrites the rows so the log matches disk.
func Apply(rows []types.PlanRow, limit int, dryRun bool, w io.Writer) ApplySummary {
	var s ApplySummary
	for i := range rows {
		row := &rows[i]
		if row.Status != types.StatusWouldMove || row.Dst == "" {
			s.Skipped++
			continue
		}
		if limit > 0 && s.Applied >= limit {
			fmt.Fprintf(w, "skipped (limit) %s\n", row.Src)
			if !dryRun {
				row.Status = types.StatusSkippedLimit
			}
			s.Skipped++
			continue
		}
		if dryRun {
			fmt.Fprintf(w, "would move %s -> %s\n", row.Src, row.Dst)
			s.Applied++
			continue
		}
		target := fsutil.UniquePath(row.Dst)
		if err := fsutil.MoveFile(row.Src, target); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", row.Src, err)
			row.Status = types.StatusError
			row.Notes = err.Error()
			s.Failed++
			continue
		}
		row.Dst = target
		row.Status = types.StatusMoved
		fmt.Fprintf(w, "moved %s -> %s\n", row.Src, target)
		s.Applied++
	}
	return s
}

// Revert undoes the executed moves of a plan, restoring dst back to
// src. Only rows recorded as moved are considered: a pending row never
// ran, and restoring its planned target would drag whatever file sits
// there now onto src. The source slot must be free and the destination
// present. Restored rows go back to would-move so the plan can be
// re-applied or verified afterwards.
func Revert(rows []types.PlanRow, dryRun bool, w io.Writer) ApplySummary {
	var s ApplySummary
	for i := range rows {
		row := &rows[i]
		if row.Dst == "" || row.Status != types.StatusMoved {
			s.Skipped++
			continue
		}
		if _, err := os.Stat(row.Dst); err != nil {
			fmt.Fprintf(w, "skipped %s: destination missing\n", row.Dst)
			s.Skipped++
			continue
		}
		if _, err := os.Stat(row.Src); err == nil {
			fmt.Fprintf(w, "skipped %s: original path occupied\n", row.Src)
			s.Skipped++
			continue
		}
		if dryRun {
			fmt.Fprintf(w, "would restore %s -> %s\n", row.Dst, row.Src)
			s.Applied++
			continue
		}
		if err := fsutil.MoveFile(row.Dst, row.Src); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", row.Dst, err)
			s.Failed++
			continue
		}
		fmt.Fprintf(w, "restored %s -> %s\n", row.Dst, row.Src)
		row.Status = types.StatusWouldMove
		s.Applied++
	}
	return s
}

// RowState classifies one plan row against the filesystem.
type RowState string

const (
	// StatePending means the source still exists and the target is free.
	StatePending RowState = "pending"

	// StateApplied means the move already happened.
	StateApplied RowState = "applied"

	// StateConflict means both source and target exist.
	StateConflict RowState = "conflict"

	// StateMissing means neither path exists.
	StateMissing RowState = "missing"
)

// VerifyResult is the per-state row count plus the conflicting rows.
type VerifyResult struct {
	Counts    map[RowState]int
	Conflicts []types.PlanRow
	Missing   []types.PlanRow
}

// Clean reports whether no row is in a conflicting or missing state.
func (v VerifyResult) Clean() bool {
	return len(v.Conflicts) == 0 && len(v.Missing) == 0
}

// Verify checks every row with a destination against disk.
func Verify(rows []types.PlanRow) VerifyResult {
	res := VerifyResult{Counts: make(map[RowState]int)}
	for _, row := range rows {
		if row.Dst == "" {
			continue
		}
		state := classify(row)
		res.Counts[state]++
		switch state {
		case StateConflict:
			res.Conflicts = append(res.Conflicts, row)
		case StateMissing:
			res.Missing = append(res.Missing, row)
		}
	}
	return res
}

func classify(row types.PlanRow) RowState {
	_, srcErr := os.Stat(row.Src)
	_, dstErr := os.Stat(row.Dst)
	srcOK, dstOK := srcErr == nil, dstErr == nil
	switch {
	case srcOK && dstOK:
		return StateConflict
	case srcOK:
		return StatePending
	case dstOK:
		return StateApplied
	default:
		return StateMissing
	}
}
