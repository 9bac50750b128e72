// Copyright Matt King, 2026. All rights reserved.

// Package dedup flattens a tree of PDFs into one folder and removes
// exact duplicates by content hash. Conservative by default: without
// Apply it only writes a CSV plan. See docs/ARCHITECTURE § Dedup.
package dedup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattkingphysio/letterkit/internal/fsutil"
	"github.com/mattkingphysio/letterkit/internal/plan"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

// Keeper policies for choosing which of several identical files survives.
const (
	KeepCleanSuffix   = "clean-suffix"
	KeepLargest       = "largest"
	KeepNewest        = "newest"
	KeepNewestLargest = "newest-largest"
)

// Options configures a dedup run.
type Options struct {
	// Root is the folder scanned recursively for PDFs.
	Root string

	// FlatDir receives the unique files. Empty defaults to
	// Root/flat-<timestamp>.
	FlatDir string

	// LogPath is the CSV plan/log. Empty defaults to
	// FlatDir/flatten-dedup-log-<timestamp>.csv.
	LogPath string

	// Apply executes the moves and deletions; otherwise dry-run.
	Apply bool

	// DeleteDuplicates removes non-keepers instead of leaving them.
	DeleteDuplicates bool

	// KeepPolicy is one of the Keep* constants (default newest-largest).
	KeepPolicy string
}

// Result summarizes a run.
type Result struct {
	Candidates      int
	UniqueHashes    int
	DuplicateGroups int
	Moved           int
	Deleted         int
	PlanPath        string
}

// Run scans, hashes, plans, writes the CSV plan, and (with Apply)
// executes it. Per-file progress goes to w.
func Run(opts Options, w io.Writer) (Result, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return Result{}, err
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Result{}, fmt.Errorf("root not found or not a directory: %s", root)
	}

	ts := time.Now().Format("20060102-150405")
	flatDir := opts.FlatDir
	if flatDir == "" {
		flatDir = filepath.Join(root, "flat-"+ts)
	}
	logPath := opts.LogPath
	if logPath == "" {
		logPath = filepath.Join(flatDir, "flatten-dedup-log-"+ts+".csv")
	}
	policy := opts.KeepPolicy
	if policy == "" {
		policy = KeepNewestLargest
	}

	candidates, err := gather(root, flatDir)
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(w, "found %d candidate files under %s\n", len(candidates), root)

	groups := make(map[string][]string)
	for i, path := range candidates {
		h, err := fsutil.Sha256File(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			continue
		}
		groups[h] = append(groups[h], path)
		if (i+1)%50 == 0 {
			fmt.Fprintf(w, "hashed %d/%d files\n", i+1, len(candidates))
		}
	}

	res := Result{Candidates: len(candidates), PlanPath: logPath}
	rows := planRows(groups, flatDir, policy, opts.DeleteDuplicates, &res)

	if err := fsutil.EnsureDirs(flatDir); err != nil {
		return Result{}, err
	}
	if err := plan.Write(logPath, rows); err != nil {
		return Result{}, err
	}
	fmt.Fprintf(w, "plan written to %s (%d unique, %d duplicate groups)\n",
		logPath, res.UniqueHashes, res.DuplicateGroups)

	if !opts.Apply {
		fmt.Fprintln(w, "dry-run only; rerun with --apply to execute")
		return res, nil
	}

	for i := range rows {
		row := &rows[i]
		switch {
		case row.Dst == "" && opts.DeleteDuplicates:
			if err := os.Remove(row.Src); err != nil {
				fmt.Fprintf(w, "failed  delete %s: %v\n", row.Src, err)
				row.Status = types.StatusError
				row.Notes = err.Error()
				continue
			}
			row.Status = types.StatusDeleted
			res.Deleted++
		case row.Dst != "":
			if sameFile(row.Src, row.Dst) {
				continue
			}
			target := fsutil.UniquePath(row.Dst)
			if err := fsutil.MoveFile(row.Src, target); err != nil {
				fmt.Fprintf(w, "failed  move %s: %v\n", row.Src, err)
				row.Status = types.StatusError
				row.Notes = err.Error()
				continue
			}
			row.Dst = target
			row.Status = types.StatusMoved
			res.Moved++
		}
	}

	// The rows now carry the executed targets and statuses; rewrite the
	// log so it records what actually happened.
	if err := plan.Write(logPath, rows); err != nil {
		return res, err
	}
	fmt.Fprintf(w, "applied: moved=%d deleted=%d\n", res.Moved, res.Deleted)
	return res, nil
}

// gather collects every PDF-like file under root, skipping the flat
// directory itself. Files with mangled suffixes (".pdf_", ".pdfx",
// "x.pdf.pdf") count as candidates too.
func gather(root, flatDir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == flatDir {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".pdf") || strings.Contains(name, ".pdf") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// planRows builds the plan: one keeper per hash group moves to the flat
// dir under a cleaned name; the rest delete (Dst empty) or stay.
func planRows(groups map[string][]string, flatDir, policy string, deleteDups bool, res *Result) []types.PlanRow {
	hashes := make([]string, 0, len(groups))
	for h := range groups {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	var rows []types.PlanRow
	seen := make(map[string]bool)
	for _, h := range hashes {
		paths := groups[h]
		sort.Strings(paths)
		if len(paths) == 1 {
			res.UniqueHashes++
		} else {
			res.DuplicateGroups++
		}
		keeper := pickKeeper(paths, policy)
		for _, p := range paths {
			if p != keeper {
				status := types.StatusWouldMove
				if !deleteDups {
					status = types.StatusKeep
				}
				rows = append(rows, types.PlanRow{Src: p, Status: status, Notes: "duplicate of " + keeper})
				continue
			}
			target := filepath.Join(flatDir, cleanName(filepath.Base(p)))
			ext := filepath.Ext(target)
			stem := strings.TrimSuffix(target, ext)
			for n := 2; seen[target]; n++ {
				target = fmt.Sprintf("%s-%d%s", stem, n, ext)
			}
			seen[target] = true
			rows = append(rows, types.PlanRow{Src: p, Dst: target, Status: types.StatusWouldMove, Notes: "sha256:" + h})
		}
	}
	return rows
}

// pickKeeper chooses the surviving copy of a duplicate group.
func pickKeeper(paths []string, policy string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	switch policy {
	case KeepLargest:
		return maxBy(paths, func(p string) int64 { return fileSize(p) })
	case KeepNewest:
		return maxBy(paths, func(p string) int64 { return fileMtime(p) })
	case KeepNewestLargest:
		best := paths[0]
		for _, p := range paths[1:] {
			if fileMtime(p) > fileMtime(best) ||
				(fileMtime(p) == fileMtime(best) && fileSize(p) > fileSize(best)) {
				best = p
			}
		}
		return best
	default: // clean-suffix
		return maxBy(paths, func(p string) int64 {
			var s int64
			if strings.EqualFold(filepath.Ext(p), ".pdf") {
				s += 1 << 30
			}
			lower := strings.ToLower(p)
			if strings.HasSuffix(lower, ".pdf_") || strings.HasSuffix(lower, ".pdf~") || strings.HasSuffix(lower, ".pdfx") {
				s -= 1 << 20
			}
			return s + fileSize(p)
		})
	}
}

// cleanName trims everything after the last ".pdf" in the name,
// repairing suffixes like ".pdf_", ".pdf~", and ".pdf.pdf".
func cleanName(name string) string {
	lower := strings.ToLower(name)
	if idx := strings.LastIndex(lower, ".pdf"); idx >= 0 {
		name = name[:idx+4]
	}
	name = strings.TrimRight(name, " _~.-")
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func maxBy(paths []string, score func(string) int64) string {
	best := paths[0]
	bestScore := score(best)
	for _, p := range paths[1:] {
		if s := score(p); s > bestScore {
			best, bestScore = p, s
		}
	}
	return best
}

func fileSize(p string) int64 {
	info, err := os.Stat(p)
	if err != nil {
		return 0
	}
	return info.Size()
}

func fileMtime(p string) int64 {
	info, err := os.Stat(p)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

func sameFile(a, b string) bool {
	ra, err1 := filepath.Abs(a)
	rb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && ra == rb
}
