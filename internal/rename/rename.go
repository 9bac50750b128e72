// Copyright Matt King, 2026. All rights reserved.

// Package rename batch-renames a folder of clinical papers to the
// standard "Surname-Year-kebab-title.pdf" shape. Metadata comes from
// the document info dictionary when it is plausible, from the first two
// pages of text when it is not, and from CrossRef when the text carries
// a DOI. Apply runs snapshot the source folder first and every decision
// lands in CSV logs. See docs/ARCHITECTURE § Rename.
package rename

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mattkingphysio/letterkit/internal/crossref"
	"github.com/mattkingphysio/letterkit/internal/fsutil"
	"github.com/mattkingphysio/letterkit/internal/pdfops"
	"github.com/mattkingphysio/letterkit/internal/plan"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

// maxFilenameLen caps generated names; longer names are truncated and
// suffixed with a hash tail so collisions stay distinguishable.
const maxFilenameLen = 220

// Options configures a rename run.
type Options struct {
	Cfg   types.RenameConfig
	Apply bool
	Limit int // > 0 caps the number of renames

	// SkipBackup suppresses the pre-apply snapshot.
	SkipBackup bool

	// Resolver is the DOI lookup client. nil with LookupDOI set builds
	// a default client from Cfg.
	Resolver *crossref.Client
}

// Meta is the bibliographic metadata a target filename is built from.
type Meta struct {
	Surname string
	Year    int
	Title   string
	Source  string // "info", "text", or "crossref"
}

// Complete reports whether the metadata suffices for a rename.
func (m Meta) Complete() bool {
	return m.Surname != "" && m.Title != ""
}

// Result summarizes a rename run.
type Result struct {
	Scanned    int
	Planned    int
	Renamed    int
	Duplicates int
	NoMetadata int
	PlanPath   string
	BackupDir  string
}

// Run scans, infers, plans, logs, and (with Apply) renames.
func Run(ctx context.Context, opts Options, w io.Writer) (Result, error) {
	src, err := filepath.Abs(opts.Cfg.Src)
	if err != nil {
		return Result{}, err
	}
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return Result{}, fmt.Errorf("source not found or not a directory: %s", src)
	}

	out := opts.Cfg.Out
	if out == "" {
		out = src
	}
	ts := time.Now().Format("20060102-150405")
	logsDir := opts.Cfg.Logs
	if logsDir == "" {
		logsDir = filepath.Join(src, "logs")
	}
	if err := fsutil.EnsureDirs(out, logsDir); err != nil {
		return Result{}, err
	}

	res := Result{PlanPath: filepath.Join(logsDir, "rename-log-"+ts+".csv")}

	if opts.Apply && opts.Cfg.Backup != "" && !opts.SkipBackup {
		res.BackupDir = filepath.Join(opts.Cfg.Backup, "backup-"+ts)
		fmt.Fprintf(w, "backing up %s to %s\n", src, res.BackupDir)
		if err := fsutil.CopyTree(src, res.BackupDir); err != nil {
			return Result{}, fmt.Errorf("backing up source: %w", err)
		}
	}

	files, err := gather(src, opts.Cfg.Backup, logsDir)
	if err != nil {
		return Result{}, err
	}
	res.Scanned = len(files)
	fmt.Fprintf(w, "found %d PDF files under %s\n", len(files), src)

	resolver := opts.Resolver
	if resolver == nil && opts.Cfg.LookupDOI {
		resolver = crossref.NewClient(opts.Cfg.Mailto, opts.Cfg.UserAgent)
	}

	var (
		rows      []types.PlanRow
		diffs     []types.PlanRow
		remaining []types.PlanRow
		seen      = map[string]string{} // sha1 -> first path
		taken     = map[string]bool{}
	)

	for _, path := range files {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		h, err := fsutil.Sha1File(path)
		if err != nil {
			rows = append(rows, types.PlanRow{Src: path, Status: types.StatusError, Notes: err.Error()})
			continue
		}
		if first, dup := seen[h]; dup {
			res.Duplicates++
			rows = append(rows, types.PlanRow{Src: path, Status: types.StatusKeep, Notes: "duplicate of " + first})
			continue
		}
		seen[h] = path

		meta, note := infer(ctx, path, resolver, opts.Cfg.LookupDOI)
		if !meta.Complete() {
			res.NoMetadata++
			remaining = append(remaining, types.PlanRow{Src: path, Status: types.StatusMissing, Notes: note})
			rows = append(rows, types.PlanRow{Src: path, Status: types.StatusMissing, Notes: note})
			fmt.Fprintf(w, "skipped %s: %s\n", filepath.Base(path), note)
			continue
		}

		name := TargetFilename(meta)
		target := filepath.Join(out, name)
		// Disk collisions are handled at apply time; this guards against
		// two plan rows claiming the same target.
		base := strings.TrimSuffix(target, ".pdf")
		for i := 2; taken[target]; i++ {
			target = fmt.Sprintf("%s-%d.pdf", base, i)
		}
		taken[target] = true

		if sameBase(path, target) {
			rows = append(rows, types.PlanRow{Src: path, Dst: target, Status: types.StatusKeep, Notes: "already named"})
			continue
		}

		res.Planned++
		rows = append(rows, types.PlanRow{Src: path, Dst: target, Status: types.StatusWouldMove, Notes: meta.Source})
		diffs = append(diffs, types.PlanRow{
			Src:    filepath.Base(path),
			Dst:    name,
			Status: types.PlanStatus(meta.Source),
			Notes:  fmt.Sprintf("surname=%s year=%d", meta.Surname, meta.Year),
		})
	}

	if err := plan.Write(res.PlanPath, rows); err != nil {
		return Result{}, err
	}
	if len(diffs) > 0 {
		if err := plan.Write(filepath.Join(logsDir, "metadata-diffs-"+ts+".csv"), diffs); err != nil {
			return Result{}, err
		}
	}
	if len(remaining) > 0 {
		if err := plan.Write(filepath.Join(logsDir, "remaining-"+ts+".csv"), remaining); err != nil {
			return Result{}, err
		}
	}
	fmt.Fprintf(w, "plan written to %s (%d renames, %d duplicates, %d without metadata)\n",
		res.PlanPath, res.Planned, res.Duplicates, res.NoMetadata)

	if !opts.Apply {
		fmt.Fprintln(w, "dry-run only; rerun with --apply to execute")
		return res, nil
	}

	summary := plan.Apply(rows, opts.Limit, false, w)
	res.Renamed = summary.Applied

	if opts.Cfg.Backup != "" && res.Duplicates > 0 {
		dupDir := filepath.Join(opts.Cfg.Backup, "duplicates-"+ts)
		if err := sweepDuplicates(rows, dupDir, w); err != nil {
			return res, err
		}
	}

	// Apply and the sweep update the rows with what actually happened
	// (diverted targets, moved status); rewrite so the log matches disk.
	if err := plan.Write(res.PlanPath, rows); err != nil {
		return res, err
	}

	fmt.Fprintf(w, "applied: renamed=%d failed=%d\n", summary.Applied, summary.Failed)
	if summary.HasFailures() {
		return res, fmt.Errorf("%d renames failed", summary.Failed)
	}
	return res, nil
}

// gather lists PDFs under root, repairing mangled suffixes in the
// returned order and skipping the backup and logs trees.
func gather(root, backup, logs string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (path == backup || path == logs) {
				return filepath.SkipDir
			}
			return nil
		}
		if isPDFName(d.Name()) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func isPDFName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".pdf") ||
		strings.HasSuffix(lower, ".pdf_") ||
		strings.HasSuffix(lower, ".pdf~")
}

// sweepDuplicates moves content-identical files into dupDir, recording
// each landing spot back into its row so the sweep stays revertible.
func sweepDuplicates(rows []types.PlanRow, dupDir string, w io.Writer) error {
	moved := false
	for i := range rows {
		row := &rows[i]
		if row.Status != types.StatusKeep || !strings.HasPrefix(row.Notes, "duplicate of ") {
			continue
		}
		if !moved {
			if err := fsutil.EnsureDirs(dupDir); err != nil {
				return err
			}
			moved = true
		}
		target := fsutil.UniquePath(filepath.Join(dupDir, filepath.Base(row.Src)))
		if err := fsutil.MoveFile(row.Src, target); err != nil {
			fmt.Fprintf(w, "failed  sweep %s: %v\n", row.Src, err)
			continue
		}
		row.Dst = target
		row.Status = types.StatusMoved
		fmt.Fprintf(w, "swept duplicate %s\n", filepath.Base(row.Src))
	}
	return nil
}

// infer builds metadata for one file, preferring the info dictionary,
// then text inference, then CrossRef when the text names a DOI.
func infer(ctx context.Context, path string, resolver *crossref.Client, lookupDOI bool) (Meta, string) {
	info, infoErr := pdfops.ReadInfo(path)
	if infoErr == nil {
		if m := fromInfo(info); m.Complete() {
			return m, ""
		}
	}

	pages, err := pdfops.ExtractPages(path, 2)
	if err != nil {
		if infoErr != nil {
			return Meta{}, fmt.Sprintf("unreadable: %v", infoErr)
		}
		return Meta{}, fmt.Sprintf("text extraction failed: %v", err)
	}
	text := strings.Join(pages, "\n")

	if lookupDOI && resolver != nil {
		if doi := crossref.FindDOI(text); doi != "" {
			if work, err := resolver.Lookup(ctx, doi); err == nil {
				m := Meta{Surname: work.Author, Year: work.Year, Title: work.Title, Source: "crossref"}
				if m.Complete() {
					return m, ""
				}
			}
		}
	}

	if m := InferFromText(text); m.Complete() {
		return m, ""
	}
	return Meta{}, "no usable metadata"
}

// fromInfo converts a plausible info dictionary into Meta. Junk titles
// left behind by scanners and converters are rejected.
func fromInfo(info pdfops.DocInfo) Meta {
	title := strings.TrimSpace(info.Title)
	if title == "" || junkTitle(title) {
		return Meta{}
	}
	return Meta{
		Surname: SurnameOf(info.Author),
		Year:    info.Year(),
		Title:   title,
		Source:  "info",
	}
}

// junkTitleRe matches titles that are really filenames, tool banners,
// or conversion residue.
var junkTitleRe = regexp.MustCompile(`(?i)(\.indd|\.docx?|\.qxd|\.pdf|untitled|microsoft word|powerpoint|^doi:|^https?://|^[0-9_\- ]+$)`)

func junkTitle(title string) bool {
	return len(title) < 8 || junkTitleRe.MatchString(title)
}

var (
	// textYearRe finds a plausible publication year in body text.
	textYearRe = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)

	// authorLineRe matches "Surname AB, Surname CD" style author lines.
	authorLineRe = regexp.MustCompile(`(?m)^([A-Z][a-zA-Z'\-]+)\s+[A-Z]{1,3}(?:,| and |$)`)
)

// InferFromText guesses metadata from the first pages of a paper: the
// first long-enough line is the title, the first author-looking line
// gives the surname, and the first plausible year stands in for the
// publication year.
func InferFromText(text string) Meta {
	m := Meta{Source: "text"}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m.Title == "" && len(line) >= 25 && !junkTitle(line) && !strings.ContainsAny(line, "@") {
			m.Title = line
			continue
		}
		if m.Title != "" && m.Surname == "" {
			if match := authorLineRe.FindStringSubmatch(line); match != nil {
				m.Surname = match[1]
			}
		}
		if m.Title != "" && m.Surname != "" {
			break
		}
	}

	if year := textYearRe.FindString(text); year != "" {
		fmt.Sscanf(year, "%d", &m.Year)
	}
	return m
}

// SurnameOf extracts a family name from an author string: the last
// word of the first author, handling "Family, Given" and "A. Family"
// forms plus separators between multiple authors.
func SurnameOf(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return ""
	}
	for _, sep := range []string{";", " and ", " & "} {
		if idx := strings.Index(author, sep); idx >= 0 {
			author = author[:idx]
		}
	}
	if idx := strings.Index(author, ","); idx >= 0 {
		// "Family, Given"
		return strings.TrimSpace(author[:idx])
	}
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".")
}

// nonKebabRe matches runs replaced with a single hyphen in kebab names.
var nonKebabRe = regexp.MustCompile(`[^a-z0-9]+`)

// Kebab lowercases s and collapses every non-alphanumeric run to one
// hyphen.
func Kebab(s string) string {
	s = nonKebabRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// CleanTitle strips subtitle tails and whitespace noise from a title
// before it becomes a filename.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	// Keep only the part before a subtitle separator when the head is
	// already substantial.
	for _, sep := range []string{": ", " - "} {
		if idx := strings.Index(title, sep); idx >= 40 {
			title = title[:idx]
			break
		}
	}
	return strings.Join(strings.Fields(title), " ")
}

// TargetFilename renders "Surname-Year-kebab-title.pdf", dropping the
// year segment when unknown and truncating over-long names with a
// content-hash tail.
func TargetFilename(m Meta) string {
	parts := []string{m.Surname}
	if m.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", m.Year))
	}
	parts = append(parts, Kebab(CleanTitle(m.Title)))
	name := strings.Join(parts, "-")

	if len(name) > maxFilenameLen-4 {
		tail := fsutil.ShortHash(name)
		name = strings.TrimRight(name[:maxFilenameLen-4-9], "-") + "-" + tail
	}
	return name + ".pdf"
}

func sameBase(a, b string) bool {
	return filepath.Dir(a) == filepath.Dir(b) && filepath.Base(a) == filepath.Base(b)
}
