// Copyright Matt King, 2026. All rights reserved.

// Package letter assembles referral letters: it takes the newest PDF in
// the downloads folder, parses patient and referrer fields from its
// text, lays the clinic letterhead under every page, stamps the
// signature block, and saves the result under the standard filename.
// See docs/ARCHITECTURE § Letter Pipeline.
package letter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mattkingphysio/letterkit/internal/catalog"
	"github.com/mattkingphysio/letterkit/internal/extract"
	"github.com/mattkingphysio/letterkit/internal/fsutil"
	"github.com/mattkingphysio/letterkit/internal/pdfops"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

// Placeholders used when the operator explicitly skips a field at the
// prompt. A letter is never named from a silently-empty field.
const (
	PlaceholderPatient  = "UnknownPatient"
	PlaceholderArea     = "General"
	PlaceholderReferrer = "Referrer"
)

const defaultOverflowChars = 2200

// Pipeline runs the letter workflow for one source document.
type Pipeline struct {
	Cfg     types.LetterConfig
	Rules   extract.RuleSet
	Prompt  *extract.Prompter
	Catalog *catalog.Store // nil disables catalog recording
	Out     io.Writer      // progress lines
}

// Result reports what a pipeline run produced.
type Result struct {
	Source     string
	OutputPath string
	Record     types.Record
}

// Run processes the newest PDF in the configured downloads folder.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	src, err := NewestPDF(p.Cfg.DownloadsDir)
	if err != nil {
		return Result{}, err
	}
	return p.RunFile(ctx, src)
}

// RunFile processes one source PDF through extraction, prompting,
// overlay, and catalog recording.
func (p *Pipeline) RunFile(ctx context.Context, src string) (Result, error) {
	if _, err := os.Stat(p.Cfg.LetterheadPDF); err != nil {
		return Result{}, fmt.Errorf("letterhead not found: %s", p.Cfg.LetterheadPDF)
	}

	fmt.Fprintf(p.Out, "source: %s\n", filepath.Base(src))

	pages, err := pdfops.ExtractPages(src, 0)
	if err != nil {
		return Result{}, fmt.Errorf("extracting text: %w", err)
	}
	text := strings.Join(pages, "\n")

	rec := extract.Extract(text, p.Rules)
	reportFields(p.Out, rec)

	if missing := rec.Missing(); len(missing) > 0 && p.Prompt != nil {
		fmt.Fprintf(p.Out, "missing: %s\n", strings.Join(missing, ", "))
		if err := extract.FillMissing(&rec, p.Prompt); err != nil {
			return Result{}, err
		}
	}

	name := Filename(rec, time.Now())
	if err := fsutil.EnsureDirs(p.Cfg.OutputDir); err != nil {
		return Result{}, err
	}
	outPath := fsutil.UniquePath(filepath.Join(p.Cfg.OutputDir, name))

	lastPageLen := 0
	if len(pages) > 0 {
		lastPageLen = len(pages[len(pages)-1])
	}
	if err := p.assemble(src, outPath, lastPageLen); err != nil {
		return Result{}, err
	}

	fmt.Fprintf(p.Out, "saved: %s\n", outPath)

	if p.Catalog != nil {
		entry := catalog.Letter{
			Filename:   filepath.Base(outPath),
			PatientKey: PatientKey(rec),
			BodyArea:   valueOr(rec.BodyArea, PlaceholderArea),
			Referrer:   valueOr(rec.Referrer, PlaceholderReferrer),
			Provenance: ProvenanceSummary(rec),
			SourceFile: filepath.Base(src),
			CreatedAt:  time.Now().UTC(),
		}
		if _, err := p.Catalog.Record(ctx, entry); err != nil {
			return Result{}, fmt.Errorf("recording letter in catalog: %w", err)
		}
	}

	return Result{Source: src, OutputPath: outPath, Record: rec}, nil
}

// assemble overlays the letterhead on every page and stamps the
// signature, appending a letterhead-only page when the last page's text
// suggests the block would collide with content.
func (p *Pipeline) assemble(src, outPath string, lastPageLen int) error {
	tmpDir, err := os.MkdirTemp("", "letterkit-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	overlaid := filepath.Join(tmpDir, "overlaid.pdf")
	if err := pdfops.ApplyLetterhead(src, p.Cfg.LetterheadPDF, overlaid); err != nil {
		return err
	}

	sig := signatureBlock(p.Cfg.Signature)

	overflow := p.Cfg.OverflowChars
	if overflow <= 0 {
		overflow = defaultOverflowChars
	}

	if lastPageLen <= overflow {
		n, err := pdfops.PageCount(overlaid)
		if err != nil {
			return err
		}
		return pdfops.StampSignature(overlaid, outPath, n, sig)
	}

	// Content runs long: put the signature on its own letterhead page.
	fmt.Fprintln(p.Out, "content is long, signature moves to a new page")
	blank := filepath.Join(tmpDir, "blank.pdf")
	if err := pdfops.FirstPage(p.Cfg.LetterheadPDF, blank); err != nil {
		return err
	}
	sigPage := filepath.Join(tmpDir, "signature.pdf")
	if err := pdfops.StampSignature(blank, sigPage, 1, sig); err != nil {
		return err
	}
	return pdfops.Merge([]string{overlaid, sigPage}, outPath)
}

// signatureBlock translates the configured signature into point
// coordinates and text lines.
func signatureBlock(cfg types.SignatureConfig) pdfops.Signature {
	nameLine := cfg.Name
	if cfg.Credentials != "" {
		nameLine += " " + cfg.Credentials
	}
	lines := []string{nameLine}
	if cfg.Title != "" {
		lines = append(lines, cfg.Title)
	}
	if cfg.Qualifications != "" {
		lines = append(lines, cfg.Qualifications)
	}
	if cfg.Interests != "" {
		lines = append(lines, "", "Special interests: "+cfg.Interests)
	}
	return pdfops.Signature{
		ImagePath:  cfg.ImagePath,
		Lines:      lines,
		X:          cfg.XCm * types.Centimetre,
		Y:          cfg.YCm * types.Centimetre,
		ImageWidth: cfg.WidthCm * types.Centimetre,
	}
}

// NewestPDF returns the most recently modified PDF in dir.
func NewestPDF(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}

	var newest string
	var newestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, e.Name())
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no PDF files found in %s", dir)
	}
	return newest, nil
}

// invalidFilenameRe matches characters stripped from output filenames.
var invalidFilenameRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Filename builds the standard letter filename:
// {Surname}{Initial}-{BodyArea}-Letter to {Referrer}-{dd.mm.yy}.pdf.
// Skipped fields fall back to explicit placeholders.
func Filename(rec types.Record, now time.Time) string {
	name := fmt.Sprintf("%s-%s-Letter to %s-%s.pdf",
		PatientKey(rec),
		valueOr(rec.BodyArea, PlaceholderArea),
		valueOr(rec.Referrer, PlaceholderReferrer),
		now.Format("02.01.06"))
	return invalidFilenameRe.ReplaceAllString(name, "")
}

// PatientKey is the surname plus first initial ("SmithJ"), or the
// patient placeholder when the surname is absent.
func PatientKey(rec types.Record) string {
	if !rec.Surname.Set() {
		return PlaceholderPatient
	}
	return rec.Surname.Value + rec.Initial.Value
}

// ProvenanceSummary renders one compact provenance string per record,
// e.g. "surname=operator;body-area=rule:area-label;referrer=skipped".
func ProvenanceSummary(rec types.Record) string {
	parts := []string{
		types.FieldSurname + "=" + fieldProvenance(rec.Surname),
		types.FieldBodyArea + "=" + fieldProvenance(rec.BodyArea),
		types.FieldReferrer + "=" + fieldProvenance(rec.Referrer),
	}
	return strings.Join(parts, ";")
}

func fieldProvenance(f types.Field) string {
	switch {
	case !f.Set():
		return "skipped"
	case f.Source == types.ByRule:
		return "rule:" + f.Rule
	default:
		return string(f.Source)
	}
}

func valueOr(f types.Field, fallback string) string {
	if f.Set() {
		return f.Value
	}
	return fallback
}

// reportFields prints the extraction outcome for the operator.
func reportFields(w io.Writer, rec types.Record) {
	print := func(label string, f types.Field) {
		if f.Set() {
			fmt.Fprintf(w, "  %-10s %s (%s)\n", label+":", f.Value, fieldProvenance(f))
		} else {
			fmt.Fprintf(w, "  %-10s not found\n", label+":")
		}
	}
	print("patient", rec.Surname)
	print("area", rec.BodyArea)
	print("referrer", rec.Referrer)
}
