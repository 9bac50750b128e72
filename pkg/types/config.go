package types

import "time"

// Centimetre is one centimetre expressed in PDF points (1 in = 72 pt).
const Centimetre = 72.0 / 2.54

// HTTPConfig holds shared HTTP settings used by workflows that call
// external APIs (CrossRef, Notion).
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "letterkit/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SignatureConfig describes the signature block stamped on the final page
// of a letter.
type SignatureConfig struct {
	// ImagePath is the transparent PNG of the handwritten signature.
	// When the file is missing the block is text-only.
	ImagePath string `json:"image_path" yaml:"image_path"`

	// Name is the signatory's name without credentials.
	Name string `json:"name" yaml:"name"`

	// Credentials is appended after the name (e.g. "APAM").
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	// Title is the professional title line (e.g. "Physiotherapist").
	Title string `json:"title" yaml:"title"`

	// Qualifications is the qualifications line (e.g. "B.Physio (Hons)").
	Qualifications string `json:"qualifications,omitempty" yaml:"qualifications,omitempty"`

	// Interests is the free-text special-interests paragraph printed
	// under the rule line. Empty omits the paragraph.
	Interests string `json:"interests,omitempty" yaml:"interests,omitempty"`

	// XCm and YCm position the block from the bottom-left corner, in cm.
	XCm float64 `json:"x_cm" yaml:"x_cm"`
	YCm float64 `json:"y_cm" yaml:"y_cm"`

	// WidthCm is the rendered width of the signature image, in cm.
	WidthCm float64 `json:"width_cm" yaml:"width_cm"`
}

// LetterConfig holds settings for the letter workflow.
type LetterConfig struct {
	// DownloadsDir is scanned for the newest PDF to process.
	DownloadsDir string `json:"downloads_dir" yaml:"downloads_dir"`

	// LetterheadPDF is the single-page letterhead template laid under
	// every page.
	LetterheadPDF string `json:"letterhead_pdf" yaml:"letterhead_pdf"`

	// OutputDir receives the finished letter.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// RulesFile optionally replaces the built-in extraction rule table
	// with a YAML rule file. Empty uses the defaults.
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`

	// CatalogPath is the SQLite letter catalog. Empty disables the catalog.
	CatalogPath string `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`

	// OverflowChars is the extracted-text length of the last page above
	// which the signature moves to an appended letterhead-only page
	// (default 2200).
	OverflowChars int `json:"overflow_chars" yaml:"overflow_chars"`

	Signature SignatureConfig `json:"signature" yaml:"signature"`
}

// RenameConfig holds settings for the batch rename workflow.
type RenameConfig struct {
	HTTPConfig `yaml:",inline"`

	// Src is the folder to flatten and rename.
	Src string `json:"src" yaml:"src"`

	// Out receives the renamed files (may equal Src).
	Out string `json:"out" yaml:"out"`

	// Backup receives a timestamped copy of Src before an apply run,
	// and the duplicates swept after it.
	Backup string `json:"backup" yaml:"backup"`

	// Logs receives the CSV plan and audit logs.
	Logs string `json:"logs" yaml:"logs"`

	// LookupDOI enables CrossRef lookups when a DOI is found in the
	// document text (default true).
	LookupDOI bool `json:"lookup_doi" yaml:"lookup_doi"`

	// Mailto is sent to CrossRef for polite pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// DedupConfig holds settings for the flatten-and-dedup workflow.
type DedupConfig struct {
	// KeepPolicy picks the keeper among content-identical files:
	// clean-suffix, largest, newest, or newest-largest.
	KeepPolicy string `json:"keep_policy" yaml:"keep_policy"`
}

// SyncConfig holds settings for the Notion catalog sync.
type SyncConfig struct {
	HTTPConfig `yaml:",inline"`

	// DatabaseID is the Notion database receiving one page per letter.
	DatabaseID string `json:"database_id" yaml:"database_id"`

	// Token is the Notion integration token. Usually supplied via the
	// .secrets/ directory rather than the config file.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// ToolConfig groups all workflow configurations.
type ToolConfig struct {
	Letter LetterConfig `json:"letter" yaml:"letter"`
	Rename RenameConfig `json:"rename" yaml:"rename"`
	Dedup  DedupConfig  `json:"dedup" yaml:"dedup"`
	Sync   SyncConfig   `json:"sync" yaml:"sync"`
}
