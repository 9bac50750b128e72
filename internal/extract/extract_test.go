package extract

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/mattkingphysio/letterkit/pkg/types"
)

func TestExtractReferrerMarkers(t *testing.T) {
	rs := DefaultRules()

	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
	}{
		{
			name:     "referred by with honorific",
			text:     "Thank you.\nReferred by: Dr. A. Smith\n",
			want:     "Dr. A. Smith",
			wantRule: "referred-by",
		},
		{
			name:     "re marker",
			text:     "Re: Dr Jones\nsome body text",
			want:     "Dr Jones",
			wantRule: "re-marker",
		},
		{
			name:     "trailing whitespace and punctuation trimmed",
			text:     "Referred by:   Dr. Lee.  \n",
			want:     "Dr. Lee",
			wantRule: "referred-by",
		},
		{
			name:     "dear salutation",
			text:     "Dear Dr Nguyen,\nThank you for your referral.",
			want:     "Nguyen",
			wantRule: "dear-salutation",
		},
		{
			name:     "cc line as last resort",
			text:     "body text\ncc: Dr. Jones\n",
			want:     "Dr. Jones",
			wantRule: "cc-label",
		},
		{
			name:     "case-insensitive marker",
			text:     "REFERRED BY: dr. smith",
			want:     "dr. smith",
			wantRule: "referred-by",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Extract(tt.text, rs)
			if rec.Referrer.Value != tt.want {
				t.Errorf("referrer = %q, want %q", rec.Referrer.Value, tt.want)
			}
			if rec.Referrer.Rule != tt.wantRule {
				t.Errorf("referrer rule = %q, want %q", rec.Referrer.Rule, tt.wantRule)
			}
			if rec.Referrer.Source != types.ByRule {
				t.Errorf("referrer source = %q, want %q", rec.Referrer.Source, types.ByRule)
			}
		})
	}
}

// Rule priority is fixed: with both a "Referred by:" line and a "cc:"
// line present, the earlier rule wins and Dr. Smith is the referrer.
func TestExtractRulePriority(t *testing.T) {
	rs := DefaultRules()
	text := "cc: Dr. Jones\nReferred by: Dr. Smith\n"

	rec := Extract(text, rs)
	if rec.Referrer.Value != "Dr. Smith" {
		t.Fatalf("referrer = %q, want %q", rec.Referrer.Value, "Dr. Smith")
	}
	if rec.Referrer.Rule != "referred-by" {
		t.Fatalf("referrer rule = %q, want %q", rec.Referrer.Rule, "referred-by")
	}
}

func TestExtractSampleLetter(t *testing.T) {
	rs := DefaultRules()
	text := "Patient: Jane Doe\nArea: Left Shoulder\nReferred by: Dr. A. Smith"

	rec := Extract(text, rs)

	// No default rule splits "Jane Doe" into surname and initial, so the
	// surname stays unset and is reported missing.
	if rec.Surname.Set() {
		t.Errorf("surname = %q, want unset", rec.Surname.Value)
	}
	if rec.BodyArea.Value != "Left Shoulder" {
		t.Errorf("body area = %q, want %q", rec.BodyArea.Value, "Left Shoulder")
	}
	if rec.Referrer.Value != "Dr. A. Smith" {
		t.Errorf("referrer = %q, want %q", rec.Referrer.Value, "Dr. A. Smith")
	}

	missing := rec.Missing()
	if !reflect.DeepEqual(missing, []string{types.FieldSurname}) {
		t.Errorf("missing = %v, want [%s]", missing, types.FieldSurname)
	}
}

func TestExtractSurnameForms(t *testing.T) {
	rs := DefaultRules()

	tests := []struct {
		name        string
		text        string
		wantSurname string
		wantInitial string
	}{
		{
			name:        "caps comma form",
			text:        "SMITH, John\nShoulder assessment",
			wantSurname: "Smith",
			wantInitial: "J",
		},
		{
			name:        "surname label",
			text:        "Surname: O'Brien, Mary",
			wantSurname: "O'Brien",
			wantInitial: "M",
		},
		{
			name:        "last name label without first name",
			text:        "Last name: Nguyen",
			wantSurname: "Nguyen",
			wantInitial: "",
		},
		{
			name:        "free first-last name does not match",
			text:        "Patient: Jane Doe",
			wantSurname: "",
			wantInitial: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Extract(tt.text, rs)
			if rec.Surname.Value != tt.wantSurname {
				t.Errorf("surname = %q, want %q", rec.Surname.Value, tt.wantSurname)
			}
			if rec.Initial.Value != tt.wantInitial {
				t.Errorf("initial = %q, want %q", rec.Initial.Value, tt.wantInitial)
			}
		})
	}
}

// Initials are taken rune-wise: a name starting with a multi-byte
// letter must not be cut mid-encoding.
func TestInitialNonASCII(t *testing.T) {
	rs := RuleSet{
		Surname: []Rule{{
			Name:    "given-name",
			Pattern: `patient\s*:\s*(?P<surname>\S+)\s+(?P<initial>\S+)`,
		}},
	}
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}

	rec := Extract("Patient: Østergaard Åse", rs)
	if rec.Surname.Value != "Østergaard" {
		t.Errorf("surname = %q, want %q", rec.Surname.Value, "Østergaard")
	}
	if rec.Initial.Value != "Å" {
		t.Errorf("initial = %q, want %q", rec.Initial.Value, "Å")
	}

	// The operator path takes the same rune-wise initial.
	blank := Extract("", rs)
	in := strings.NewReader("Ørsted\nøyvind\n\n\n")
	var out strings.Builder
	if err := FillMissing(&blank, NewPrompter(in, &out)); err != nil {
		t.Fatalf("FillMissing: %v", err)
	}
	if blank.Initial.Value != "Ø" {
		t.Errorf("operator initial = %q, want %q", blank.Initial.Value, "Ø")
	}
}

func TestExtractBodyAreaKeyword(t *testing.T) {
	rs := DefaultRules()

	rec := Extract("MRI of the left knee shows a meniscal tear.", rs)
	if rec.BodyArea.Value != "Knee" {
		t.Errorf("body area = %q, want %q", rec.BodyArea.Value, "Knee")
	}
	if rec.BodyArea.Rule != "area-keyword" {
		t.Errorf("body area rule = %q, want %q", rec.BodyArea.Rule, "area-keyword")
	}

	// The labelled form outranks the keyword scan.
	rec = Extract("knee mentioned early\nArea: Rotator Cuff", rs)
	if rec.BodyArea.Value != "Rotator Cuff" {
		t.Errorf("body area = %q, want %q", rec.BodyArea.Value, "Rotator Cuff")
	}
	if rec.BodyArea.Rule != "area-label" {
		t.Errorf("body area rule = %q, want %q", rec.BodyArea.Rule, "area-label")
	}
}

func TestExtractNoMatches(t *testing.T) {
	rs := DefaultRules()

	for _, text := range []string{
		"",
		"\x00\xff\xfe garbled binary \x01\x02",
		"nothing recognizable here",
	} {
		rec := Extract(text, rs)
		if rec.Surname.Set() || rec.BodyArea.Set() || rec.Referrer.Set() {
			t.Errorf("Extract(%q) populated fields: %+v", text, rec)
		}
		want := []string{types.FieldSurname, types.FieldBodyArea, types.FieldReferrer}
		if got := rec.Missing(); !reflect.DeepEqual(got, want) {
			t.Errorf("Extract(%q).Missing() = %v, want %v", text, got, want)
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	rs := DefaultRules()
	text := "SMITH, John\nArea: Hip\nReferred by: Dr. Wu"

	first := Extract(text, rs)
	second := Extract(text, rs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second extraction differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/rules.yaml"
	content := `
surname:
  - name: regarding-name
    pattern: 'regarding\s+(?P<surname>[A-Za-z]+)\s+(?P<initial>[A-Za-z])[a-z]*'
referrer:
  - name: gp-label
    pattern: 'referring\s+gp\s*:\s*(?P<value>[^\n]+)'
`
	if err := writeFile(path, content); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	rec := Extract("regarding Doe Jane\nReferring GP: Dr. Patel", rs)
	if rec.Surname.Value != "Doe" || rec.Initial.Value != "J" {
		t.Errorf("surname/initial = %q/%q, want Doe/J", rec.Surname.Value, rec.Initial.Value)
	}
	if rec.Referrer.Value != "Dr. Patel" {
		t.Errorf("referrer = %q, want %q", rec.Referrer.Value, "Dr. Patel")
	}
	// The file replaces the built-in table: no body-area rules remain.
	if rec.BodyArea.Set() {
		t.Errorf("body area = %q, want unset", rec.BodyArea.Value)
	}
}

func TestLoadRulesBadPattern(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/rules.yaml"
	if err := writeFile(path, "referrer:\n  - name: broken\n    pattern: '(unclosed'\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestPrompterFillMissing(t *testing.T) {
	rs := DefaultRules()
	rec := Extract("Area: Knee", rs)

	// Operator supplies surname and initial, skips the referrer.
	in := strings.NewReader("Smith\nj\n\n")
	var out strings.Builder
	p := NewPrompter(in, &out)

	if err := FillMissing(&rec, p); err != nil {
		t.Fatalf("FillMissing: %v", err)
	}

	if rec.Surname.Value != "Smith" || rec.Surname.Source != types.ByOperator {
		t.Errorf("surname = %+v, want operator-supplied Smith", rec.Surname)
	}
	if rec.Initial.Value != "J" {
		t.Errorf("initial = %q, want J", rec.Initial.Value)
	}
	if rec.BodyArea.Source != types.ByRule {
		t.Errorf("body area source = %q, want rule", rec.BodyArea.Source)
	}
	if rec.Referrer.Set() {
		t.Errorf("referrer = %q, want skipped (unset)", rec.Referrer.Value)
	}
	if got := rec.Missing(); !reflect.DeepEqual(got, []string{types.FieldReferrer}) {
		t.Errorf("missing after prompt = %v, want [referrer]", got)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
