package letter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattkingphysio/letterkit/pkg/types"
)

func ruleField(value, rule string) types.Field {
	return types.Field{Value: value, Source: types.ByRule, Rule: rule}
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  types.Record
		want string
	}{
		{
			name: "all fields present",
			rec: types.Record{
				Surname:  ruleField("Smith", "caps-comma-name"),
				Initial:  ruleField("J", "caps-comma-name"),
				BodyArea: ruleField("Shoulder", "area-keyword"),
				Referrer: ruleField("Dr. Jones", "referred-by"),
			},
			want: "SmithJ-Shoulder-Letter to Dr. Jones-24.08.26.pdf",
		},
		{
			name: "placeholders for skipped fields",
			rec:  types.Record{},
			want: "UnknownPatient-General-Letter to Referrer-24.08.26.pdf",
		},
		{
			name: "invalid characters stripped",
			rec: types.Record{
				Surname:  ruleField("O'Brien", "surname-label"),
				Initial:  ruleField("M", "surname-label"),
				BodyArea: ruleField("Hip/Groin", "area-label"),
				Referrer: ruleField(`Dr "Jonesy" Jones`, "referred-by"),
			},
			want: "O'BrienM-HipGroin-Letter to Dr Jonesy Jones-24.08.26.pdf",
		},
		{
			name: "surname without initial",
			rec: types.Record{
				Surname:  ruleField("Nguyen", "surname-label"),
				BodyArea: ruleField("Knee", "area-keyword"),
				Referrer: ruleField("Dr. Wu", "referred-by"),
			},
			want: "Nguyen-Knee-Letter to Dr. Wu-24.08.26.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.rec, now); got != tt.want {
				t.Errorf("Filename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewestPDF(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, mod time.Time) {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	base := time.Now().Add(-time.Hour)
	write("older.pdf", base)
	write("newest.PDF", base.Add(30*time.Minute))
	write("middle.pdf", base.Add(10*time.Minute))
	write("ignored.txt", base.Add(45*time.Minute))

	got, err := NewestPDF(dir)
	if err != nil {
		t.Fatalf("NewestPDF: %v", err)
	}
	if filepath.Base(got) != "newest.PDF" {
		t.Errorf("NewestPDF = %s, want newest.PDF", got)
	}
}

func TestNewestPDFEmpty(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewestPDF(dir); err == nil {
		t.Fatal("expected error for directory without PDFs")
	}
}

func TestProvenanceSummary(t *testing.T) {
	rec := types.Record{
		Surname:  types.Field{Value: "Smith", Source: types.ByOperator},
		BodyArea: ruleField("Knee", "area-keyword"),
	}
	want := "surname=operator;body-area=rule:area-keyword;referrer=skipped"
	if got := ProvenanceSummary(rec); got != want {
		t.Errorf("ProvenanceSummary = %q, want %q", got, want)
	}
}

func TestPatientKey(t *testing.T) {
	rec := types.Record{
		Surname: ruleField("Smith", "caps-comma-name"),
		Initial: ruleField("J", "caps-comma-name"),
	}
	if got := PatientKey(rec); got != "SmithJ" {
		t.Errorf("PatientKey = %q, want SmithJ", got)
	}
	if got := PatientKey(types.Record{}); got != PlaceholderPatient {
		t.Errorf("PatientKey(empty) = %q, want %q", got, PlaceholderPatient)
	}
}
