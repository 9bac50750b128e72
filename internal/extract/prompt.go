package extract

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattkingphysio/letterkit/pkg/types"
)

// Prompter reads operator answers for fields the rules could not match.
// It is a plain blocking prompt-and-read exchange; an empty answer skips
// the field.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter wraps a reader/writer pair, usually stdin/stderr.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints the label and reads one trimmed line. io.EOF is treated as
// a skip, not an error.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "  %s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading answer for %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// FillMissing prompts for each required field the rules left unset and
// writes answers into the record with operator provenance. Skipped
// fields stay absent; the filename builder substitutes explicit
// placeholders for them, never a silent empty string.
func FillMissing(rec *types.Record, p *Prompter) error {
	if !rec.Surname.Set() {
		v, err := p.Ask("Last name")
		if err != nil {
			return err
		}
		if v != "" {
			rec.Surname = types.Field{Value: v, Source: types.ByOperator}
		}
	}
	if rec.Surname.Set() && !rec.Initial.Set() {
		v, err := p.Ask("First initial")
		if err != nil {
			return err
		}
		if v != "" {
			rec.Initial = types.Field{Value: firstInitial(v), Source: types.ByOperator}
		}
	}
	if !rec.BodyArea.Set() {
		v, err := p.Ask("Body area (e.g. Shoulder, Knee)")
		if err != nil {
			return err
		}
		if v != "" {
			rec.BodyArea = types.Field{Value: v, Source: types.ByOperator}
		}
	}
	if !rec.Referrer.Set() {
		v, err := p.Ask("Referrer name")
		if err != nil {
			return err
		}
		if v != "" {
			rec.Referrer = types.Field{Value: v, Source: types.ByOperator}
		}
	}
	return nil
}
