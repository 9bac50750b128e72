// Copyright Matt King, 2026. All rights reserved.

package types

// Provenance marks where a record field's value came from.
type Provenance string

const (
	// ByRule means the value was matched by an extraction rule.
	ByRule Provenance = "rule"

	// ByOperator means the value was typed in at the prompt.
	ByOperator Provenance = "operator"
)

// Field is one optional extracted value. The zero value means absent;
// an absent field is never represented as an empty string.
type Field struct {
	// Value is the trimmed field content.
	Value string `json:"value" yaml:"value"`

	// Source records how the value was obtained.
	Source Provenance `json:"source" yaml:"source"`

	// Rule names the matching rule when Source is ByRule.
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Set reports whether the field holds a value.
func (f Field) Set() bool { return f.Value != "" }

// Record is the transient structured result of running the extraction
// rule table against one document's text. It is built per document,
// used once to assemble a filename, and discarded.
type Record struct {
	// Surname is the patient's family name.
	Surname Field `json:"surname" yaml:"surname"`

	// Initial is the patient's first initial. It rides along with the
	// surname (capture group or prompt) and is not independently required.
	Initial Field `json:"initial" yaml:"initial"`

	// BodyArea is the treated body area or region.
	BodyArea Field `json:"body_area" yaml:"body_area"`

	// Referrer is the referring party's name.
	Referrer Field `json:"referrer" yaml:"referrer"`
}

// Required field names, in report order.
const (
	FieldSurname  = "surname"
	FieldBodyArea = "body-area"
	FieldReferrer = "referrer"
)

// Missing lists the required fields that remain unset after extraction.
func (r Record) Missing() []string {
	var missing []string
	if !r.Surname.Set() {
		missing = append(missing, FieldSurname)
	}
	if !r.BodyArea.Set() {
		missing = append(missing, FieldBodyArea)
	}
	if !r.Referrer.Set() {
		missing = append(missing, FieldReferrer)
	}
	return missing
}

// Complete reports whether every required field is set.
func (r Record) Complete() bool { return len(r.Missing()) == 0 }
