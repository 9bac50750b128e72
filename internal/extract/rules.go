// Copyright Matt King, 2026. All rights reserved.

// Package extract identifies patient, body-area, and referrer fields in
// free document text using an ordered rule table.
// See docs/ARCHITECTURE § Field Extraction.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Rule is one pattern in the table. Patterns use named capture groups:
// "value" for single-value fields, or "surname" plus optional "initial"
// for name rules. Matching is case-insensitive unless CaseSensitive is
// set (needed for rules that rely on letter case, like "SMITH, John").
type Rule struct {
	// Name identifies the rule in provenance and logs.
	Name string `yaml:"name"`

	// Pattern is the regular expression source.
	Pattern string `yaml:"pattern"`

	// CaseSensitive disables the default (?i) flag.
	CaseSensitive bool `yaml:"case_sensitive,omitempty"`

	// TitleCase title-cases the captured value (keyword rules capture
	// lowercase words like "shoulder").
	TitleCase bool `yaml:"title_case,omitempty"`

	re *regexp.Regexp
}

// RuleSet is the ordered rule table, one list per target field. Within a
// list, the first rule whose pattern matches supplies the field and the
// remaining rules are skipped.
type RuleSet struct {
	Surname  []Rule `yaml:"surname"`
	BodyArea []Rule `yaml:"body_area"`
	Referrer []Rule `yaml:"referrer"`
}

// bodyAreaKeywords is the historical keyword list. Matched as whole
// words, lowest-priority body-area rule.
var bodyAreaKeywords = []string{
	"shoulder", "knee", "hip", "ankle", "back", "neck",
	"elbow", "wrist", "spine", "lumbar", "cervical", "thoracic",
	"foot", "hand", "calf", "hamstring", "quadriceps", "achilles",
	"rotator cuff", "groin",
}

// DefaultRules returns the built-in rule table.
//
// The defaults deliberately carry no rule that splits a free "First Last"
// name into surname and initial: "Patient: Jane Doe" leaves the surname
// unset and the operator is prompted. Sites that want the split add a
// rule with surname/initial capture groups to their rules file.
func DefaultRules() RuleSet {
	rs := RuleSet{
		Surname: []Rule{
			{
				Name:    "surname-label",
				Pattern: `(?:surname|last\s*name)\s*:\s*(?P<surname>[A-Za-z][A-Za-z'\-]*)(?:\s*,?\s+(?P<initial>[A-Za-z])[a-z]*)?`,
			},
			{
				Name:          "caps-comma-name",
				Pattern:       `\b(?P<surname>[A-Z][A-Z'\-]+)\s*,\s*(?P<initial>[A-Z])[a-z]*`,
				CaseSensitive: true,
			},
		},
		BodyArea: []Rule{
			{
				Name:    "area-label",
				Pattern: `(?:body\s*area|area|region)\s*:\s*(?P<value>[^\n]+)`,
			},
			{
				Name:      "area-keyword",
				Pattern:   `\b(?P<value>` + strings.Join(bodyAreaKeywords, "|") + `)\b`,
				TitleCase: true,
			},
		},
		Referrer: []Rule{
			{
				Name:    "referred-by",
				Pattern: `referred\s+by\s*:?\s*(?P<value>[^\n]+)`,
			},
			{
				Name:    "re-marker",
				Pattern: `\bre\s*:\s*(?P<value>[^\n]+)`,
			},
			{
				Name:    "dear-salutation",
				Pattern: `dear\s+(?:dr|mr|mrs|ms|prof)\.?\s+(?P<value>[A-Za-z][A-Za-z'\-]*)`,
			},
			{
				Name:    "to-label",
				Pattern: `\bto\s*:\s*(?:dr|mr|mrs|ms|prof)\.?\s*(?P<value>[A-Za-z][A-Za-z'\-]*)`,
			},
			{
				Name:    "cc-label",
				Pattern: `\bcc\s*:\s*(?P<value>[^\n]+)`,
			},
		},
	}
	if err := rs.Compile(); err != nil {
		// Built-in patterns are fixed; a failure here is a programming error.
		panic(err)
	}
	return rs
}

// Compile compiles every rule's pattern, prefixing (?i) unless the rule
// is case-sensitive. It reports the first bad pattern.
func (rs *RuleSet) Compile() error {
	lists := map[string][]Rule{
		"surname":   rs.Surname,
		"body_area": rs.BodyArea,
		"referrer":  rs.Referrer,
	}
	for field, rules := range lists {
		for i := range rules {
			r := &rules[i]
			if r.Name == "" {
				return fmt.Errorf("%s rule %d: missing name", field, i)
			}
			src := r.Pattern
			if !r.CaseSensitive {
				src = "(?i)" + src
			}
			re, err := regexp.Compile(src)
			if err != nil {
				return fmt.Errorf("%s rule %q: %w", field, r.Name, err)
			}
			r.re = re
		}
	}
	return nil
}

// LoadRules reads a YAML rule file and compiles it. The file replaces
// the built-in table wholesale; omitted field lists simply never match.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if err := rs.Compile(); err != nil {
		return RuleSet{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}
