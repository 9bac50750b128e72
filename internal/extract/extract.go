// Copyright Matt King, 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattkingphysio/letterkit/pkg/types"
)

// Extract runs the rule table against one document's text and returns
// the resulting record. It is a pure function with no side effects; the
// same text always yields the same record. No input is an error, empty
// and binary-garbled text included. Fields with no matching rule are
// left absent and surface through Record.Missing.
func Extract(text string, rs RuleSet) types.Record {
	var rec types.Record

	if m, rule := firstMatch(text, rs.Surname); m != nil {
		if v := cleanValue(m["surname"], rule); v != "" {
			rec.Surname = types.Field{Value: normalizeSurname(v), Source: types.ByRule, Rule: rule.Name}
		}
		if v := cleanValue(m["initial"], rule); v != "" {
			rec.Initial = types.Field{Value: firstInitial(v), Source: types.ByRule, Rule: rule.Name}
		}
	}

	if m, rule := firstMatch(text, rs.BodyArea); m != nil {
		if v := cleanValue(m["value"], rule); v != "" {
			rec.BodyArea = types.Field{Value: v, Source: types.ByRule, Rule: rule.Name}
		}
	}

	if m, rule := firstMatch(text, rs.Referrer); m != nil {
		if v := cleanValue(m["value"], rule); v != "" {
			rec.Referrer = types.Field{Value: v, Source: types.ByRule, Rule: rule.Name}
		}
	}

	return rec
}

// firstMatch tries rules in order and returns the named captures of the
// first one that matches, or nil when none do.
func firstMatch(text string, rules []Rule) (map[string]string, *Rule) {
	for i := range rules {
		rule := &rules[i]
		if rule.re == nil {
			continue
		}
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		captures := make(map[string]string)
		for gi, name := range rule.re.SubexpNames() {
			if name != "" && gi < len(m) {
				captures[name] = m[gi]
			}
		}
		return captures, rule
	}
	return nil, nil
}

// cleanValue trims surrounding whitespace and trailing punctuation from
// a captured value and applies the rule's title-case option.
func cleanValue(v string, rule *Rule) string {
	v = strings.TrimSpace(v)
	v = strings.TrimRight(v, ".,;:")
	v = strings.TrimSpace(v)
	if rule != nil && rule.TitleCase {
		v = titleCase(v)
	}
	return v
}

// titleCase upper-cases the first letter of each space- or
// hyphen-separated word.
func titleCase(s string) string {
	prev := rune(' ')
	return strings.Map(func(r rune) rune {
		out := r
		if prev == ' ' || prev == '-' {
			out = unicode.ToUpper(r)
		}
		prev = r
		return out
	}, strings.ToLower(s))
}

// firstInitial upper-cases the first rune of v. Byte-slicing would
// mangle a name starting with a multi-byte letter.
func firstInitial(v string) string {
	r, _ := utf8.DecodeRuneInString(v)
	return strings.ToUpper(string(r))
}

// normalizeSurname title-cases an all-caps surname ("SMITH" → "Smith")
// and leaves mixed-case names alone.
func normalizeSurname(s string) string {
	if s == strings.ToUpper(s) {
		return titleCase(s)
	}
	return s
}
