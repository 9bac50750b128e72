// Copyright Matt King, 2026. All rights reserved.

// Package pdfops wraps pdfcpu for the PDF mechanics the workflows share:
// text extraction, document info, letterhead and signature overlay,
// merge, and split. See docs/ARCHITECTURE § PDF Operations.
package pdfops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractPages returns the text of each page, in order. maxPages limits
// how many pages are read; 0 reads them all. A page with no extractable
// text layer yields an empty string rather than an error, so a scanned
// image simply produces no field matches downstream.
func ExtractPages(path string, maxPages int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	n := ctx.PageCount
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	pages := make([]string, 0, n)
	for pageNr := 1; pageNr <= n; pageNr++ {
		pages = append(pages, pageText(ctx, pageNr))
	}
	return pages, nil
}

// ExtractText returns the concatenated text of up to maxPages pages
// (0 for all), separated by newlines.
func ExtractText(path string, maxPages int) (string, error) {
	pages, err := ExtractPages(path, maxPages)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}

// pageText pulls one page's content stream and parses its text
// operators. Failures degrade to an empty page.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return parseContentStream(data)
}

// literalRe matches PDF string literals in parentheses.
var literalRe = regexp.MustCompile(`\(([^)]*)\)`)

// parseContentStream walks a content stream line by line and collects
// the text shown by the Tj, TJ, and ' operators, inserting separators
// for the positioning operators Td, TD, and T*.
func parseContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range literalRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range literalRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizeText(sb.String())
}

// decodeLiteral resolves the escape sequences a PDF string literal may
// carry, including octal escapes like \040.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; {
		case c == 'n':
			sb.WriteByte('\n')
		case c == 'r':
			sb.WriteByte('\r')
		case c == 't':
			sb.WriteByte('\t')
		case c == '\\' || c == '(' || c == ')':
			sb.WriteByte(c)
		case c >= '0' && c <= '7':
			val := int(c - '0')
			for d := 0; d < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; d++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// normalizeText collapses runs of whitespace to single spaces while
// preserving line breaks, and drops non-printable runes.
func normalizeText(text string) string {
	var sb strings.Builder
	var pendingSpace, pendingNL bool
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			pendingNL = true
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsPrint(r):
			if sb.Len() > 0 {
				if pendingNL {
					sb.WriteByte('\n')
				} else if pendingSpace {
					sb.WriteByte(' ')
				}
			}
			pendingNL, pendingSpace = false, false
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
