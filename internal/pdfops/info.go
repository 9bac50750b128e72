package pdfops

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DocInfo is the document information dictionary of one PDF, plus the
// page count. String fields are empty when the PDF does not carry them.
type DocInfo struct {
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Author       string `json:"author,omitempty" yaml:"author,omitempty"`
	Subject      string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Creator      string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Producer     string `json:"producer,omitempty" yaml:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty" yaml:"mod_date,omitempty"`
	PageCount    int    `json:"page_count" yaml:"page_count"`
}

// yearRe finds a plausible four-digit year inside a PDF date string
// like "D:20230115093000+10'00'".
var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

// ReadInfo reads the document info dictionary of the PDF at path.
func ReadInfo(path string) (DocInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return DocInfo{}, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return DocInfo{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return DocInfo{
		Title:        ctx.Title,
		Author:       ctx.Author,
		Subject:      ctx.Subject,
		Creator:      ctx.Creator,
		Producer:     ctx.Producer,
		CreationDate: ctx.CreationDate,
		ModDate:      ctx.ModDate,
		PageCount:    ctx.PageCount,
	}, nil
}

// Year extracts the most plausible publication year from the creation
// or modification date, or 0 when neither carries one.
func (d DocInfo) Year() int {
	for _, s := range []string{d.CreationDate, d.ModDate} {
		if m := yearRe.FindString(s); m != "" {
			y, _ := strconv.Atoi(m)
			return y
		}
	}
	return 0
}
