// Copyright Matt King, 2026. All rights reserved.

package pdfops

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Signature is the rendered signature block: an optional image above a
// stack of text lines, positioned in points from the bottom-left corner.
type Signature struct {
	// ImagePath is a transparent PNG; empty or missing renders text only.
	ImagePath string

	// Lines are drawn top to bottom under the image, first line bold-ish
	// by being the name line. pdfcpu renders them as one text stamp.
	Lines []string

	// X, Y anchor the block (points from bottom-left).
	X float64
	Y float64

	// ImageWidth is the rendered image width in points.
	ImageWidth float64
}

// ApplyLetterhead lays the first page of the letterhead template under
// every page of src and writes the result to out.
func ApplyLetterhead(src, letterhead, out string) error {
	desc := "pos:c, sc:1 abs, rot:0"
	wm, err := api.PDFWatermark(letterhead, desc, false, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("letterhead watermark: %w", err)
	}
	if err := api.AddWatermarksFile(src, out, nil, wm, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("applying letterhead: %w", err)
	}
	return nil
}

// StampSignature stamps the signature block onto one page of src and
// writes the result to out. Page numbering is 1-based.
func StampSignature(src, out string, page int, sig Signature) error {
	conf := model.NewDefaultConfiguration()
	pages := []string{strconv.Itoa(page)}
	cur := src

	if sig.ImagePath != "" {
		if _, err := os.Stat(sig.ImagePath); err == nil {
			desc := fmt.Sprintf("pos:bl, off:%.0f %.0f, sc:%.2f abs, rot:0", sig.X, sig.Y, imageScale(sig.ImageWidth))
			wm, err := api.ImageWatermark(sig.ImagePath, desc, true, false, types.POINTS)
			if err != nil {
				return fmt.Errorf("signature image watermark: %w", err)
			}
			tmp := out + ".sig.tmp.pdf"
			if err := api.AddWatermarksFile(cur, tmp, pages, wm, conf); err != nil {
				return fmt.Errorf("stamping signature image: %w", err)
			}
			defer os.Remove(tmp)
			cur = tmp
		} else {
			fmt.Fprintf(os.Stderr, "warning: signature image not found: %s\n", sig.ImagePath)
		}
	}

	if len(sig.Lines) > 0 {
		text := strings.Join(sig.Lines, "\n")
		// Text sits below the image block.
		desc := fmt.Sprintf("font:Helvetica, points:9, pos:bl, off:%.0f %.0f, sc:1 abs, rot:0, fillcol:#000000", sig.X, sig.Y-14)
		wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("signature text watermark: %w", err)
		}
		if err := api.AddWatermarksFile(cur, out, pages, wm, conf); err != nil {
			return fmt.Errorf("stamping signature text: %w", err)
		}
		return nil
	}

	if cur == src {
		return copyFile(src, out)
	}
	return os.Rename(cur, out)
}

// imageScale converts a desired width in points to pdfcpu's absolute
// scale factor, which is relative to page width (A4 portrait).
func imageScale(widthPt float64) float64 {
	const a4WidthPt = 595.0
	if widthPt <= 0 {
		return 0.2
	}
	s := widthPt / a4WidthPt
	if s > 1 {
		s = 1
	}
	return s
}

// FirstPage writes the first page of src to out. Used to produce the
// letterhead-only page that carries an overflowing signature block.
func FirstPage(src, out string) error {
	if err := api.TrimFile(src, out, []string{"1"}, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("trimming %s to first page: %w", src, err)
	}
	return nil
}
