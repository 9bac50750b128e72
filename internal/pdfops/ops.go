package pdfops

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mattkingphysio/letterkit/internal/fsutil"
)

// Merge concatenates the input PDFs into out, in order.
func Merge(inFiles []string, out string) error {
	if len(inFiles) == 0 {
		return fmt.Errorf("merge: no input files")
	}
	if err := api.MergeCreateFile(inFiles, out, false, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("merging %d files into %s: %w", len(inFiles), out, err)
	}
	return nil
}

// Split writes src into span-sized page chunks under outDir. span 1
// produces one file per page.
func Split(src, outDir string, span int) error {
	if span < 1 {
		span = 1
	}
	if err := api.SplitFile(src, outDir, span, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("splitting %s: %w", src, err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count of %s: %w", path, err)
	}
	return n, nil
}

// copyFile is a local alias; pdfops callers hand files around a lot.
func copyFile(src, dst string) error {
	return fsutil.CopyFile(src, dst)
}
