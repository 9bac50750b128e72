// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/pdfops"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print a PDF's info dictionary and page count",
	Long: `Inspect reads a document's metadata the same way the rename workflow
does, so junk titles and missing authors can be spotted before a batch run.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	info, err := pdfops.ReadInfo(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	print := func(label, value string) {
		if value != "" {
			fmt.Printf("%-10s %s\n", label+":", value)
		}
	}
	print("title", info.Title)
	print("author", info.Author)
	print("subject", info.Subject)
	print("creator", info.Creator)
	print("producer", info.Producer)
	print("created", info.CreationDate)
	print("modified", info.ModDate)
	fmt.Printf("%-10s %d\n", "pages:", info.PageCount)
	if year := info.Year(); year > 0 {
		fmt.Printf("%-10s %d\n", "year:", year)
	}
	return nil
}

func init() {
	inspectCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(inspectCmd)
}
