// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/extract"
	"github.com/mattkingphysio/letterkit/internal/pdfops"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Preview field extraction for a PDF without assembling it",
	Long: `Extract runs the rule table against a document's text and prints
which rule matched each field. Nothing is written; use this to check a rule
file before trusting it with real letters.

Pass "-" to read plain text from stdin instead of a PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	rules, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	var text string
	if args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	} else {
		pages, err := pdfops.ExtractPages(args[0], 0)
		if err != nil {
			return fmt.Errorf("extracting text: %w", err)
		}
		text = strings.Join(pages, "\n")
	}

	if showText, _ := cmd.Flags().GetBool("text"); showText {
		fmt.Println(text)
		return nil
	}

	rec := extract.Extract(text, rules)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printField := func(label string, f types.Field) {
		if f.Set() {
			fmt.Printf("%-10s %s (rule: %s)\n", label+":", f.Value, f.Rule)
		} else {
			fmt.Printf("%-10s not found\n", label+":")
		}
	}
	printField("surname", rec.Surname)
	printField("initial", rec.Initial)
	printField("body area", rec.BodyArea)
	printField("referrer", rec.Referrer)

	if missing := rec.Missing(); len(missing) > 0 {
		fmt.Printf("\nmissing: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func init() {
	extractCmd.Flags().String("rules", "", "YAML extraction rule file (default: built-in rules)")
	extractCmd.Flags().Bool("json", false, "output the record as JSON")
	extractCmd.Flags().Bool("text", false, "print the extracted text instead of running rules")

	rootCmd.AddCommand(extractCmd)
}
