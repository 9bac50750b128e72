// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/pdfops"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <out.pdf> <in.pdf> [in.pdf...]",
	Short: "Merge PDFs into one document",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, inputs := args[0], args[1:]
		if err := pdfops.Merge(inputs, out); err != nil {
			return err
		}
		fmt.Printf("merged %d files into %s\n", len(inputs), out)
		return nil
	},
}

var splitCmd = &cobra.Command{
	Use:   "split <in.pdf> <out-dir>",
	Short: "Split a PDF into per-page files",
	RunE: func(cmd *cobra.Command, args []string) error {
		span, _ := cmd.Flags().GetInt("span")
		if err := pdfops.Split(args[0], args[1], span); err != nil {
			return err
		}
		fmt.Printf("split %s into %s\n", args[0], args[1])
		return nil
	},
	Args: cobra.ExactArgs(2),
}

func init() {
	splitCmd.Flags().Int("span", 1, "pages per output file")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(splitCmd)
}
