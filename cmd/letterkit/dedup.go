// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/dedup"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Flatten a tree of PDFs and remove exact duplicates",
	Long: `Dedup walks a folder tree, hashes every PDF, and plans one keeper per
content-identical group into a single flat folder under a repaired name.
Mangled suffixes like ".pdf_" and ".pdf.pdf" are cleaned on the way in.

Runs are dry by default: only the CSV plan is written. With --apply keepers
move into the flat folder; with --delete-duplicates the rest are removed.`,
	RunE: runDedup,
}

func runDedup(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")
	deleteDups, _ := cmd.Flags().GetBool("delete-duplicates")

	keep := flagOrConfig(cmd, "keep", "dedup.keep_policy")

	_, err := dedup.Run(dedup.Options{
		Root:             mustFlag(cmd, "root"),
		FlatDir:          mustFlag(cmd, "flat"),
		LogPath:          mustFlag(cmd, "log"),
		Apply:            apply,
		DeleteDuplicates: deleteDups,
		KeepPolicy:       keep,
	}, os.Stdout)
	return err
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	dedupCmd.Flags().String("root", ".", "folder tree to flatten")
	dedupCmd.Flags().String("flat", "", "flat folder for keepers (default: <root>/flat-<timestamp>)")
	dedupCmd.Flags().String("log", "", "CSV plan path (default: inside the flat folder)")
	dedupCmd.Flags().Bool("apply", false, "execute the plan instead of a dry run")
	dedupCmd.Flags().Bool("delete-duplicates", false, "remove non-keepers instead of leaving them in place")
	dedupCmd.Flags().String("keep", "", "keeper policy: clean-suffix, largest, newest, newest-largest")

	rootCmd.AddCommand(dedupCmd)
}
