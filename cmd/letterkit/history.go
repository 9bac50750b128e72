// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/catalog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List letters recorded in the catalog",
	Long: `History lists recent catalog entries, newest first. With --patient it
shows every letter for one patient key (surname plus initial, e.g. SmithJ).`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	catalogPath := flagOrConfig(cmd, "catalog", "letter.catalog_path")
	if catalogPath == "" {
		return fmt.Errorf("catalog required: set --catalog or letter.catalog_path in the config")
	}

	store, err := catalog.Open(catalogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	var letters []catalog.Letter
	if patient, _ := cmd.Flags().GetString("patient"); patient != "" {
		letters, err = store.ByPatient(ctx, patient)
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		letters, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(letters) == 0 {
		fmt.Println("No letters recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-12s  %-6s  %s\n",
		"Date", "Patient", "Area", "Sync", "Filename")
	for _, l := range letters {
		synced := "-"
		if l.SyncedAt != nil {
			synced = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-12s  %-6s  %s\n",
			l.CreatedAt.Format("2006-01-02"), l.PatientKey, l.BodyArea, synced, l.Filename)
	}
	fmt.Printf("\n%d letter(s)\n", len(letters))
	return nil
}

func init() {
	historyCmd.Flags().String("catalog", "", "SQLite letter catalog path")
	historyCmd.Flags().String("patient", "", "show all letters for one patient key")
	historyCmd.Flags().Int("limit", 20, "maximum entries to list")

	rootCmd.AddCommand(historyCmd)
}
