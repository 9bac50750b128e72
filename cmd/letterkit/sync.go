// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/catalog"
	"github.com/mattkingphysio/letterkit/internal/notion"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push unsynced catalog letters to Notion",
	Long: `Sync creates one Notion database page per catalog letter that has no
sync timestamp yet, then stamps each success back into the catalog. A failed
page is reported and retried on the next run.

The integration token and database ID come from --token and --database, the
sync.* config keys, or the .secrets/ files notion-api-key and
notion-database-id.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	catalogPath := flagOrConfig(cmd, "catalog", "letter.catalog_path")
	if catalogPath == "" {
		return fmt.Errorf("catalog required: set --catalog or letter.catalog_path in the config")
	}
	token := flagOrConfig(cmd, "token", "sync.token")
	if token == "" {
		token = loadedSecrets.NotionAPIKey()
	}
	if token == "" {
		return fmt.Errorf("Notion token required: set --token, sync.token, or .secrets/notion-api-key")
	}
	databaseID := flagOrConfig(cmd, "database", "sync.database_id")
	if databaseID == "" {
		databaseID = loadedSecrets.NotionDatabaseID()
	}
	if databaseID == "" {
		return fmt.Errorf("Notion database ID required: set --database, sync.database_id, or .secrets/notion-database-id")
	}

	store, err := catalog.Open(catalogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	client := notion.NewClient(token, databaseID)
	summary, err := client.Sync(context.Background(), store, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d letter(s) failed to sync", summary.Failed)
	}
	return nil
}

func init() {
	syncCmd.Flags().String("catalog", "", "SQLite letter catalog path")
	syncCmd.Flags().String("token", "", "Notion integration token")
	syncCmd.Flags().String("database", "", "Notion database ID")

	rootCmd.AddCommand(syncCmd)
}
