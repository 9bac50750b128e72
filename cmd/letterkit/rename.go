// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattkingphysio/letterkit/internal/rename"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Batch-rename a folder of papers to Surname-Year-title.pdf",
	Long: `Rename scans a folder of clinical papers and plans a rename for each
to the standard "Surname-Year-kebab-title.pdf" shape. Metadata comes from the
document info dictionary when plausible, from the first two pages of text
otherwise, and from CrossRef when the text carries a DOI.

Runs are dry by default: a CSV plan, a metadata-diff log, and a remaining log
are written without touching any file. With --apply the source folder is
backed up first, the plan executes, and content-identical duplicates are
swept into the backup folder.`,
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")
	limit, _ := cmd.Flags().GetInt("limit")
	lookupDOI, _ := cmd.Flags().GetBool("lookup-doi")
	if !cmd.Flags().Changed("lookup-doi") && viper.IsSet("rename.lookup_doi") {
		lookupDOI = viper.GetBool("rename.lookup_doi")
	}

	cfg := types.RenameConfig{
		Src:       flagOrConfig(cmd, "src", "rename.src"),
		Out:       flagOrConfig(cmd, "out", "rename.out"),
		Backup:    flagOrConfig(cmd, "backup", "rename.backup"),
		Logs:      flagOrConfig(cmd, "logs", "rename.logs"),
		LookupDOI: lookupDOI,
		Mailto:    flagOrConfig(cmd, "mailto", "rename.mailto"),
	}
	if cfg.Mailto == "" {
		cfg.Mailto = loadedSecrets.CrossrefMailto()
	}
	cfg.UserAgent = viper.GetString("rename.user_agent")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "letterkit/" + version
	}
	cfg.Timeout = 30 * time.Second

	skipBackup, _ := cmd.Flags().GetBool("skip-backup")

	_, err := rename.Run(context.Background(), rename.Options{
		Cfg:        cfg,
		Apply:      apply,
		Limit:      limit,
		SkipBackup: skipBackup,
	}, os.Stdout)
	return err
}

func init() {
	renameCmd.Flags().String("src", ".", "folder to scan and rename")
	renameCmd.Flags().String("out", "", "target folder for renamed files (default: same as --src)")
	renameCmd.Flags().String("backup", "", "backup root for apply runs and swept duplicates")
	renameCmd.Flags().String("logs", "", "folder for CSV plan and audit logs (default: <src>/logs)")
	renameCmd.Flags().Bool("apply", false, "execute the plan instead of a dry run")
	renameCmd.Flags().Bool("skip-backup", false, "apply without the pre-run snapshot of --src")
	renameCmd.Flags().Int("limit", 0, "maximum renames to execute (0 = no limit)")
	renameCmd.Flags().Bool("lookup-doi", true, "resolve DOIs found in document text via CrossRef")
	renameCmd.Flags().String("mailto", "", "contact email for CrossRef's polite pool")

	rootCmd.AddCommand(renameCmd)
}
