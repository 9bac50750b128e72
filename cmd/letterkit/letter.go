// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattkingphysio/letterkit/internal/catalog"
	"github.com/mattkingphysio/letterkit/internal/extract"
	"github.com/mattkingphysio/letterkit/internal/letter"
	"github.com/mattkingphysio/letterkit/pkg/types"
)

var letterCmd = &cobra.Command{
	Use:   "letter [file]",
	Short: "Assemble the newest download into a finished letter",
	Long: `Letter processes one exported clinical letter end to end: field
extraction from the document text, an operator prompt for anything the rules
missed, letterhead under every page, the signature block on the final page,
and the result saved under the standard filename.

Without an argument the newest PDF in the downloads folder is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLetter,
}

func runLetter(cmd *cobra.Command, args []string) error {
	cfg := letterConfigFromFlags(cmd)
	if cfg.LetterheadPDF == "" {
		return fmt.Errorf("letterhead required: set --letterhead or letter.letterhead_pdf in the config")
	}

	rules, err := loadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	pipeline := &letter.Pipeline{
		Cfg:   cfg,
		Rules: rules,
		Out:   os.Stdout,
	}

	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); !noPrompt {
		pipeline.Prompt = extract.NewPrompter(os.Stdin, os.Stderr)
	}

	if cfg.CatalogPath != "" {
		store, err := catalog.Open(cfg.CatalogPath)
		if err != nil {
			return err
		}
		defer store.Close()
		pipeline.Catalog = store
	}

	ctx := context.Background()
	if len(args) == 1 {
		_, err = pipeline.RunFile(ctx, args[0])
	} else {
		_, err = pipeline.Run(ctx)
	}
	return err
}

// letterConfigFromFlags merges letter.* config keys with command flags.
func letterConfigFromFlags(cmd *cobra.Command) types.LetterConfig {
	cfg := types.LetterConfig{
		DownloadsDir:  flagOrConfig(cmd, "downloads", "letter.downloads_dir"),
		LetterheadPDF: flagOrConfig(cmd, "letterhead", "letter.letterhead_pdf"),
		OutputDir:     flagOrConfig(cmd, "out", "letter.output_dir"),
		RulesFile:     flagOrConfig(cmd, "rules", "letter.rules_file"),
		CatalogPath:   flagOrConfig(cmd, "catalog", "letter.catalog_path"),
		OverflowChars: viper.GetInt("letter.overflow_chars"),
		Signature: types.SignatureConfig{
			ImagePath:      viper.GetString("letter.signature.image_path"),
			Name:           viper.GetString("letter.signature.name"),
			Credentials:    viper.GetString("letter.signature.credentials"),
			Title:          viper.GetString("letter.signature.title"),
			Qualifications: viper.GetString("letter.signature.qualifications"),
			Interests:      viper.GetString("letter.signature.interests"),
			XCm:            viper.GetFloat64("letter.signature.x_cm"),
			YCm:            viper.GetFloat64("letter.signature.y_cm"),
			WidthCm:        viper.GetFloat64("letter.signature.width_cm"),
		},
	}
	return cfg
}

// loadRules returns the configured rule file or the built-in table.
func loadRules(path string) (extract.RuleSet, error) {
	if path == "" {
		return extract.DefaultRules(), nil
	}
	return extract.LoadRules(path)
}

func init() {
	letterCmd.Flags().String("downloads", "", "folder scanned for the newest PDF")
	letterCmd.Flags().String("letterhead", "", "single-page letterhead PDF template")
	letterCmd.Flags().String("out", "", "output folder for finished letters")
	letterCmd.Flags().String("rules", "", "YAML extraction rule file (default: built-in rules)")
	letterCmd.Flags().String("catalog", "", "SQLite letter catalog path (empty disables the catalog)")
	letterCmd.Flags().Bool("no-prompt", false, "never prompt; use placeholders for missing fields")

	rootCmd.AddCommand(letterCmd)
}
