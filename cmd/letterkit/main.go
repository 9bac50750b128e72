// Copyright Matt King, 2026. All rights reserved.

// Package main is the entry point for the letterkit CLI.
// See docs/ARCHITECTURE § CLI Surface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattkingphysio/letterkit/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
// Flags and config keys outrank it; commands fall back to its typed
// accessors when neither is set.
var loadedSecrets secrets.Store

// rootCmd is the base command for the letterkit CLI.
var rootCmd = &cobra.Command{
	Use:   "letterkit",
	Short: "Clinic letter automation for a physiotherapy practice",
	Long: `letterkit turns exported clinical letters into finished, filed documents.
The letter command takes the newest PDF from the downloads folder, reads the
patient, body area, and referrer from its text, lays the clinic letterhead
under every page, stamps the signature block, and saves the result under the
standard filename.

The remaining commands maintain the document library: extract previews field
extraction, rename batch-renames a folder of papers, dedup flattens and
de-duplicates a tree, plan applies or reverts a recorded run, and sync pushes
the letter catalog to Notion.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./letterkit.yaml or ~/.config/letterkit/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("letterkit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "letterkit"))
		}
	}

	viper.SetEnvPrefix("LETTERKIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// flagOrConfig returns the flag value when changed, otherwise the viper
// key, otherwise the flag's default.
func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	v, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		return v
	}
	return viper.GetString(key)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
