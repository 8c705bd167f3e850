// ABOUTME: Root Cobra command and global flags
// ABOUTME: Opens configuration and storage shared by all subcommands

package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/config"
	"github.com/quinn/skimmer/internal/storage"
)

var (
	dataDir string
	cfg     *config.Config
	store   storage.Store
)

var rootCmd = &cobra.Command{
	Use:   "skimmer",
	Short: "Multi-source feed reader",
	Long: `skimmer ingests RSS, podcast, YouTube, and Medium feeds into one
local reading list, keeping your read/saved state across refreshes.

Add sources, sync on demand or on a schedule, and read in the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; ignore a missing file.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		store, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			if err := store.Close(); err != nil {
				return fmt.Errorf("close storage: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.local/share/skimmer)")
}
