// ABOUTME: Sync command to refresh items from all or one source
// ABOUTME: Streams per-source progress with colored output and prints a summary

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Refresh items from sources",
	Long: `Refresh items from all subscribed sources or a single source.

One source failing does not stop the others; failures are reported in
the summary. Your read and saved state is preserved across refreshes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := syncer.New(store)

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		var batch *syncer.BatchResult
		var err error
		if len(args) == 1 {
			source, findErr := findSource(args[0])
			if findErr != nil {
				return findErr
			}
			batch, err = orch.SyncOne(context.Background(), source.ID)
		} else {
			batch, err = orch.SyncAll(context.Background())
		}
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}

		for _, result := range batch.Results {
			if result.Err != nil {
				fmt.Printf("%s %s: %v\n", red("x"), result.SourceName, result.Err)
			} else if result.NewItems > 0 {
				fmt.Printf("%s %s: %d new\n", green("v"), result.SourceName, result.NewItems)
			} else {
				fmt.Printf("%s %s: no new items\n", green("v"), result.SourceName)
			}
		}

		if len(batch.Results) == 0 {
			fmt.Println("No sources found. Add one with 'skimmer source add <url>'")
			return nil
		}

		fmt.Println()
		fmt.Printf("Summary: %d source(s) synced\n", len(batch.Results))
		if batch.NewItems > 0 {
			fmt.Printf("  %s %d new item(s)\n", green("v"), batch.NewItems)
		}
		if failed := batch.Failed(); failed > 0 {
			fmt.Printf("  %s %d error(s)\n", red("x"), failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
