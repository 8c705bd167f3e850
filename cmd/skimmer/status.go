// ABOUTME: Status command summarizing the local library and sync state
// ABOUTME: Shows source/item/unread counts and the last sync outcome

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := store.ListSources()
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
		total, err := store.CountItems()
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		unread, err := store.CountUnread()
		if err != nil {
			return fmt.Errorf("count unread: %w", err)
		}

		bold := color.New(color.Bold).SprintFunc()

		fmt.Printf("%s %d source(s), %d item(s), %d unread\n", bold("Library:"), len(sources), total, unread)

		prefs, err := config.NewPrefsFile("").Load()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		fmt.Printf("%s background sync %s", bold("Sync:"), onOff(prefs.BackgroundSync))
		if prefs.BackgroundSync {
			fmt.Printf(" every %s", prefs.Interval())
		}
		fmt.Println()
		if prefs.LastSyncSuccessAt != nil {
			fmt.Printf("  last success: %s\n", prefs.LastSyncSuccessAt.Local().Format("2006-01-02 15:04"))
		}
		if prefs.LastSyncAttemptAt != nil &&
			(prefs.LastSyncSuccessAt == nil || prefs.LastSyncAttemptAt.After(*prefs.LastSyncSuccessAt)) {
			fmt.Printf("  last attempt: %s\n", prefs.LastSyncAttemptAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
