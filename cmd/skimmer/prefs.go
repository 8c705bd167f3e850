// ABOUTME: Prefs commands for viewing and changing sync preferences
// ABOUTME: Background sync toggle, interval, and notification settings

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/config"
	"github.com/quinn/skimmer/internal/models"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "View and change sync preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.NewPrefsFile("").Load()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		faint := color.New(color.Faint).SprintFunc()

		fmt.Printf("Background sync:  %s\n", onOff(prefs.BackgroundSync))
		fmt.Printf("Sync interval:    %dh %s\n", prefs.SyncIntervalHours,
			faint(fmt.Sprintf("(minimum %dh)", models.MinSyncIntervalHours)))
		fmt.Printf("Notifications:    %s\n", onOff(prefs.NotifyOnNewItems))
		if prefs.LastSyncSuccessAt != nil {
			fmt.Printf("Last sync:        %s\n", prefs.LastSyncSuccessAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a sync preference",
	Long: `Set a sync preference.

Keys:
  background-sync   on|off    enable periodic background syncing
  interval          hours     hours between background syncs (minimum 6)
  notify            on|off    notify when enough new items arrive`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		prefsFile := config.NewPrefsFile("")
		prefs, err := prefsFile.Load()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		switch key {
		case "background-sync":
			enabled, err := parseOnOff(value)
			if err != nil {
				return err
			}
			prefs.BackgroundSync = enabled
		case "interval":
			hours, err := strconv.Atoi(value)
			if err != nil || hours <= 0 {
				return fmt.Errorf("interval must be a positive number of hours")
			}
			if hours < models.MinSyncIntervalHours {
				fmt.Printf("Interval below the %dh minimum; clamping\n", models.MinSyncIntervalHours)
				hours = models.MinSyncIntervalHours
			}
			prefs.SyncIntervalHours = hours
		case "notify":
			enabled, err := parseOnOff(value)
			if err != nil {
				return err
			}
			prefs.NotifyOnNewItems = enabled
		default:
			return fmt.Errorf("unknown preference: %s", key)
		}

		if err := prefsFile.Save(prefs); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
		fmt.Printf("Set %s = %s\n", key, value)
		if prefs.BackgroundSync {
			fmt.Println("Run 'skimmer daemon' to apply the schedule.")
		}
		return nil
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}
