// ABOUTME: Mark commands for read/unread state and the saved flag
// ABOUTME: Accepts full item IDs or unambiguous ID prefixes

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/models"
)

var markReadCmd = &cobra.Command{
	Use:   "mark-read <item-id>...",
	Short: "Mark items as read",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setReadState(args, models.StateRead)
	},
}

var markUnreadCmd = &cobra.Command{
	Use:   "mark-unread <item-id>...",
	Short: "Mark items as unread",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setReadState(args, models.StateUnread)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <item-id>",
	Short: "Save an item for later",
	Long:  "Saved items survive source refreshes and can be listed with 'skimmer list --saved'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSaved(args[0], true)
	},
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <item-id>",
	Short: "Remove an item from saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSaved(args[0], false)
	},
}

func setReadState(refs []string, state models.ReadState) error {
	for _, ref := range refs {
		item, err := store.GetItemByIDOrPrefix(ref)
		if err != nil {
			return err
		}
		if err := store.UpdateReadState(item.ID, state); err != nil {
			return fmt.Errorf("update read state: %w", err)
		}
		fmt.Printf("Marked %s: %s\n", state, itemLabel(item))
	}
	return nil
}

func setSaved(ref string, saved bool) error {
	item, err := store.GetItemByIDOrPrefix(ref)
	if err != nil {
		return err
	}
	if err := store.UpdateSaved(item.ID, saved); err != nil {
		return fmt.Errorf("update saved flag: %w", err)
	}
	if saved {
		fmt.Printf("Saved: %s\n", itemLabel(item))
	} else {
		fmt.Printf("Unsaved: %s\n", itemLabel(item))
	}
	return nil
}

func itemLabel(item *models.ContentItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.ID[:8]
}

func init() {
	rootCmd.AddCommand(markReadCmd)
	rootCmd.AddCommand(markUnreadCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(unsaveCmd)
}
