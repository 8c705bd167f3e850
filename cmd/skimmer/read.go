// ABOUTME: Read command for viewing a content item
// ABOUTME: Renders markdown in the terminal and marks the item as read

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/content"
	"github.com/quinn/skimmer/internal/models"
)

var readCmd = &cobra.Command{
	Use:   "read <item-id>",
	Short: "Read a content item",
	Long:  "Display the full content of an item and mark it as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noMark, _ := cmd.Flags().GetBool("no-mark")

		item, err := store.GetItemByIDOrPrefix(args[0])
		if err != nil {
			return err
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Println(strings.Repeat("─", 60))

		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Printf("%s\n\n", bold(title))

		if source, err := store.GetSource(item.SourceID); err == nil {
			fmt.Printf("%s %s\n", faint("Source:"), source.DisplayName())
		}
		if item.Author != "" {
			fmt.Printf("%s %s\n", faint("Author:"), item.Author)
		}
		if item.PublishedAt != nil {
			fmt.Printf("%s %s\n", faint("Published:"), item.PublishedAt.Local().Format("Mon, 02 Jan 2006 15:04 MST"))
		}
		if item.URL != "" {
			fmt.Printf("%s %s\n", faint("Link:"), cyan(item.URL))
		}
		if item.AudioURL != "" {
			fmt.Printf("%s %s\n", faint("Audio:"), cyan(item.AudioURL))
			if item.AudioDurationSeconds != nil {
				fmt.Printf("%s %s\n", faint("Duration:"),
					(time.Duration(*item.AudioDurationSeconds) * time.Second).String())
			}
			if item.EpisodeNumber != nil {
				fmt.Printf("%s %d\n", faint("Episode:"), *item.EpisodeNumber)
			}
		}

		fmt.Println(strings.Repeat("─", 60))

		body := item.Content
		if body == "" {
			body = item.Summary
		}
		if body != "" {
			markdown := content.ToMarkdown(body)
			rendered, err := glamour.Render(markdown, "dark")
			if err != nil {
				fmt.Printf("%s\n", faint("(markdown rendering unavailable, showing plain text)"))
				fmt.Printf("\n%s\n", markdown)
			} else {
				fmt.Print(rendered)
			}
		} else {
			fmt.Println("\n(No content available)")
		}

		fmt.Println()

		if !noMark && !item.IsRead() {
			if err := store.UpdateReadState(item.ID, models.StateRead); err != nil {
				return fmt.Errorf("mark item as read: %w", err)
			}
			fmt.Printf("%s\n", faint("Marked as read"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Bool("no-mark", false, "don't mark the item as read")
}
