// ABOUTME: List command to display content items with filtering
// ABOUTME: Supports unread, saved, per-source, period, and limit filters

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/content"
	"github.com/quinn/skimmer/internal/storage"
	"github.com/quinn/skimmer/internal/timeutil"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List content items",
	Long: `List content items, newest first.

Filter with --unread, --saved, --source, --since (today, yesterday,
week, month), and --limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		unread, _ := cmd.Flags().GetBool("unread")
		saved, _ := cmd.Flags().GetBool("saved")
		sourceRef, _ := cmd.Flags().GetString("source")
		period, _ := cmd.Flags().GetString("since")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := &storage.ItemFilter{
			UnreadOnly: unread,
			SavedOnly:  saved,
		}
		if limit > 0 {
			filter.Limit = &limit
		}
		if sourceRef != "" {
			source, err := findSource(sourceRef)
			if err != nil {
				return err
			}
			filter.SourceID = &source.ID
		}
		if period != "" {
			cutoff, ok := timeutil.ParsePeriod(period)
			if !ok {
				return fmt.Errorf("unknown period %q (use today, yesterday, week, or month)", period)
			}
			filter.Since = &cutoff
		}

		items, err := store.ListItems(filter)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No items found. Sync sources with 'skimmer sync'")
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		for _, item := range items {
			marker := " "
			if !item.IsRead() {
				marker = bold("*")
			}
			title := item.Title
			if title == "" {
				title = item.URL
			}
			line := fmt.Sprintf("%s %s", marker, title)
			if item.Saved {
				line += " " + yellow("[saved]")
			}
			fmt.Println(line)

			meta := faint(item.ID[:8])
			if item.Author != "" {
				meta += faint(" · " + item.Author)
			}
			if item.PublishedAt != nil {
				meta += faint(" · " + item.PublishedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Printf("  %s\n", meta)
			if summary := content.Preview(item.Summary, 100); summary != "" {
				fmt.Printf("  %s\n", summary)
			}
			fmt.Println()
		}

		fmt.Printf("%d item(s)\n", len(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("unread", "u", false, "show only unread items")
	listCmd.Flags().Bool("saved", false, "show only saved items")
	listCmd.Flags().StringP("source", "s", "", "filter by source (id, id prefix, or name)")
	listCmd.Flags().String("since", "", "filter by period: today, yesterday, week, month")
	listCmd.Flags().IntP("limit", "n", 50, "maximum number of items (0 for all)")
}
