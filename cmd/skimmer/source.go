// ABOUTME: Source management commands for adding, listing, renaming, and removing sources
// ABOUTME: Resolves user input to canonical feed URLs and handles OPML import/export

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/models"
	"github.com/quinn/skimmer/internal/opml"
	"github.com/quinn/skimmer/internal/resolve"
	"github.com/quinn/skimmer/internal/storage"
	"github.com/quinn/skimmer/internal/syncer"
)

var sourceCmd = &cobra.Command{
	Use:     "source",
	Aliases: []string{"s"},
	Short:   "Manage content sources",
	Long:    "Add, list, rename, and remove content sources (RSS, podcast, YouTube, Medium)",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <url-or-handle>",
	Short: "Add a new source",
	Long: `Add a new source to your subscriptions.

The input is resolved according to the source type: RSS and podcast
take a feed URL, YouTube accepts a channel URL or @handle, Medium
accepts a profile URL or @username. After adding, the source is
synced once so items appear immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		typeName, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")
		noSync, _ := cmd.Flags().GetBool("no-sync")

		sourceType, err := models.ParseSourceType(typeName)
		if err != nil {
			return err
		}

		resolver := resolve.New()
		resolution, err := resolver.Resolve(context.Background(), input, sourceType)
		if err != nil {
			return fmt.Errorf("resolve source: %w", err)
		}

		if _, err := store.GetSourceByURL(resolution.FeedURL); err == nil {
			return fmt.Errorf("source already exists: %s", resolution.FeedURL)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check for existing source: %w", err)
		}

		if name == "" {
			name = resolution.DisplayName
		}
		source := models.NewSource(name, sourceType, resolution.FeedURL)
		if err := store.CreateSource(source); err != nil {
			return fmt.Errorf("create source: %w", err)
		}

		fmt.Printf("Added %s source: %s\n", sourceType.Info().DisplayName, source.DisplayName())
		fmt.Printf("  Feed URL: %s\n", source.URL)
		fmt.Printf("  Source ID: %s\n", source.ID)

		if noSync {
			return nil
		}

		orch := syncer.New(store)
		batch, err := orch.SyncOne(context.Background(), source.ID)
		if err != nil {
			return fmt.Errorf("initial sync: %w", err)
		}
		if err := batch.LastError(); err != nil {
			fmt.Printf("Initial sync failed: %v\n", err)
			fmt.Println("The source was added; retry with 'skimmer sync'.")
			return nil
		}
		fmt.Printf("Fetched %d item(s)\n", batch.NewItems)
		return nil
	},
}

var sourceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all sources",
	Long:    "List all subscribed sources with item counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := store.SourceStats()
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No sources found. Add one with 'skimmer source add <url>'")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("Found %d source(s):\n\n", len(stats))
		for _, row := range stats {
			fmt.Printf("%s %s\n", cyan("["+row.SourceType.Info().DisplayName+"]"), row.SourceName)
			fmt.Printf("  %d item(s), %d unread  %s\n\n",
				row.ItemCount, row.UnreadCount, faint(row.SourceID[:8]))
		}
		return nil
	},
}

var sourceRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := findSource(args[0])
		if err != nil {
			return err
		}
		if err := store.UpdateSource(source.ID, args[1], source.URL); err != nil {
			return fmt.Errorf("rename source: %w", err)
		}
		fmt.Printf("Renamed source to: %s\n", args[1])
		return nil
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a source and all its items",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := findSource(args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteSourceCascade(source.ID); err != nil {
			return fmt.Errorf("remove source: %w", err)
		}
		fmt.Printf("Removed source: %s\n", source.DisplayName())
		return nil
	},
}

var sourceImportCmd = &cobra.Command{
	Use:   "import <file.opml>",
	Short: "Import sources from an OPML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outlines, err := opml.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("import OPML: %w", err)
		}

		var batch []*models.Source
		skipped := 0
		for _, outline := range outlines {
			if _, err := store.GetSourceByURL(outline.URL); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("check for existing source: %w", err)
			}
			batch = append(batch, models.NewSource(outline.Title, outline.Type, outline.URL))
		}
		if err := store.UpsertSources(batch); err != nil {
			return fmt.Errorf("import sources: %w", err)
		}

		fmt.Printf("Imported %d source(s)", len(batch))
		if skipped > 0 {
			fmt.Printf(", skipped %d duplicate(s)", skipped)
		}
		fmt.Println()
		return nil
	},
}

var sourceExportCmd = &cobra.Command{
	Use:   "export [file.opml]",
	Short: "Export sources to OPML",
	Long:  "Export all sources as OPML, to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := store.ListSources()
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
		if len(args) == 1 {
			if err := opml.WriteFile(args[0], "skimmer sources", sources); err != nil {
				return fmt.Errorf("export OPML: %w", err)
			}
			fmt.Printf("Exported %d source(s) to %s\n", len(sources), args[0])
			return nil
		}
		return opml.Write(os.Stdout, "skimmer sources", sources)
	},
}

var sourceTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported source types",
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint).SprintFunc()
		for _, t := range models.SourceTypes() {
			info := t.Info()
			line := fmt.Sprintf("%-10s %s", t, info.DisplayName)
			if !info.Enabled {
				line += "  (coming soon)"
				fmt.Println(faint(line))
				continue
			}
			fmt.Println(line)
		}
		return nil
	},
}

// findSource looks up a source by full ID, ID prefix, or exact name.
func findSource(ref string) (*models.Source, error) {
	source, err := store.GetSource(ref)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get source: %w", err)
	}

	sources, err := store.ListSources()
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	var matches []*models.Source
	for _, s := range sources {
		if s.Name == ref || (len(ref) >= 6 && len(ref) <= len(s.ID) && s.ID[:len(ref)] == ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("source not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, errors.New("reference matches multiple sources, use the full ID")
	}
}

func init() {
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRenameCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceImportCmd)
	sourceCmd.AddCommand(sourceExportCmd)
	sourceCmd.AddCommand(sourceTypesCmd)

	sourceAddCmd.Flags().StringP("type", "t", "rss", "source type (rss, podcast, youtube, medium)")
	sourceAddCmd.Flags().StringP("name", "n", "", "display name (defaults to resolved title)")
	sourceAddCmd.Flags().Bool("no-sync", false, "skip the initial sync")
}
