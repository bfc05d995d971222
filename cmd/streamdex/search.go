package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streamdex/streamdex/internal/aggregate"
	"github.com/streamdex/streamdex/pkg/title"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>...",
	Short: "Search all enabled providers",
	Long: `Search all enabled providers concurrently.

Examples:
  streamdex search "The Matrix"
  streamdex search --page 2 "one piece"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Int("page", 1, "Result page")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := title.NormalizeQuery(strings.Join(args, " "))
	page, _ := cmd.Flags().GetInt("page")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.engine.Search(cmd.Context(), query, page)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if err := h.Wait(cmd.Context()); err != nil {
		return err
	}

	results := h.Results()
	items := h.Items()

	if jsonOutput {
		printJSON(map[string]any{
			"request_id": h.ID,
			"items":      items,
			"providers":  results,
		})
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No results found")
	} else {
		fmt.Printf("Found %d results for %q:\n\n", len(items), query)
		fmt.Printf("  # │ %-42s │ %s\n", "TITLE", "PROVIDER")
		fmt.Println("────┼────────────────────────────────────────────┼──────────")
		for i, it := range items {
			name := it.Title
			if len(name) > 42 {
				name = name[:39] + "..."
			}
			fmt.Printf(" %2d │ %-42s │ %s\n", i+1, name, it.Provider)
		}
	}

	// Providers that produced nothing are summarized, not hidden:
	// the CLI is the place to see why a source went quiet.
	var quiet []string
	for _, r := range results {
		switch r.Status {
		case aggregate.StatusFailed:
			quiet = append(quiet, fmt.Sprintf("%s: %v", r.Provider, r.Err))
		case aggregate.StatusEmpty:
			quiet = append(quiet, r.Provider+": no matches")
		case aggregate.StatusCancelled:
			quiet = append(quiet, r.Provider+": cancelled")
		}
	}
	if len(quiet) > 0 {
		fmt.Printf("\nWarnings: %s\n", strings.Join(quiet, ", "))
	}
	return nil
}
