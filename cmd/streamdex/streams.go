package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamdex/streamdex/internal/media"
)

var streamsCmd = &cobra.Command{
	Use:   "streams --provider <value> <link>",
	Short: "Resolve playable streams for a watchable link",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreamsCmd,
}

func init() {
	rootCmd.AddCommand(streamsCmd)
	streamsCmd.Flags().String("provider", "", "Provider value the link belongs to")
	streamsCmd.Flags().String("type", "movie", "Media type (movie or series)")
	_ = streamsCmd.MarkFlagRequired("provider")
}

func runStreamsCmd(cmd *cobra.Command, args []string) error {
	providerValue, _ := cmd.Flags().GetString("provider")
	typeStr, _ := cmd.Flags().GetString("type")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	streams, err := a.engine.Streams(cmd.Context(), providerValue, args[0], media.Type(typeStr))
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(streams)
		return nil
	}

	if len(streams) == 0 {
		fmt.Println("No server found")
		return nil
	}

	for i, s := range streams {
		quality := s.Quality
		if quality == "" {
			quality = "-"
		}
		fmt.Printf(" %2d. %-12s %-5s %-6s %s\n", i+1, s.Server, s.Type, quality, s.Link)
	}
	return nil
}
