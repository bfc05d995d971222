package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info --provider <value> <link>",
	Short: "Show metadata for a content link",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfoCmd,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().String("provider", "", "Provider value the link belongs to")
	_ = infoCmd.MarkFlagRequired("provider")
}

func runInfoCmd(cmd *cobra.Command, args []string) error {
	providerValue, _ := cmd.Flags().GetString("provider")
	link := args[0]

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	md, err := a.engine.Metadata(cmd.Context(), providerValue, link)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(md)
		return nil
	}

	fmt.Println(md.Title)
	if md.Year != "" || md.Rating != "" {
		fmt.Printf("%s  %s\n", md.Year, md.Rating)
	}
	if md.Synopsis != "" {
		fmt.Printf("\n%s\n", md.Synopsis)
	}
	if len(md.Cast) > 0 {
		fmt.Printf("\nCast: %s\n", strings.Join(md.Cast, ", "))
	}
	if len(md.Links) > 0 {
		fmt.Printf("\nWatchable links:\n")
		for i, l := range md.Links {
			fmt.Printf(" %2d. [%s] %s  %s\n", i+1, l.Type, l.Title, l.Link)
		}
	}
	return nil
}
