package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers",
	RunE:  runProvidersCmd,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProvidersCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if jsonOutput {
		type entry struct {
			Value        string   `json:"value"`
			Name         string   `json:"name"`
			Capabilities []string `json:"capabilities"`
			Enabled      bool     `json:"enabled"`
		}
		var out []entry
		for _, pc := range a.cfg.Providers {
			out = append(out, entry{
				Value:        pc.Value,
				Name:         pc.Name,
				Capabilities: pc.Capabilities,
				Enabled:      pc.IsEnabled(),
			})
		}
		printJSON(out)
		return nil
	}

	fmt.Printf("%-16s %-20s %-28s %s\n", "VALUE", "NAME", "CAPABILITIES", "ENABLED")
	for _, pc := range a.cfg.Providers {
		name := pc.Name
		if name == "" {
			name = pc.Value
		}
		fmt.Printf("%-16s %-20s %-28s %v\n",
			pc.Value, name, strings.Join(pc.Capabilities, ","), pc.IsEnabled())
	}
	return nil
}
