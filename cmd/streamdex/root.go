package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "streamdex",
	Short: "Search, resolve, and download media across streaming providers",
	Long: `streamdex - provider aggregation and download manager

Fans searches out across configured providers, resolves watchable
links to playable streams, and downloads files or HLS streams.

Run 'streamdex serve' to start the HTTP API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; config values reference env vars with ${VAR}.
		_ = godotenv.Load()
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: discover)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("streamdex {{.Version}}\n")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}
