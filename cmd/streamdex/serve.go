package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/streamdex/streamdex/internal/api/v1"
	"github.com/streamdex/streamdex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

Serves the v1 REST API plus a server-sent events stream of search and
download activity. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	mux := http.NewServeMux()
	api := v1.New(v1.Deps{
		Engine:   a.engine,
		Manager:  a.manager,
		Registry: a.registry,
		Bus:      a.bus,
	}, a.log)
	api.RegisterRoutes(mux)

	a.log.Info("starting",
		"version", version,
		"providers", len(a.registry.ListEnabled()),
		"downloads_dir", a.cfg.Downloads.Dir,
		"cache", a.cache != nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := server.NewRunner(mux, server.Config{
		Host:            a.cfg.Server.Host,
		Port:            a.cfg.Server.Port,
		ShutdownTimeout: 10 * time.Second,
	}, a.log)

	return runner.Run(ctx)
}
