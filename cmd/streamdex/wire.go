package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/streamdex/streamdex/internal/aggregate"
	"github.com/streamdex/streamdex/internal/cache"
	"github.com/streamdex/streamdex/internal/config"
	"github.com/streamdex/streamdex/internal/events"
	"github.com/streamdex/streamdex/internal/jobs"
	"github.com/streamdex/streamdex/internal/provider"
)

// app bundles the wired services a command needs.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	bus      *events.Bus
	registry *provider.Registry
	engine   *aggregate.Engine
	manager  *jobs.Manager
	cache    *cache.Cache

	closers []func() error
}

// newApp loads the config and wires the full service graph. withCache
// controls whether the sqlite response cache is opened; one-shot
// commands that never hit providers skip it.
func newApp(withCache bool) (*app, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.Discover()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level := cfg.Server.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log := newLogger(level)

	a := &app{
		cfg:      cfg,
		log:      log,
		bus:      events.NewBus(log),
		registry: provider.NewRegistry(),
	}
	a.closers = append(a.closers, a.bus.Close)

	for _, pc := range cfg.Providers {
		desc := provider.Descriptor{
			Value:   pc.Value,
			Name:    pc.Name,
			Enabled: pc.IsEnabled(),
		}
		if desc.Name == "" {
			desc.Name = pc.Value
		}
		for _, c := range pc.Capabilities {
			desc.Capabilities = append(desc.Capabilities, provider.Capability(c))
		}

		var impl provider.Provider
		switch pc.Kind {
		case "html":
			impl = provider.NewScrapeProvider(desc, pc.BaseURL, pc.Timeout, log)
		default:
			impl = provider.NewJSONProvider(desc, pc.BaseURL, pc.Timeout, log)
		}
		a.registry.Register(desc, impl)
	}

	if withCache {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			// A broken cache never blocks the engine; run without it.
			log.Warn("cache unavailable", "path", cfg.Cache.Path, "error", err)
		} else {
			a.cache = c
			a.closers = append(a.closers, c.Close)
		}
	}

	a.engine = aggregate.New(a.registry, a.cache, a.bus, aggregate.Options{
		CacheTTL:          cfg.Cache.TTL,
		ExcludedQualities: cfg.Quality.Excluded,
	}, log)

	a.manager = jobs.NewManager(afero.NewOsFs(), nil, a.bus, jobs.Config{
		Dir:        cfg.Downloads.Dir,
		HLSWorkers: cfg.Downloads.HLSWorkers,
	}, log)

	return a, nil
}

// Close releases resources in reverse wiring order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}
