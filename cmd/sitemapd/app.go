package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/romangod6/route-sitemap/config"
	"github.com/romangod6/route-sitemap/internal/generators"
	"github.com/romangod6/route-sitemap/internal/metrics"
	"github.com/romangod6/route-sitemap/internal/render"
	"github.com/romangod6/route-sitemap/internal/routing"
	"github.com/romangod6/route-sitemap/internal/sitemap"
	"github.com/romangod6/route-sitemap/internal/storage"
	"github.com/romangod6/route-sitemap/internal/utils"
)

// app holds everything a command needs after the config is loaded.
type app struct {
	cfg        *config.Config
	logger     *utils.Logger
	store      storage.Store
	router     *routing.Router
	generators *sitemap.Generators
	registry   *prometheus.Registry
	builder    *sitemap.Builder
}

func newApp(cfg *config.Config, console io.Writer) (*app, error) {
	logger, err := utils.NewTeeLogger(console, "sitemapd", cfg.Log.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetDebug(cfg.Log.Debug)

	store, err := storage.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.Initialize(); err != nil {
		store.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	router, err := routing.NewRouter(cfg.Site.BaseURL, cfg.RouteCollection())
	if err != nil {
		store.Close()
		logger.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		router:     router,
		generators: sitemap.NewGenerators(),
		registry:   registry,
	}
	a.registerGenerators(cfg)

	a.builder = sitemap.NewBuilder(router, router,
		sitemap.WithGenerators(a.generators),
		sitemap.WithLogger(logger),
		sitemap.WithRecorder(metrics.NewPrometheusRecorder(registry)),
	)

	logger.LogInfo("Loaded %d routes for %s", cfg.RouteCollection().Len(), cfg.Site.BaseURL)
	return a, nil
}

func (a *app) registerGenerators(cfg *config.Config) {
	a.generators.Register("articles", generators.NewArticles(a.store, cfg.Generators.BatchSize))
	a.generators.Register("categories", generators.NewCategories(a.store))
	a.generators.Register("static", generators.NewStatic(cfg.Generators.Static))
	a.generators.Register("feeds", generators.NewFeeds(cfg.Feeds()))
}

// reload swaps in the routes and config-backed generators of cfg. Builds
// already running keep the snapshot they started with.
func (a *app) reload(cfg *config.Config) {
	a.router.Replace(cfg.RouteCollection())
	a.generators.Register("static", generators.NewStatic(cfg.Generators.Static))
	a.generators.Register("feeds", generators.NewFeeds(cfg.Feeds()))
	a.logger.LogInfo("Reloaded configuration: %d routes", cfg.RouteCollection().Len())
}

// export builds the sitemap and writes it to path, replacing the previous
// file only once the new document is complete.
func (a *app) export(ctx context.Context, path string) (int, error) {
	items, err := a.builder.BuildSitemapItems(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sitemap-*.xml")
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := render.Write(tmp, items); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return len(items), nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.LogError("Error closing store: %v", err)
	}
	a.logger.Close()
}
