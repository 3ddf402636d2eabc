package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/route-sitemap/config"
	"github.com/romangod6/route-sitemap/internal/api"
	"github.com/romangod6/route-sitemap/internal/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve /sitemap.xml and the record API",
	Long: `Start the HTTP server.

The sitemap is rebuilt on every request to /sitemap.xml. When export.interval
is set the document is also written to export.path on that schedule. Edits to
the config file swap the route registry without a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	v := config.NewViper(cfgFile)
	cfg, err := config.Read(v)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	config.Watch(v, func(next *config.Config, err error) {
		if err != nil {
			a.logger.LogError("Ignoring config change: %v", err)
			return
		}
		a.reload(next)
	})

	server := api.NewServer(cfg.Server.Port, a.store, a.builder, metrics.HTTPHandler(a.registry), a.logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if interval := cfg.GetExportInterval(); interval > 0 {
		go a.exportLoop(ctx, cfg.Export.Path, interval)
	}

	go func() {
		a.logger.LogInfo("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			a.logger.LogError("API server stopped: %v", err)
			cancel()
		}
	}()

	waitForShutdown(ctx, cancel, server, a)
	return nil
}

// exportLoop writes the sitemap immediately and then on every tick.
func (a *app) exportLoop(ctx context.Context, path string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.logger.LogInfo("Starting periodic export...")
		if n, err := a.export(ctx, path); err != nil {
			a.logger.LogError("Export to %s failed: %v", path, err)
		} else {
			a.logger.LogInfo("Exported %d entries to %s", n, path)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server, a *app) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	a.logger.LogInfo("Shutting down...")
	cancel()

	// Graceful server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.LogError("Error shutting down server: %v", err)
	}
	a.logger.LogInfo("Server shut down gracefully")
}
