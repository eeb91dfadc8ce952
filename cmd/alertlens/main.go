// Command alertlens serves the correlated alert–entity view of a New
// Relic account over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/alertlens/alertlens/internal/api"
	"github.com/alertlens/alertlens/internal/conf"
	"github.com/alertlens/alertlens/internal/correlation"
	"github.com/alertlens/alertlens/internal/logger"
	"github.com/alertlens/alertlens/internal/nerdgraph"
	"github.com/alertlens/alertlens/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "alertlens",
		Short:        "Correlates New Relic alert conditions with monitored entities",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ./alertlens.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(os.Stdout, settings.LogLevel)
	metrics := observability.NewMetrics()

	client := nerdgraph.NewClient(settings.GraphQLEndpoint, settings.APIKey, log,
		nerdgraph.WithTimeout(settings.RequestTimeout.Std()),
		nerdgraph.WithMetrics(metrics))

	svc := correlation.NewService(client, correlation.ServiceConfig{
		AccountID:         settings.AccountID,
		MaxPages:          settings.MaxPages,
		EnrichConcurrency: settings.EnrichConcurrency,
	}, metrics, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.New(e, svc, metrics, settings.StaticDir, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", settings.Addr()))
		errCh <- e.Start(settings.Addr())
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
