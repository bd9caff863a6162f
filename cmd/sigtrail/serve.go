package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigtrail/internal/api"
	"github.com/newthinker/sigtrail/internal/api/job"
	"github.com/newthinker/sigtrail/internal/app"
	"github.com/newthinker/sigtrail/internal/metrics"
	"github.com/newthinker/sigtrail/internal/notifier"
	"github.com/newthinker/sigtrail/internal/notifier/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sigtrail HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	var reg *metrics.Registry
	metricsPath := ""
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		a.SetMetrics(reg)
		metricsPath = cfg.Metrics.Path
	}

	var notify notifier.Notifier
	if cfg.Notify.Webhook.URL != "" {
		hook, err := webhook.New(cfg.Notify.Webhook)
		if err != nil {
			return fmt.Errorf("creating webhook notifier: %w", err)
		}
		notify = hook
	}

	log.Info("starting sigtrail server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Strings("providers", cfg.Provider.Order),
	)

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		MetricsPath:  metricsPath,
		JobTimeout:   cfg.Server.JobTimeout,
		MaxBodyBytes: int64(cfg.Server.MaxBodyMB) << 20,
	}, api.Dependencies{
		App:      a,
		Jobs:     job.NewStore(cfg.Server.MaxJobs, cfg.JobTTL()),
		Metrics:  reg,
		Notifier: notify,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down sigtrail server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
