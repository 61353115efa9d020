package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/N1K0232/GlowingStoreApi/pkg/api"
	"github.com/N1K0232/GlowingStoreApi/pkg/auth"
	"github.com/N1K0232/GlowingStoreApi/pkg/config"
	"github.com/N1K0232/GlowingStoreApi/pkg/localization"
	"github.com/N1K0232/GlowingStoreApi/pkg/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServerCmd(log *logrus.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the glowingstore server",
		Long:  `Build the OpenAPI documents of every API version and start the HTTP API server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), log, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to configuration file (built-in defaults when empty)")

	return cmd
}

func loadConfig(log logrus.FieldLogger, path string) (*config.Config, error) {
	if path == "" {
		log.Info("No configuration file given, using defaults")

		return config.Default(), nil
	}

	log.WithField("path", path).Info("Loading configuration")

	return config.Load(path)
}

// newAPIServer wires the services the API server depends on.
func newAPIServer(ctx context.Context, log logrus.FieldLogger, cfg *config.Config, m *metrics.Metrics) (api.Server, error) {
	authSvc, err := auth.NewService(log, cfg.Auth.Basic)
	if err != nil {
		return nil, err
	}

	localizer, err := localization.New(cfg.App.SupportedCultures)
	if err != nil {
		return nil, err
	}

	return api.NewServer(ctx, log, cfg, api.Dependencies{
		Auth:      authSvc,
		Localizer: localizer,
		Metrics:   m,
	})
}

func runServer(ctx context.Context, log *logrus.Logger, configPath string) error {
	// Load configuration.
	cfg, err := loadConfig(log, configPath)
	if err != nil {
		return err
	}

	log.Info("Configuration loaded:\n" + cfg.String())

	// Create metrics.
	m := metrics.New()
	m.SetBuildInfo(Version, GitCommit, BuildDate)

	// Create API server; this builds every OpenAPI document.
	srv, err := newAPIServer(ctx, log, cfg, m)
	if err != nil {
		return err
	}

	if err := srv.Start(ctx); err != nil {
		return err
	}

	defer srv.Stop()

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("Received shutdown signal")
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	log.Info("Shutting down...")

	return nil
}
