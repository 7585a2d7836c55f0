package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Crowley723/site-monitor/alert"
	"github.com/Crowley723/site-monitor/api"
	"github.com/Crowley723/site-monitor/auth"
	"github.com/Crowley723/site-monitor/config"
	"github.com/Crowley723/site-monitor/monitor"
	"github.com/Crowley723/site-monitor/probe"
	"github.com/Crowley723/site-monitor/providers"
	"github.com/Crowley723/site-monitor/sites"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor and its HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		return err
	}

	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to open log file", "err", err)
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	issuer, err := auth.LoadIssuer(cfg.Auth.SigningKeyPath, cfg.Auth.TokenExpiryDuration())
	if err != nil {
		logger.Error("failed to load signing key, run sitemon bootstrap first", "path", cfg.Auth.SigningKeyPath, "err", err)
		return err
	}

	if cfg.Auth.PasswordHash == "" {
		logger.Warn("no admin password hash configured, login is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := alert.NewNotifier(
		alert.NewSender(cfg.Alert.Email, logger),
		alert.SettingsFromConfig(cfg.Alert.Email),
		cfg.Alert.Email.SendTimeoutDuration(),
		logger,
	)

	registry := sites.NewRegistry(notifier)
	for _, seed := range cfg.Sites {
		site := registry.Add(seed.Name, seed.URL, cfg.Monitor.CheckInterval(seed.CheckInterval))
		logger.Debug("seeded site", "site_id", site.ID, "site", site.Name, "url", site.URL)
	}

	mon := monitor.New(registry, probe.NewHTTPProber(cfg.Monitor.ProbeTimeoutDuration()), notifier, logger, monitor.Options{
		DownThreshold:    cfg.Monitor.DownThreshold,
		SmoothingFactor:  cfg.Monitor.SmoothingFactor,
		ProbeTimeout:     cfg.Monitor.ProbeTimeoutDuration(),
		IntervalOverride: cfg.Monitor.DemoIntervalDuration(),
	})

	hub := api.NewHub(cfg.Server.AllowedOrigins, logger)
	unwatch := notifier.Watch(hub.Broadcast)
	defer unwatch()

	go notifier.Run(ctx)

	mon.Start()
	defer mon.Stop()

	appCtx := providers.NewAppContext(ctx, cfg, logger)
	appCtx.Monitor = mon
	appCtx.Notifier = notifier
	appCtx.Issuer = issuer
	appCtx.Certs = probe.NewCertInspector(cfg.Monitor.ProbeTimeoutDuration())

	if err := api.StartServer(appCtx, hub); err != nil {
		logger.Error("server failed", "err", err)
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// newLogger writes JSON logs to logging.path, or to stdout when unset.
func newLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.Path == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), func() {}, nil
	}

	logFile, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	closeLog := func() {
		if err := logFile.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close log file:", err)
		}
	}

	return slog.New(slog.NewJSONHandler(io.Writer(logFile), opts)), closeLog, nil
}
