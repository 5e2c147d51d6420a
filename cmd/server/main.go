package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/noahxzhu/timer-reminder/internal/config"
	"github.com/noahxzhu/timer-reminder/internal/logger"
	"github.com/noahxzhu/timer-reminder/internal/notifycenter"
	"github.com/noahxzhu/timer-reminder/internal/pushover"
	"github.com/noahxzhu/timer-reminder/internal/scheduler"
	"github.com/noahxzhu/timer-reminder/internal/storage"
	"github.com/noahxzhu/timer-reminder/internal/surface"
	"github.com/noahxzhu/timer-reminder/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "reminder",
		Short:         "One-shot timer reminders with a pick-the-next-delay loop",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the reminder web app and notification center",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the shared reminder record and pending reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return status(cmd, configPath)
		},
	})

	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return nil, err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))
	return cfg, nil
}

func buildProviders(cfg *config.Config) ([]notifycenter.Provider, error) {
	providers := []notifycenter.Provider{notifycenter.LogProvider{}}

	if cfg.Pushover.Token != "" {
		providers = append(providers, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.User))
	}
	if len(cfg.Shoutrrr.URLs) > 0 {
		p, err := notifycenter.NewShoutrrrProvider(cfg.Shoutrrr.URLs, cfg.Shoutrrr.Timeout)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func serve(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Init Storage
	store := storage.NewStore(cfg.Storage.FilePath)
	if err := store.Load(); err != nil {
		slog.Error("Failed to load storage", "error", err)
		return err
	}
	defaults := storage.OpenDefaults(store, cfg.Storage.AppGroup)

	providers, err := buildProviders(cfg)
	if err != nil {
		slog.Error("Failed to set up delivery providers", "error", err)
		return err
	}
	decision, err := cfg.AuthorizationDecision()
	if err != nil {
		slog.Error("Invalid authorization policy", "error", err)
		return err
	}

	// Init notification center
	center := notifycenter.NewCenter(store, notifycenter.PolicyPrompter{Decision: decision}, notifycenter.Config{
		MaxPending:   cfg.Notifications.MaxPending,
		DeliveredTTL: cfg.Notifications.DeliveredTTL,
		BaseURL:      cfg.Server.BaseURL,
		SendTimeout:  cfg.Notifications.SendTimeout,
	}, notifycenter.WithProviders(providers...))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go center.Start(ctx)

	sched := scheduler.New(center, defaults)
	if err := sched.RegisterCategories(ctx); err != nil {
		slog.Warn("Failed to register notification categories", "error", err)
	}

	mainSurface := surface.NewMain(sched, cfg.Notifications.Feedback)
	defer mainSurface.Close()
	mainSurface.Launch(ctx)

	srv := web.NewServer(defaults, sched, center, mainSurface)
	httpServer := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "url", cfg.Server.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	slog.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}
	slog.Info("Server exited")
	return nil
}

func status(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store := storage.NewStore(cfg.Storage.FilePath)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load storage: %w", err)
	}
	record := storage.OpenDefaults(store, cfg.Storage.AppGroup).Record()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "authorization:          %s\n", store.GetAuthorization())
	fmt.Fprintf(out, "lastScheduledSeconds:   %d\n", record.LastScheduledSeconds)
	fmt.Fprintf(out, "nextReminderSeconds:    %d\n", record.NextReminderSeconds)
	fmt.Fprintf(out, "pending:                %d\n", store.PendingCount())
	for _, n := range store.GetPending() {
		fmt.Fprintf(out, "  %s  %3ds  fires %s\n", n.ID, n.FireDelay, n.FireAt.Format(time.RFC3339))
	}
	return nil
}
