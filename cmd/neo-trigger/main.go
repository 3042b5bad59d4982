// Command neo-trigger runs the NEO webhook trigger as a standalone service.
// It registers the configured webhook with NEO, serves the callback
// endpoints and removes the webhook again on shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	neo "github.com/goliatone/go-neo"
	"github.com/goliatone/go-neo/adapters/gocommand"
	neocommand "github.com/goliatone/go-neo/command"
	"github.com/goliatone/go-neo/core"
	"github.com/joho/godotenv"
)

func main() {
	logger := newSlogLogger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, continuing with environment variables")
	}

	cfg, err := loadSettings()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg.StateBackend, cfg.DatabaseURL, cfg.StateCacheTTL)
	if err != nil {
		logger.Error("state backend unavailable", "backend", cfg.StateBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Error("close state backend", "error", err)
		}
	}()

	opts := []neo.Option{
		neo.WithServiceLogger(logger, logger.GetLogger("neo")),
		neo.WithTriggerOptions(
			core.WithConfigProvider(core.NewCfgxConfigProvider(core.NewStaticConfigLoader(cfg.RawTriggerConf))),
			core.WithStateStore(store.state),
		),
		neo.WithEventSink(core.EventSinkFunc(func(_ context.Context, triggerID string, event core.InboundEvent) error {
			logger.Info("neo event received",
				"trigger_id", triggerID,
				"event_type", event.EventType,
				"mode", string(event.Mode),
				"test_mode", event.TestMode,
			)
			return nil
		})),
	}
	if store.journal != nil {
		opts = append(opts, neo.WithJournal(store.journal))
	}

	svc, err := neo.New(neo.DefaultConfig(), opts...)
	if err != nil {
		logger.Error("neo service setup failed", "error", err)
		os.Exit(1)
	}

	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := adapter.MirrorCommands(jobqueuecommand.NewRegistry()); err != nil {
		logger.Error("job queue mirror setup failed", "error", err)
		os.Exit(1)
	}
	subscriptions, err := svc.RegisterHandlers(adapter)
	if err != nil {
		logger.Error("handler registration failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
	}()
	if err := adapter.Initialize(); err != nil {
		logger.Error("command registry initialization failed", "error", err)
		os.Exit(1)
	}
	svc.Loggers().Jobs.Info("trigger commands mirrored to job queue", "commands", len(adapter.QueueRegistry().List()))

	if cfg.Instance != nil {
		if err := gocommand.Dispatch(ctx, neocommand.ActivateTriggerMessage{Instance: *cfg.Instance}); err != nil {
			logger.Error("trigger activation failed", "trigger_id", cfg.Instance.ID, "error", err)
			os.Exit(1)
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	svc.Routes(router)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "address", server.Addr, "state_backend", cfg.StateBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if cfg.Instance != nil {
		if err := gocommand.Dispatch(shutdownCtx, neocommand.DeactivateTriggerMessage{Instance: *cfg.Instance}); err != nil {
			logger.Error("trigger deactivation failed", "trigger_id", cfg.Instance.ID, "error", err)
		}
	}

	logger.Info("server exited gracefully")
}
