// @title        filehost API
// @version      1.0
// @description  Multi-user file hosting with admin-approved registration.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "filehost/docs"
	"filehost/internal/config"
	"filehost/internal/handlers"
	"filehost/internal/logger"
	"filehost/internal/metrics"
	"filehost/internal/repository"
	"filehost/internal/repository/db"
	"filehost/internal/server"
	"filehost/internal/service"
	"filehost/internal/storage"
)

func main() {
	// load configs/config.yml + FILEHOST_* env
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	// open activity DB
	sqlDB, err := db.InitDB(cfg.Activity.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.Activity.DBPath, "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	store, err := storage.NewStore(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalw("failed to prepare upload dir", "path", cfg.Storage.UploadDir, "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(cfg.Storage.ConfigPath, sqlDB)
	if cfg.Auth.SigningKey == "" {
		log.Warnw("auth.signing_key not set; sessions will not survive a restart")
	}
	services := service.NewService(repos, store, service.Options{
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
		SigningKey:    []byte(cfg.Auth.SigningKey),
		SessionTTL:    cfg.Auth.SessionTTL,
	}, log)

	if err := services.Bootstrap(context.Background()); err != nil {
		if errors.Is(err, repository.ErrConfigCorrupt) {
			log.Fatalw("account store is corrupt", "path", cfg.Storage.ConfigPath, "err", err)
		}
		log.Fatalw("failed to bootstrap account store", "path", cfg.Storage.ConfigPath, "err", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	apiHandler := handlers.NewHandler(services, log, m, handlers.Options{
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		CookieSecure:   cfg.Auth.CookieSecure,
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start usage scanner (via composed service)
	go services.UsageScanner.Run(ctx, cfg.Storage.UsageScanInterval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server, apiHandler, log)
	log.Infow("server_started", "port", cfg.Server.Port, "upload_dir", store.Root(), "config_path", cfg.Storage.ConfigPath)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.Server, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.ServerConfig, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(cfg, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, cfg config.ServerConfig, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
