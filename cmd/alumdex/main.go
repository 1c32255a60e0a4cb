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

	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/config"
	"github.com/kailas-cloud/alumdex/internal/db/driver"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
	logpkg "github.com/kailas-cloud/alumdex/internal/logger"
	"github.com/kailas-cloud/alumdex/internal/metrics"
	recordrepo "github.com/kailas-cloud/alumdex/internal/repository/record"
	chiTransport "github.com/kailas-cloud/alumdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/alumdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/alumdex/internal/usecase/importer"
	searchuc "github.com/kailas-cloud/alumdex/internal/usecase/search"
	sessionuc "github.com/kailas-cloud/alumdex/internal/usecase/session"
	"github.com/kailas-cloud/alumdex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting alumdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := driver.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	recorder := metrics.Search{}

	overrides := make(map[string]screen.EmptyPolicy)
	for name, p := range cfg.Search.PolicyOverrides() {
		overrides[name] = screen.EmptyPolicy(p)
	}
	screens, err := screen.NewRegistry(overrides)
	if err != nil {
		logger.Fatal("Invalid screen configuration", zap.Error(err))
	}
	if groups, split := screens.PolicySplit(); split {
		logger.Warn("Screens disagree on the empty-input policy",
			zap.Strings("show_none", groups[screen.ShowNone]),
			zap.Strings("show_all", groups[screen.ShowAll]),
		)
	}

	repo := recordrepo.New(store, cfg.Storage.KeyPrefix)

	searchSvc := searchuc.New(repo, screens).WithObserver(recorder)
	sessions := sessionuc.NewManager(repo, screens, logger.Named("session")).
		WithDelay(cfg.Search.Debounce()).
		WithIdleTTL(cfg.Search.SessionIdle()).
		WithMaxSessions(cfg.Search.MaxSessions).
		WithRecorder(recorder)
	defer sessions.Close()
	go sessions.Run(ctx, cfg.Search.ReapInterval())

	importSvc, err := importeruc.New(repo, cfg.Import.Workers,
		importeruc.WithChunkSize(cfg.Import.ChunkSize),
		importeruc.WithRecorder(recorder),
		importeruc.WithLogger(logger.Named("import")),
	)
	if err != nil {
		logger.Fatal("Failed to create importer", zap.Error(err))
	}
	defer importSvc.Release()

	healthSvc := healthuc.New(store, sessions)

	server := chiTransport.NewServer(searchSvc, sessions, importSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		Metrics: metrics.Middleware(),
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
