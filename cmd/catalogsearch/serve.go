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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/catalogsearch/internal/config"
	"github.com/kailas-cloud/catalogsearch/internal/db"
	dbRedis "github.com/kailas-cloud/catalogsearch/internal/db/redis"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/index"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/catalogsearch/internal/logger"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/catalogsearch/internal/repository/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/source/file"
	"github.com/kailas-cloud/catalogsearch/internal/source/remote"
	chiTransport "github.com/kailas-cloud/catalogsearch/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/catalogsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
	"github.com/kailas-cloud/catalogsearch/internal/version"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, env, err := o.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, env, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting catalogsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	var store db.Store
	if cfg.NeedsDatabase() {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to create database store: %w", err)
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)
		store = s
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	ranker, err := index.NewRanker(cfg.Search.Threshold, fuzzy.Options{
		Location:       cfg.Search.Location,
		Distance:       cfg.Search.Distance,
		IgnoreLocation: cfg.Search.IgnoreLocation,
	})
	if err != nil {
		return fmt.Errorf("invalid search settings: %w", err)
	}
	searchSvc := searchuc.New(ranker, logger)

	src, watched, err := buildSource(cfg, store, logger)
	if err != nil {
		return err
	}
	opts := []cataloguc.Option{
		cataloguc.WithRefreshInterval(time.Duration(cfg.Catalog.RefreshIntervalSec) * time.Second),
	}
	if cfg.Catalog.Persist {
		opts = append(opts, cataloguc.WithSink(catalogrepo.New(store, cfg.Storage.KeyPrefix)))
	}
	catalogSvc := cataloguc.New(src, searchSvc, logger, opts...)

	// The API starts even without a snapshot; /health reports it until one arrives.
	if _, err := catalogSvc.Load(ctx); err != nil {
		logger.Warn("Initial catalog load failed", zap.Error(err))
	}

	// Pass nil interface (not typed nil pointer!) when no store is configured.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, searchSvc)

	server := chiTransport.NewServer(searchSvc, catalogSvc, healthSvc, logger).
		WithLimits(request.Limits{Default: cfg.Search.DefaultLimit, Max: cfg.Search.MaxLimit})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if watched != nil {
		debounce := time.Duration(cfg.Catalog.WatchDebounceMS) * time.Millisecond
		changes, err := watched.Watch(gctx, debounce)
		if err != nil {
			return fmt.Errorf("failed to watch catalog file: %w", err)
		}
		g.Go(func() error { return catalogSvc.Watch(gctx, changes) })
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// buildSource picks the configured snapshot source and wraps it with metrics.
// The returned file source is non-nil only when it should be watched.
func buildSource(cfg config.Config, store db.Store, logger *zap.Logger) (cataloguc.Source, *file.Source, error) {
	var (
		src     cataloguc.Source
		watched *file.Source
	)
	switch cfg.Catalog.Source {
	case config.SourceFile:
		fs, err := file.New(cfg.Catalog.File, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog file source: %w", err)
		}
		src = fs
		if cfg.Catalog.Watch {
			watched = fs
		}
	case config.SourceRedis:
		src = catalogrepo.New(store, cfg.Storage.KeyPrefix)
	case config.SourceRemote:
		rs, err := remote.New(cfg.Catalog.RemoteURL,
			remote.WithTimeout(time.Duration(cfg.Catalog.FetchTimeoutSec)*time.Second))
		if err != nil {
			return nil, nil, fmt.Errorf("catalog remote source: %w", err)
		}
		src = rs
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
	return cataloguc.NewInstrumentedSource(src, cfg.Catalog.Source, logger), watched, nil
}
