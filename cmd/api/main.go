package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vivispa/catalog-api/internal/config"
	catalogHandler "github.com/vivispa/catalog-api/internal/handler/catalog"
	"github.com/vivispa/catalog-api/internal/handler/health"
	"github.com/vivispa/catalog-api/internal/middleware"
	"github.com/vivispa/catalog-api/internal/repository"
	"github.com/vivispa/catalog-api/internal/repository/file"
	"github.com/vivispa/catalog-api/internal/repository/postgres"
	"github.com/vivispa/catalog-api/internal/router"
	catalogService "github.com/vivispa/catalog-api/internal/service/catalog"
	"github.com/vivispa/catalog-api/internal/worker"
	"github.com/vivispa/catalog-api/pkg/logger"
	"github.com/vivispa/catalog-api/pkg/messaging"
	"github.com/vivispa/catalog-api/pkg/messaging/redis"
	"github.com/vivispa/catalog-api/pkg/metrics"
	"github.com/vivispa/catalog-api/pkg/validator"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.Setup(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		log.Fatal().Err(err).Msg("catalog api stopped")
	}
	log.Info().Msg("server exited properly")
}

func run(ctx context.Context, cfg *config.Config, appLog *logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg, cfg.Metrics.Namespace, "catalog")

	pingers := map[string]repository.Pinger{}

	// Initialize catalog source
	var repo repository.CatalogRepository
	switch cfg.Catalog.Source {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		pgRepo := postgres.NewCatalogRepository(postgres.NewBaseRepository(db), validator.New())
		if cfg.Database.AutoMigrate {
			if err := pgRepo.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to migrate catalog schema: %w", err)
			}
		}
		repo = pgRepo
		pingers["Database"] = pgRepo
	default:
		repo = file.NewCatalogRepository(cfg.Catalog.Path, validator.New())
	}

	// Initialize Redis message broker
	var broker messaging.Broker
	if cfg.Redis.Enabled() {
		b, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLog.With("broker").Zerolog())
		if err != nil {
			return err
		}
		defer b.Close()
		broker = b
		if p, ok := b.(repository.Pinger); ok {
			pingers["Redis"] = p
		}
	}

	svc := catalogService.NewService(repo, m, catalogService.Config{
		CacheTTL:     cfg.Cache.TTL,
		CacheCleanup: cfg.Cache.CleanupInterval,
		Broker:       broker,
		Channel:      cfg.Redis.Channel,
	})

	// A failed first load leaves the service unready; workers keep retrying.
	if _, err := svc.Reload(ctx, catalogService.TriggerStartup); err != nil {
		log.Error().Err(err).Str("source", repo.Source()).Msg("initial catalog load failed")
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowOrigins
	}
	cors.MaxAge = cfg.CORS.MaxAge

	r := router.NewRouter(
		catalogHandler.NewHandler(svc, cfg.Server.AdminEnabled),
		health.NewHandler(svc, reg, pingers),
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       cors,
			CacheConfig:      middleware.DefaultCacheConfig(),
			MetricsPrefix:    cfg.Metrics.Namespace + "_http",
			Registerer:       reg,
		},
	)
	r.Setup()

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("source", repo.Source()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if cfg.Catalog.Source == "file" && cfg.Catalog.Watch {
		watcher, err := worker.NewCatalogWatcher(cfg.Catalog.Path, svc, cfg.Catalog.WatchDebounce)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				// The last good snapshot keeps being served.
				log.Error().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog watcher stopped")
			}
			return nil
		})
	}

	if cfg.Catalog.Source == "postgres" || !cfg.Catalog.Watch {
		refresher := worker.NewRefresher(svc, cfg.Catalog.RefreshInterval)
		g.Go(func() error {
			refresher.Start(gctx)
			return nil
		})
	}

	if broker != nil {
		sub := worker.NewSubscriber(broker, cfg.Redis.Channel, svc, m, *appLog.With("subscriber").Zerolog())
		g.Go(func() error {
			if err := sub.Start(gctx); err != nil {
				log.Error().Err(err).Str("channel", cfg.Redis.Channel).Msg("reload subscriber stopped")
			}
			return nil
		})
	}

	return g.Wait()
}
