package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/cache"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/config"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/database"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/handlers"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/jobs"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/log"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/repository"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/server"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/service"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/storage"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/validation"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/views"
)

// closer is released on shutdown in reverse order of acquisition.
type closer func()

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	if err := validation.Register(); err != nil {
		logger.Fatal().Err(err).Msg("register validators")
	}

	ctx := context.Background()

	gw, err := gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gateway client")
	}

	renderer, err := views.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	var closers []closer
	probes := []handlers.Probe{{Name: "gateway", Check: gw.Ping}}
	sweepers := []jobs.Sweeper{}

	backend, flash := session.Backend(nil), notify.FlashBackend(nil)
	switch cfg.Session.Driver {
	case config.SessionDriverRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("redis close error")
			}
		})
		backend = session.NewRedisBackend(redisClient, cfg.Session.TTL)
		flash = notify.NewRedisFlash(redisClient, cfg.Session.FlashTTL)
		probes = append(probes, handlers.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})

	case config.SessionDriverPostgres:
		dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		closers = append(closers, dbPool.Close)
		values := repository.NewSessionValues(dbPool)
		if err := values.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare session table")
		}
		backend = values
		probes = append(probes, handlers.Probe{Name: "postgres", Check: values.Ping})
		sweepers = append(sweepers, jobs.Sweeper{Name: "postgres", Sweep: func(ctx context.Context) (int64, error) {
			return values.Purge(ctx, cfg.Session.TTL)
		}})

	default:
		mem := session.NewMemoryBackend(cfg.Session.TTL)
		backend = mem
		sweepers = append(sweepers, jobs.Sweeper{Name: "memory", Sweep: func(context.Context) (int64, error) {
			return int64(mem.Sweep()), nil
		}})
	}
	if flash == nil {
		memFlash := notify.NewMemoryFlash(cfg.Session.FlashTTL)
		flash = memFlash
		sweepers = append(sweepers, jobs.Sweeper{Name: "flash", Sweep: func(context.Context) (int64, error) {
			return int64(memFlash.Sweep()), nil
		}})
	}

	deps := handlers.Deps{
		Config:   cfg,
		Log:      logger,
		Gateway:  gw,
		Renderer: renderer,
		Probes:   probes,
	}
	var mirror service.AvatarMirror
	if cfg.Storage.Enabled {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		mirror = objectStore
		deps.Avatars = objectStore
		deps.Probes = append(deps.Probes, handlers.Probe{Name: "storage", Check: objectStore.Ping})
	}
	deps.Profiles = service.NewProfileService(gw, mirror, cfg.Security.MaxAvatarBytes, logger)

	httpServer := server.NewHTTPServer(cfg, logger, middleware.SessionDeps{
		Backend:      backend,
		Flash:        flash,
		Gateway:      gw,
		CookieName:   cfg.Session.CookieName,
		CookieSecret: cfg.Session.CookieSecret,
		SecureCookie: cfg.Session.SecureCookie,
		TTL:          cfg.Session.TTL,
		Log:          logger,
	}, handlers.NewHandlerSet(deps))

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Add("gateway-probe", cfg.Jobs.ProbeSchedule, jobs.ProbeGateway(gw, logger)); err != nil {
		logger.Fatal().Err(err).Msg("schedule gateway probe")
	}
	if err := scheduler.Add("sweep", cfg.Jobs.SweepSchedule, jobs.Sweep(logger, sweepers...)); err != nil {
		logger.Fatal().Err(err).Msg("schedule sweep")
	}
	scheduler.Start()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, closers)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, closers []closer) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("jobs still running at shutdown")
	}

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}

	logger.Info().Msg("server exited cleanly")
}
