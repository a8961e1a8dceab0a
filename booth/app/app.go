package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/booth-service/booth/config"
	"github.com/Astemirdum/booth-service/booth/internal/cache"
	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/events"
	"github.com/Astemirdum/booth-service/booth/internal/handler"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
	"github.com/Astemirdum/booth-service/booth/internal/server"
	"github.com/Astemirdum/booth-service/booth/internal/service"
	"github.com/Astemirdum/booth-service/booth/migrations"
	"github.com/Astemirdum/booth-service/pkg/logger"
	"github.com/Astemirdum/booth-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "booth")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store init", zap.Error(err))
	}
	defer closeStore()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("booking timezone", zap.String("tz", cfg.Booking.TimeZone), zap.Error(err))
	}

	publisher, err := events.New(cfg.Events, log)
	if err != nil {
		log.Fatal("events init", zap.Error(err))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("events close", zap.Error(err))
		}
	}()

	courseCache, closeCache := newCourseCache(ctx, cfg.Redis, log)
	defer closeCache()

	repo := repository.NewRepository(store, log)
	svc := service.NewService(repo, service.Options{
		Policy: service.TimeoutPolicy{
			Read:           cfg.Timeouts.Read,
			Write:          cfg.Timeouts.Write,
			Log:            cfg.Timeouts.Log,
			MaxAttempts:    cfg.Timeouts.MaxAttempts,
			InitialBackoff: cfg.Timeouts.InitialBackoff,
			MaxBackoff:     cfg.Timeouts.MaxBackoff,
		},
		ChunkSize:        cfg.Booking.ChunkSize,
		CheckConcurrency: cfg.Booking.CheckConcurrency,
		Location:         loc,
		CourseCache:      courseCache,
		Publisher:        publisher,
	}, log)

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server run", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (docstore.Store, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, err
		}
		store := docstore.NewPostgres(db, log)
		return store, func() {
			_ = store.Close()
			db.Close()
		}, nil
	default:
		if cfg.Store.Backend != "memory" {
			log.Warn("unknown store backend, using memory", zap.String("backend", cfg.Store.Backend))
		}
		store := docstore.NewMemory(log)
		return store, func() { _ = store.Close() }, nil
	}
}

// newCourseCache falls back to no caching when redis is disabled or unreachable.
func newCourseCache(ctx context.Context, cfg cache.Config, log *zap.Logger) (cache.Courses, func()) {
	if !cfg.Enabled {
		return cache.Noop{}, func() {}
	}
	rdb, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, course cache disabled", zap.Error(err))
		return cache.Noop{}, func() {}
	}
	return cache.NewRedisCourses(rdb, cfg.TTL, log), func() { _ = rdb.Close() }
}
