package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/redisclient"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/retry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const connectAttempts = 5

func main() {
	if err := run(); err != nil {
		slog.Error("taskhub exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: cfg.ServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.OTLPSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	prom := observability.NewProm(prometheus.NewRegistry())

	deps := httpx.Deps{
		Tokens: auth.NewManager(auth.Config{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL, Issuer: cfg.ServiceName}),
		Prom:   prom,
		Ready:  map[string]handlers.Check{},
	}

	var roleSource cache.RoleSource
	switch cfg.StoreKind {
	case config.StoreMemory:
		store := memory.NewStore()
		deps.Users, deps.Tasks, roleSource = store.Users, store.Tasks, store.Roles
		deps.Ready["store"] = store.Ping
		log.Warn("using in-memory store, data is lost on restart")

	default:
		var pool *pgxpool.Pool
		err := retry.Do(ctx, connectAttempts, time.Second, 10*time.Second, func(ctx context.Context) error {
			p, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DBURL(), MaxConns: cfg.DBMaxConns})
			if err != nil {
				log.Warn("db not reachable yet", "err", err)
				return err
			}
			pool = p
			return nil
		})
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			mctx, cancel := config.WithTimeout(ctx, 30*time.Second)
			err := db.Migrate(mctx, pool)
			if err == nil {
				err = db.SeedCatalog(mctx, pool)
			}
			cancel()
			if err != nil {
				return fmt.Errorf("bootstrap schema: %w", err)
			}
		}

		deps.Users = postgres.NewUsersRepo(pool, prom)
		deps.Tasks = postgres.NewTasksRepo(pool, prom)
		roleSource = postgres.NewRolesRepo(pool, prom)
		deps.Ready["postgres"] = pool.Ping
	}
	deps.Roles = cache.NewRoles(roleSource, 16, 5*time.Minute)

	sctx, cancel := config.WithTimeout(ctx, 10*time.Second)
	created, err := db.EnsureSuperAdmin(sctx, deps.Users, db.AdminSeed{
		Email:      cfg.SeedAdminEmail,
		Password:   cfg.SeedAdminPassword,
		Name:       cfg.SeedAdminName,
		BcryptCost: cfg.BcryptCost,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	if created {
		log.Info("seeded super admin", "email", cfg.SeedAdminEmail)
	}

	if cfg.RevocationEnabled() {
		var rdb *redisclient.Client
		err := retry.Do(ctx, connectAttempts, time.Second, 10*time.Second, func(ctx context.Context) error {
			rctx, cancel := config.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			c, err := redisclient.Connect(rctx, redisclient.Config{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			if err != nil {
				log.Warn("redis not reachable yet", "err", err)
				return err
			}
			rdb = c
			return nil
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		deps.Revocations = auth.NewRevocationStore(rdb.Raw())
		deps.Ready["redis"] = rdb.Ping
	} else {
		log.Warn("REDIS_ADDR not set, logout will not revoke tokens")
	}

	var draining atomic.Bool
	deps.Draining = draining.Load

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		draining.Store(true)
		log.Info("server shutting down")

		sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}
