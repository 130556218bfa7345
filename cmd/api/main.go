// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the rexauth HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the identity store selected by STORE_DRIVER.
//  4. Load the identity schema.
//  5. Build the token processor and password hasher.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/rexauth/internal/api"
	"github.com/taibuivan/rexauth/internal/platform/config"
	"github.com/taibuivan/rexauth/internal/platform/constants"
	"github.com/taibuivan/rexauth/internal/platform/migration"
	mongostore "github.com/taibuivan/rexauth/internal/platform/mongo"
	pgstore "github.com/taibuivan/rexauth/internal/platform/postgres"
	redisstore "github.com/taibuivan/rexauth/internal/platform/redis"
	"github.com/taibuivan/rexauth/internal/platform/sec"
	"github.com/taibuivan/rexauth/internal/users/auth"
	"github.com/taibuivan/rexauth/internal/users/schema"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(false).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true).With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// Bounded so misconfiguration is caught quickly rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Identity Store ─────────────────────────────────────────────────
	repository, closeStore, err := openStore(startupCtx, cfg, log)
	must(log, err, "open identity store")
	defer closeStore()

	// ── 4. Identity Schema ────────────────────────────────────────────────
	identitySchema, err := schema.LoadFile(cfg.SchemaPath)
	must(log, err, "load identity schema")

	log.Info("identity_schema_loaded", slog.Any("fields", identitySchema.Names()))

	// ── 5. Security Primitives ────────────────────────────────────────────
	tokens, err := sec.NewTokenProcessor(sec.TokenConfig{
		AccessToken: sec.TokenSpec{
			Secret: cfg.AccessTokenSecret,
			Exp:    cfg.AccessTokenExp,
		},
		RefreshToken: sec.RefreshTokenSpec{
			TokenSpec: sec.TokenSpec{
				Secret: cfg.RefreshTokenSecret,
				Exp:    cfg.RefreshTokenExp,
			},
			CookieName: cfg.RefreshCookieName,
			Route:      cfg.RefreshCookieRoute,
			Secure:     cfg.RefreshCookieSecure || cfg.IsProduction(),
		},
	})
	must(log, err, "initialize token processor")

	hasher := sec.NewBcryptHasher(bcrypt.DefaultCost)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService, err := auth.NewService(repository, tokens, hasher, auth.ServiceConfig{
		Schema:       identitySchema,
		PublicFields: cfg.PublicFields,
	})
	must(log, err, "initialize auth service")

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		StoreDriver: cfg.StoreDriver,
		CheckStore:  repository.Ping,
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-signalCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
		closeStore()
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the process logger: JSON in deployed environments, text
// when debugging locally.
func newLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// openStore connects the identity store chosen by cfg.StoreDriver.
//
// The returned close func releases the underlying connection and is safe to
// call more than once.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.UserRepository, func(), error) {
	closed := false
	once := func(release func()) func() {
		return func() {
			if closed {
				return
			}
			closed = true
			release()
		}
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, nil, err
		}
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewPostgresUserRepository(pool), once(func() {
			log.Info("postgres_pool_closing")
			pool.Close()
		}), nil

	case config.DriverMongo:
		client, err := mongostore.NewClient(ctx, cfg.MongoURL, log)
		if err != nil {
			return nil, nil, err
		}
		repository := auth.NewMongoUserRepository(client, cfg.MongoDatabase)
		if err := repository.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repository, once(func() {
			log.Info("mongo_client_closing")
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("mongo_client_close_failed", slog.Any("error", err))
			}
		}), nil

	case config.DriverRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewRedisUserRepository(client), once(func() {
			log.Info("redis_client_closing")
			if err := client.Close(); err != nil {
				log.Error("redis_client_close_failed", slog.Any("error", err))
			}
		}), nil

	case config.DriverMemory:
		log.Warn("memory_store_selected", slog.String("note", "identities are lost on restart"))
		return auth.NewMemoryUserRepository(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
