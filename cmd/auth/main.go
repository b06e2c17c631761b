package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/config"
	httptransport "github.com/Baragji/Blueprint-creator/internal/http"
	"github.com/Baragji/Blueprint-creator/internal/http/handler"
	httpmiddleware "github.com/Baragji/Blueprint-creator/internal/http/middleware"
	"github.com/Baragji/Blueprint-creator/internal/password"
	"github.com/Baragji/Blueprint-creator/internal/repository"
	"github.com/Baragji/Blueprint-creator/internal/server"
	"github.com/Baragji/Blueprint-creator/internal/service"
	"github.com/Baragji/Blueprint-creator/internal/session"
	"github.com/Baragji/Blueprint-creator/internal/store"
	"github.com/Baragji/Blueprint-creator/internal/telemetry"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newHasher,
			newDirectory,
			newStore,
			newSessionManager,
			newCodec,
			service.NewAuthService,
			newAuthMiddleware,
			handler.NewAuthHandler,
			handler.NewHealthHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newHasher(cfg config.Config) *password.Hasher {
	return password.NewHasher(cfg.BcryptCost)
}

func newDirectory(pool *pgxpool.Pool, hasher *password.Hasher) repository.Directory {
	return repository.NewPostgresDirectory(pool, hasher)
}

func newStore(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st := store.Dial(ctx, cfg.SessionRedisURL, logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return st.Close()
		},
	})
	return st
}

func newSessionManager(st store.Store, cfg config.Config, logger *zap.Logger) *session.Manager {
	return session.NewManager(st, cfg.RefreshTokenTTL, logger)
}

func newCodec(cfg config.Config) (*token.Codec, error) {
	return token.NewCodec(token.Config{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
}

func newAuthMiddleware(codec *token.Codec, sessions *session.Manager) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Codec: codec, Sessions: sessions}
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
