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

	"github.com/rs/zerolog"

	_ "github.com/shopline/commerce/docs"
	"github.com/shopline/commerce/internal/api"
	"github.com/shopline/commerce/internal/api/handler"
	"github.com/shopline/commerce/internal/core/ports"
	"github.com/shopline/commerce/internal/core/service"
	"github.com/shopline/commerce/internal/infrastructure/config"
	"github.com/shopline/commerce/internal/infrastructure/db/memory"
	mongostore "github.com/shopline/commerce/internal/infrastructure/db/mongo"
	"github.com/shopline/commerce/internal/infrastructure/security"
	"github.com/shopline/commerce/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Identity Service API
// @version         1.0
// @description     User registration, login and bearer token verification.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "identity-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadIdentity(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.Server.LogLevel,
		Pretty:  !cfg.Server.IsProduction(),
		Service: "identity-service",
	})

	users, readiness, cleanup, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	tokens, err := security.NewJWTCodec(cfg.Token.Secret, cfg.Token.Algorithm)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	e := api.NewIdentityRouter(api.IdentityDeps{
		Auth:          service.NewAuthService(users, hasher, tokens, cfg.Token.TTL, log),
		Users:         service.NewUserService(users),
		Readiness:     readiness,
		Logger:        log,
		EnableSwagger: !cfg.Server.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Server.StoreDriver).Msg("identity service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openUserStore(ctx context.Context, cfg *config.IdentityConfig, log zerolog.Logger) (ports.UserRepository, map[string]handler.Pinger, func(), error) {
	if cfg.Server.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory user store, data is lost on restart")
		return memory.NewUserStore(), nil, func() {}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Database})
	if err != nil {
		return nil, nil, nil, err
	}
	repo := mongostore.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}
	return repo, map[string]handler.Pinger{"mongodb": mongostore.Pinger{Client: client}}, cleanup, nil
}
