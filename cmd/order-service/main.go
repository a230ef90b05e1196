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
	redisstore "github.com/shopline/commerce/internal/infrastructure/db/redis"
	"github.com/shopline/commerce/internal/infrastructure/identity"
	"github.com/shopline/commerce/internal/infrastructure/queue"
	"github.com/shopline/commerce/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Order Service API
// @version         1.0
// @description     Owner-scoped order management. Bearer tokens are verified by the identity service.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "order-service: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	orders    ports.OrderRepository
	events    ports.OrderEventRepository
	readiness map[string]handler.Pinger
	cleanup   []func()
}

func (s *stores) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadOrder(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.Server.LogLevel,
		Pretty:  !cfg.Server.IsProduction(),
		Service: "order-service",
	})

	st := &stores{readiness: map[string]handler.Pinger{}}
	defer st.close()
	if err := openOrderStores(ctx, cfg, st, log); err != nil {
		return err
	}

	peer := identity.NewClient(cfg.UserServiceURL, cfg.UserServiceTO, log)
	st.readiness["identity_service"] = peer
	var authenticator ports.Authenticator = peer
	if cfg.CacheEnabled() {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		st.cleanup = append(st.cleanup, func() { _ = rdb.Close() })
		st.readiness["redis"] = redisstore.Pinger{Client: rdb}
		authenticator = service.NewCachedAuthenticator(peer, redisstore.NewIdentityCache(rdb), cfg.IdentityCacheTTL, log)
		log.Info().Dur("ttl", cfg.IdentityCacheTTL).Msg("identity cache enabled")
	}

	// The dispatcher outlives the signal context so queued events drain after shutdown.
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, st.events, log)
	dispatcher.Start(context.Background())

	e := api.NewOrderRouter(api.OrderDeps{
		Orders:        service.NewOrderService(st.orders, dispatcher, log),
		Authenticator: authenticator,
		Readiness:     st.readiness,
		Logger:        log,
		EnableSwagger: !cfg.Server.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.Server.StoreDriver).
			Str("user_service", cfg.UserServiceURL).
			Msg("order service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	dispatcher.Close()

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

func openOrderStores(ctx context.Context, cfg *config.OrderConfig, st *stores, log zerolog.Logger) error {
	if cfg.Server.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory order store, data is lost on restart")
		st.orders = memory.NewOrderStore()
		st.events = memory.NewEventStore()
		return nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Database})
	if err != nil {
		return err
	}
	st.cleanup = append(st.cleanup, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	})

	orders := mongostore.NewOrderRepository(db)
	if err := orders.EnsureIndexes(ctx); err != nil {
		return err
	}
	st.orders = orders
	st.events = mongostore.NewEventRepository(db)
	st.readiness["mongodb"] = mongostore.Pinger{Client: client}
	return nil
}
