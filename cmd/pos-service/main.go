package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	catalogapp "github.com/dmehra2102/pos-backend/internal/catalog/application"
	cataloggrpc "github.com/dmehra2102/pos-backend/internal/catalog/infrastructure/grpc"
	cataloghttp "github.com/dmehra2102/pos-backend/internal/catalog/infrastructure/http"
	catalogpg "github.com/dmehra2102/pos-backend/internal/catalog/infrastructure/postgres"
	"github.com/dmehra2102/pos-backend/internal/config"
	orderapp "github.com/dmehra2102/pos-backend/internal/order/application"
	orderdomain "github.com/dmehra2102/pos-backend/internal/order/domain"
	orderhttp "github.com/dmehra2102/pos-backend/internal/order/infrastructure/http"
	orderpg "github.com/dmehra2102/pos-backend/internal/order/infrastructure/postgres"
	platformkafka "github.com/dmehra2102/pos-backend/internal/platform/kafka"
	"github.com/dmehra2102/pos-backend/internal/platform/memory"
	"github.com/dmehra2102/pos-backend/internal/platform/postgres"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
	"github.com/dmehra2102/pos-backend/pkg/idempotency"
	"github.com/dmehra2102/pos-backend/pkg/logging"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
	"github.com/dmehra2102/pos-backend/pkg/shutdown"
	"github.com/dmehra2102/pos-backend/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "pos-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	hooks := []shutdown.Hook{}

	// Storage
	var (
		products    catalogapp.ProductRepository
		uow         orderapp.UnitOfWork
		orders      orderapp.OrderReader
		outboxStore outbox.Store
	)
	switch cfg.StorageDriver {
	case config.DriverMemory:
		store := memory.New()
		products, uow, orders, outboxStore = store.Products(), store.Orders(), store.Orders(), store
		log.Warn("using in-memory storage, data is lost on exit")
	default:
		if cfg.RunMigrations {
			if err := postgres.Migrate(log, cfg.PGURL); err != nil {
				log.Error("migrations failed", "err", err)
				os.Exit(1)
			}
		}
		pool, err := postgres.Connect(ctx, log, cfg.PGURL)
		if err != nil {
			log.Error("pg connect failed", "err", err)
			os.Exit(1)
		}
		repo := orderpg.NewRepository(log, pool)
		products, uow, orders = catalogpg.NewRepository(log, pool), repo, repo
		outboxStore = postgres.NewOutboxStore(log, pool)
		hooks = append(hooks, shutdown.Hook{Name: "postgres", Fn: func(context.Context) error {
			pool.Close()
			return nil
		}})
	}

	catalogSvc := catalogapp.NewService(log, products)
	orderSvc := orderapp.NewService(log, uow, orders, orderdomain.NewTransitionPolicy(cfg.StrictTransitions))

	// Idempotency keys on POST /orders
	var createMW []func(http.Handler) http.Handler
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		createMW = append(createMW, idempotency.Middleware(log, idempotency.NewStore(rdb, cfg.IdempotencyTTL)))
		hooks = append(hooks, shutdown.Hook{Name: "redis", Fn: func(context.Context) error { return rdb.Close() }})
	}

	g, gctx := errgroup.WithContext(ctx)

	// Outbox relay
	if cfg.EventsEnabled() {
		writer := platformkafka.NewWriter(log, cfg.KafkaBrokers)
		dispatch := outbox.NewDispatcher(log, writer, cfg.EventsTopic)
		relay := outbox.NewRelay(log, outboxStore, dispatch, "pos-service-"+uuid.NewString(),
			outbox.WithBatchSize(cfg.RelayBatchSize),
			outbox.WithInterval(cfg.RelayInterval),
		)
		g.Go(func() error { return relay.Run(gctx) })
		hooks = append(hooks, shutdown.Hook{Name: "kafka-writer", Fn: func(context.Context) error { return writer.Close() }})
	}

	// HTTP
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, httpx.RequestLogger(log), httpx.Recover(log))
	r.Get("/health", health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)
		r.Mount("/products", cataloghttp.NewHandler(log, catalogSvc).Routes())
		r.Mount("/orders", orderhttp.NewHandler(log, orderSvc).Routes(createMW...))
	})
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// gRPC inventory service
	gs, err := cataloggrpc.Run(log, cfg.GRPCAddr, cataloggrpc.NewServer(log, catalogSvc))
	if err != nil {
		log.Error("grpc server failed", "err", err)
		cancel()
	}

	<-gctx.Done()

	hooks = append([]shutdown.Hook{
		{Name: "http", Fn: srv.Shutdown},
		{Name: "grpc", Fn: func(context.Context) error {
			if gs != nil {
				gs.GracefulStop()
			}
			return nil
		}},
		{Name: "workers", Fn: func(context.Context) error { return g.Wait() }},
	}, hooks...)
	hooks = append(hooks, shutdown.Hook{Name: "tracing", Fn: tp.Shutdown})

	if err := shutdown.Run(log, 10*time.Second, hooks...); err != nil {
		log.Error("pos-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("pos-service shutdown complete")
}

func health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
