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
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/pos-backend/internal/alert/application"
	alertgrpc "github.com/dmehra2102/pos-backend/internal/alert/infrastructure/grpc"
	alerthttp "github.com/dmehra2102/pos-backend/internal/alert/infrastructure/http"
	alertkafka "github.com/dmehra2102/pos-backend/internal/alert/infrastructure/kafka"
	alertredis "github.com/dmehra2102/pos-backend/internal/alert/infrastructure/redis"
	"github.com/dmehra2102/pos-backend/internal/config"
	platformkafka "github.com/dmehra2102/pos-backend/internal/platform/kafka"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
	"github.com/dmehra2102/pos-backend/pkg/idempotency"
	"github.com/dmehra2102/pos-backend/pkg/logging"
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

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "alert-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis ping failed", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}

	inventory, err := alertgrpc.NewInventoryClient(log, cfg.InventoryGRPCAddr)
	if err != nil {
		log.Error("inventory client failed", "err", err)
		os.Exit(1)
	}

	svc := application.NewService(log, alertredis.NewStore(rdb), inventory)
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	reader := platformkafka.NewReader(log, cfg.KafkaBrokers, cfg.EventsTopic, cfg.ConsumerGroup)
	consumer := alertkafka.NewConsumer(log, reader, svc, idem)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, httpx.RequestLogger(log), httpx.Recover(log))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	})
	r.Mount("/alerts", alerthttp.NewHandler(log, svc).Routes())
	srv := &http.Server{
		Addr:         cfg.AlertHTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(gctx) })
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.AlertHTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	<-gctx.Done()

	err = shutdown.Run(log, 10*time.Second,
		shutdown.Hook{Name: "http", Fn: srv.Shutdown},
		shutdown.Hook{Name: "workers", Fn: func(context.Context) error { return g.Wait() }},
		shutdown.Hook{Name: "inventory-client", Fn: func(context.Context) error { return inventory.Close() }},
		shutdown.Hook{Name: "redis", Fn: func(context.Context) error { return rdb.Close() }},
		shutdown.Hook{Name: "tracing", Fn: tp.Shutdown},
	)
	if err != nil {
		log.Error("alert-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("alert-service shutdown complete")
}
