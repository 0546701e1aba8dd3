package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/pos-backend/internal/alert/application"
	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	order "github.com/dmehra2102/pos-backend/internal/order/domain"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
	"github.com/dmehra2102/pos-backend/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Consumer struct {
	log     *slog.Logger
	reader  Reader
	svc     *application.Service
	idem    Deduper
	tracer  trace.Tracer
	backoff time.Duration
}

type Option func(*Consumer)

// WithBackoff sets the pause between attempts at a message that failed.
func WithBackoff(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.backoff = d
		}
	}
}

func NewConsumer(log *slog.Logger, reader Reader, svc *application.Service, idem Deduper, opts ...Option) *Consumer {
	c := &Consumer{
		log:     log,
		reader:  reader,
		svc:     svc,
		idem:    idem,
		tracer:  otel.Tracer("alert-consumer"),
		backoff: time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run consumes until ctx is cancelled. Only StockLow events raise alerts;
// the rest of the stream is logged and committed. A message is committed
// only once Handle succeeds, so a failing message is retried in place.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !c.process(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// process retries Handle until it succeeds. It returns false when ctx ends
// first, leaving the message uncommitted.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		err := c.Handle(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		c.log.Error("message handling failed, retrying", "offset", msg.Offset, "attempt", attempt, "err", err)

		t := time.NewTimer(c.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
}

// Handle processes one message. A returned error means the message was not
// applied and must not be committed. Malformed payloads are logged and
// dropped since no retry can fix them.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency check %s: %w", key, err)
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return nil
	}

	if err := c.dispatch(ctx, msg); err != nil {
		if fErr := c.idem.Forget(context.WithoutCancel(ctx), key); fErr != nil {
			c.log.Error("idempotency key release failed", "key", key, "err", fErr)
		}
		return err
	}
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, msg kafka.Message) error {
	eventType := tracing.HeaderValue(msg.Headers, outbox.HeaderEventType)
	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume"+eventType)
	defer span.End()
	span.SetAttributes(attribute.String("event.type", eventType), attribute.Int64("kafka.offset", msg.Offset))

	switch eventType {
	case catalog.EventStockLow:
		var ev catalog.StockLow
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.log.Error("unmarshal failed, dropping message", "event_type", eventType, "offset", msg.Offset, "err", err)
			return nil
		}
		if err := c.svc.HandleStockLow(msgCtx, ev); err != nil {
			span.RecordError(err)
			return fmt.Errorf("stock low for product %d: %w", ev.ProductID, err)
		}
	case order.EventOrderPlaced, order.EventOrderStatusChanged:
		c.log.Debug("order event observed", "event_type", eventType, "key", string(msg.Key))
	default:
		c.log.Warn("unknown event type", "event_type", eventType, "key", string(msg.Key))
	}
	return nil
}
