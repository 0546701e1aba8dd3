package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/pos-backend/pkg/outbox"
)

func appendEvents(t *testing.T, s *Store, n int) {
	t.Helper()
	require.NoError(t, s.atomically(context.Background(), func(tx *txn) error {
		for i := 0; i < n; i++ {
			ev, err := outbox.NewEvent("order", "1", "OrderPlaced", map[string]int{"n": i}, "")
			if err != nil {
				return err
			}
			if err := tx.AppendEvent(context.Background(), ev); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestRolledBackTransactionLeavesNoEvents(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	err := s.atomically(context.Background(), func(tx *txn) error {
		ev, err := outbox.NewEvent("order", "1", "OrderPlaced", struct{}{}, "")
		require.NoError(t, err)
		require.NoError(t, tx.AppendEvent(context.Background(), ev))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, s.Events())
}

func TestLockBatchClaimsPendingOnly(t *testing.T) {
	s := New()
	appendEvents(t, s, 3)
	ctx := context.Background()

	batch, err := s.LockBatch(ctx, "r1", 2, 0)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.Equal(t, "r1", batch[0].RelayID)

	rest, err := s.LockBatch(ctx, "r2", 10, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, batch[1].ID+1, rest[0].ID)

	require.NoError(t, s.MarkSent(ctx, []int64{batch[0].ID}))
	require.Equal(t, outbox.StatusSent, s.Events()[0].Status)
}

func TestMarkFailedRetriesUntilLimit(t *testing.T) {
	s := New()
	appendEvents(t, s, 1)
	ctx := context.Background()

	for i := 1; i < outbox.MaxRetries; i++ {
		batch, err := s.LockBatch(ctx, "r1", 1, 0)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		require.NoError(t, s.MarkFailed(ctx, batch[0].ID, "broker down"))
		require.Equal(t, outbox.StatusPending, s.Events()[0].Status)
	}

	batch, err := s.LockBatch(ctx, "r1", 1, 0)
	require.NoError(t, err)
	require.NoError(t, s.MarkFailed(ctx, batch[0].ID, "broker down"))

	ev := s.Events()[0]
	require.Equal(t, outbox.StatusFailed, ev.Status)
	require.Equal(t, outbox.MaxRetries, ev.RetryCount)
	require.Equal(t, "broker down", *ev.LastError)

	batch, err = s.LockBatch(ctx, "r1", 1, 0)
	require.NoError(t, err)
	require.Empty(t, batch)
}

type sink struct{ msgs []kafka.Message }

func (s *sink) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func TestRelayDrainsStore(t *testing.T) {
	s := New()
	appendEvents(t, s, 4)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &sink{}
	relay := outbox.NewRelay(log, s, outbox.NewDispatcher(log, out, "pos.events"), "relay-test", outbox.WithBatchSize(3))

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	n, err = relay.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.Len(t, out.msgs, 4)
	for _, ev := range s.Events() {
		require.Equal(t, outbox.StatusSent, ev.Status)
	}
}
