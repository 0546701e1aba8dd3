package kafka

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestNewWriterHashesByKey(t *testing.T) {
	w := NewWriter(slog.Default(), []string{"b1:9092", "b2:9092"})
	require.IsType(t, &kafka.Hash{}, w.Balancer)
	require.Equal(t, kafka.RequireAll, w.RequiredAcks)
	require.Empty(t, w.Topic)
	require.Equal(t, "tcp", w.Addr.Network())
}

func TestErrorLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	ErrorLogger(log).Printf("write to %s failed", "pos.events")
	require.Contains(t, buf.String(), `"msg":"write to pos.events failed"`)
	require.Contains(t, buf.String(), `"component":"kafka"`)
}
