package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmehra2102/pos-backend/internal/catalog/application"
	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/internal/platform/memory"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

func startServer(t *testing.T) (*Client, *application.Service) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, memory.New().Products())

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(log, NewServer(log, svc))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, svc
}

func TestGetProduct(t *testing.T) {
	client, svc := startServer(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.Product{Name: "Oat Milk", Price: decimal.RequireFromString("3.5"), StockQuantity: 4, MinStockLevel: 5})
	require.NoError(t, err)

	got, err := client.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Oat Milk", got.Name)
	require.Equal(t, "3.50", got.Price)
	require.Equal(t, 4, got.StockQuantity)
	require.True(t, got.NeedsRestock)

	_, err = client.GetProduct(ctx, 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCheckStock(t *testing.T) {
	client, svc := startServer(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, domain.Product{Name: "Croissant", Price: decimal.NewFromInt(2), StockQuantity: 10})
	require.NoError(t, err)
	b, err := svc.Create(ctx, domain.Product{Name: "Bagel", Price: decimal.NewFromInt(3), StockQuantity: 1})
	require.NoError(t, err)

	resp, err := client.CheckStock(ctx, []StockLine{{ProductID: a.ID, Quantity: 4}, {ProductID: a.ID, Quantity: 6}})
	require.NoError(t, err)
	require.True(t, resp.Available)
	require.Empty(t, resp.Shortages)

	resp, err = client.CheckStock(ctx, []StockLine{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 2}})
	require.NoError(t, err)
	require.False(t, resp.Available)
	require.Equal(t, []domain.Shortage{{ProductID: b.ID, Available: 1, Requested: 2}}, resp.Shortages)

	_, err = client.CheckStock(ctx, nil)
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
