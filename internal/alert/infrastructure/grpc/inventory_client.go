package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"

	"github.com/dmehra2102/pos-backend/internal/alert/application"
	invgrpc "github.com/dmehra2102/pos-backend/internal/catalog/infrastructure/grpc"
)

// InventoryClient reads current stock levels from the pos-service
// InventoryService.
type InventoryClient struct {
	log *slog.Logger
	cc  *invgrpc.Client
}

func NewInventoryClient(log *slog.Logger, addr string, opts ...grpc.DialOption) (*InventoryClient, error) {
	cc, err := invgrpc.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &InventoryClient{log: log, cc: cc}, nil
}

func (c *InventoryClient) ProductLevel(ctx context.Context, productID int64) (application.ProductLevel, error) {
	p, err := c.cc.GetProduct(ctx, productID)
	if err != nil {
		c.log.Debug("inventory lookup failed", "product_id", productID, "err", err)
		return application.ProductLevel{}, err
	}
	return application.ProductLevel{
		ProductID:     p.ProductID,
		Name:          p.Name,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		NeedsRestock:  p.NeedsRestock,
	}, nil
}

func (c *InventoryClient) Close() error { return c.cc.Close() }
