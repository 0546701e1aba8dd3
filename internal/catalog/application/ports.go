package application

import (
	"context"

	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
)

type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context, q domain.Query) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	// Delete returns a Conflict error while order items still reference the product.
	Delete(ctx context.Context, id int64) error

	InStockTx(ctx context.Context, fn func(ctx context.Context, tx StockTx) error) error
}

// StockTx is the part of a transaction that touches stock levels. Every
// method runs inside the transaction that InStockTx (or an order unit of
// work) opened.
type StockTx interface {
	// LockProducts locks the rows in ascending id order. Missing ids are
	// absent from the result.
	LockProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	// AdjustStock adds delta to the stock level and returns the updated
	// product. A delta that would take stock below zero fails with
	// *domain.InsufficientStockError and changes nothing.
	AdjustStock(ctx context.Context, id int64, delta int) (domain.Product, error)
	AppendEvent(ctx context.Context, e outbox.Event) error
}
