package application

import (
	"context"
	"time"

	catalogapp "github.com/dmehra2102/pos-backend/internal/catalog/application"
	"github.com/dmehra2102/pos-backend/internal/order/domain"
)

// UnitOfWork runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	catalogapp.StockTx

	// InsertOrder persists o with its items and fills in the generated ids.
	InsertOrder(ctx context.Context, o *domain.Order) error
	// LockOrder loads the order with its items and holds its row lock until
	// the transaction ends.
	LockOrder(ctx context.Context, id int64) (domain.Order, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, at time.Time) error
}

type OrderReader interface {
	Get(ctx context.Context, id int64) (domain.Order, error)
	List(ctx context.Context, q domain.Query) ([]domain.Order, error)
	Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	StatusTotals(ctx context.Context) ([]domain.StatusTotal, error)
	// PopularProducts ranks products by units sold across non-cancelled orders.
	PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
}
