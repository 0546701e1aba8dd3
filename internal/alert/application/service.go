package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmehra2102/pos-backend/internal/alert/domain"
	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

type AlertStore interface {
	Record(ctx context.Context, a domain.LowStockAlert) error
	Remove(ctx context.Context, productID int64) (bool, error)
	List(ctx context.Context) ([]domain.LowStockAlert, error)
}

// ProductLevel is the current stock position of a product as reported by
// the inventory service.
type ProductLevel struct {
	ProductID     int64
	Name          string
	StockQuantity int
	MinStockLevel int
	NeedsRestock  bool
}

type Inventory interface {
	ProductLevel(ctx context.Context, productID int64) (ProductLevel, error)
}

type Service struct {
	log       *slog.Logger
	store     AlertStore
	inventory Inventory
	now       func() time.Time
}

func NewService(log *slog.Logger, store AlertStore, inventory Inventory) *Service {
	return &Service{log: log, store: store, inventory: inventory, now: time.Now}
}

// HandleStockLow re-reads the product before alerting, since a restock may
// have landed between the event and its delivery.
func (s *Service) HandleStockLow(ctx context.Context, ev catalog.StockLow) error {
	p, err := s.inventory.ProductLevel(ctx, ev.ProductID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		s.log.Info("product gone, dropping low stock alert", "product_id", ev.ProductID)
		_, err = s.store.Remove(ctx, ev.ProductID)
		return err
	}
	if err != nil {
		return err
	}

	if !p.NeedsRestock {
		if _, err := s.store.Remove(ctx, p.ProductID); err != nil {
			return err
		}
		s.log.Info("stock recovered before alert", "product_id", p.ProductID, "stock", p.StockQuantity)
		return nil
	}

	a := domain.LowStockAlert{
		ProductID:     p.ProductID,
		ProductName:   p.Name,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		RaisedAt:      s.now().UTC(),
	}
	if err := s.store.Record(ctx, a); err != nil {
		return err
	}
	s.log.Warn("low stock alert raised", "product_id", a.ProductID, "name", a.ProductName,
		"stock", a.StockQuantity, "min_stock", a.MinStockLevel, "shortfall", a.Shortfall())
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.LowStockAlert, error) {
	return s.store.List(ctx)
}

func (s *Service) Acknowledge(ctx context.Context, productID int64) error {
	ok, err := s.store.Remove(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.AlertNotFound(productID)
	}
	s.log.Info("low stock alert acknowledged", "product_id", productID)
	return nil
}
