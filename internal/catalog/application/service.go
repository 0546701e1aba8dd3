package application

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
	"github.com/dmehra2102/pos-backend/pkg/tracing"
)

type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = 0
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product created", "product_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, domain.Query{})
}

func (s *Service) Search(ctx context.Context, name string) ([]domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("search name is required")
	}
	return s.repo.List(ctx, domain.Query{Filter: domain.FilterNameContains, Name: name})
}

func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, domain.Query{Filter: domain.FilterLowStock})
}

// NeedsRestock lists products at or below their minimum level, lowest stock first.
func (s *Service) NeedsRestock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, domain.Query{Filter: domain.FilterNeedsRestock})
}

func (s *Service) InStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, domain.Query{Filter: domain.FilterInStock})
}

func (s *Service) Update(ctx context.Context, id int64, p domain.Product) (domain.Product, error) {
	p.ID = id
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id)
	return nil
}

func (s *Service) Restock(ctx context.Context, id int64, amount int) (domain.Product, error) {
	if amount < 0 {
		return domain.Product{}, apperr.InvalidArgument("restock amount cannot be negative")
	}
	if amount > domain.MaxStock {
		return domain.Product{}, apperr.InvalidArgument("restock amount cannot exceed %d", domain.MaxStock)
	}
	var out domain.Product
	err := s.repo.InStockTx(ctx, func(ctx context.Context, tx StockTx) error {
		locked, err := tx.LockProducts(ctx, []int64{id})
		if err != nil {
			return err
		}
		if _, ok := locked[id]; !ok {
			return domain.ProductNotFound(id)
		}
		out, err = tx.AdjustStock(ctx, id, amount)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product restocked", "product_id", id, "amount", amount, "stock", out.StockQuantity)
	return out, nil
}

// Deduct removes amount from stock outside of an order, e.g. breakage or a
// manual count correction.
func (s *Service) Deduct(ctx context.Context, id int64, amount int) (domain.Product, error) {
	if amount < 0 {
		return domain.Product{}, apperr.InvalidArgument("deduct amount cannot be negative")
	}
	if amount > domain.MaxStock {
		return domain.Product{}, apperr.InvalidArgument("deduct amount cannot exceed %d", domain.MaxStock)
	}
	var out domain.Product
	err := s.repo.InStockTx(ctx, func(ctx context.Context, tx StockTx) error {
		locked, err := tx.LockProducts(ctx, []int64{id})
		if err != nil {
			return err
		}
		p, ok := locked[id]
		if !ok {
			return domain.ProductNotFound(id)
		}
		if err := p.Deduct(amount); err != nil {
			return err
		}
		if out, err = tx.AdjustStock(ctx, id, -amount); err != nil {
			return err
		}
		return RaiseStockLow(ctx, s.log, tx, out)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return out, nil
}

// Available reports whether quantity units can be taken right now.
func (s *Service) Available(ctx context.Context, id int64, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, apperr.InvalidArgument("quantity must be greater than zero")
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p.CanSupply(quantity), nil
}

// CheckStock compares a demand per product against current stock without
// reserving anything. A product that does not exist fails with NotFound.
func (s *Service) CheckStock(ctx context.Context, demand map[int64]int) ([]domain.Shortage, error) {
	ids := make([]int64, 0, len(demand))
	for id, qty := range demand {
		if qty <= 0 {
			return nil, apperr.InvalidArgument("quantity for product %d must be greater than zero", id)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var shortages []domain.Shortage
	for _, id := range ids {
		p, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !p.CanSupply(demand[id]) {
			shortages = append(shortages, domain.Shortage{ProductID: id, Available: p.StockQuantity, Requested: demand[id]})
		}
	}
	return shortages, nil
}

func (s *Service) Statistics(ctx context.Context) (domain.Statistics, error) {
	all, err := s.repo.List(ctx, domain.Query{})
	if err != nil {
		return domain.Statistics{}, err
	}
	return domain.ComputeStatistics(all), nil
}

// RaiseStockLow logs a warning and queues a StockLow event when p has fallen
// to or below its minimum level.
func RaiseStockLow(ctx context.Context, log *slog.Logger, tx StockTx, p domain.Product) error {
	if !p.NeedsRestock() {
		return nil
	}
	log.Warn("product stock at or below minimum level",
		"product_id", p.ID, "name", p.Name, "stock", p.StockQuantity, "min_stock", p.MinStockLevel)

	ev, err := outbox.NewEvent(domain.AggregateType, strconv.FormatInt(p.ID, 10), domain.EventStockLow,
		domain.NewStockLow(p), tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, ev)
}
