package application

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	catalogapp "github.com/dmehra2102/pos-backend/internal/catalog/application"
	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/internal/order/domain"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
	"github.com/dmehra2102/pos-backend/pkg/tracing"
)

const defaultPopularLimit = 10

type Service struct {
	log    *slog.Logger
	uow    UnitOfWork
	orders OrderReader
	policy domain.TransitionPolicy
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(log *slog.Logger, uow UnitOfWork, orders OrderReader, policy domain.TransitionPolicy, opts ...Option) *Service {
	s := &Service{
		log:    log,
		uow:    uow,
		orders: orders,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder validates every line against current stock, then creates the
// order and takes the stock in a single transaction. Nothing is written when
// any line fails.
func (s *Service) PlaceOrder(ctx context.Context, cmd domain.PlaceOrder) (domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return domain.Order{}, err
	}
	demand, err := cmd.Demand()
	if err != nil {
		return domain.Order{}, err
	}
	ids := sortedIDs(demand)

	var order domain.Order
	err = s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}

		for _, l := range cmd.Lines {
			p, ok := products[l.ProductID]
			if !ok {
				return catalog.ProductNotFound(l.ProductID)
			}
			if want := demand[l.ProductID]; !p.CanSupply(want) {
				return &catalog.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.StockQuantity,
					Requested:   want,
				}
			}
		}

		order = domain.NewOrder(cmd.CustomerName, cmd.CustomerEmail, s.now())
		for _, l := range cmd.Lines {
			p := products[l.ProductID]
			order.AddItem(p.ID, p.Name, l.Quantity, p.Price)
		}

		for _, id := range ids {
			updated, err := tx.AdjustStock(ctx, id, -demand[id])
			if err != nil {
				return err
			}
			if err := catalogapp.RaiseStockLow(ctx, s.log, tx, updated); err != nil {
				return err
			}
		}

		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, order.ID, domain.EventOrderPlaced, domain.OrderPlaced{
			OrderID:      order.ID,
			CustomerName: order.CustomerName,
			TotalAmount:  order.TotalAmount,
			Items:        order.Items,
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order placed", "order_id", order.ID, "items", len(order.Items), "total", order.TotalAmount.String())
	return order, nil
}

// UpdateStatus moves an order to status. Entering CANCELLED puts every line
// back into stock; setting the status an order already has changes nothing.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, apperr.InvalidArgument("Invalid status: %s", status)
	}

	var (
		order    domain.Order
		from     domain.Status
		restored bool
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if order, err = tx.LockOrder(ctx, id); err != nil {
			return err
		}
		from = order.Status
		if from == status {
			return nil
		}
		if err := s.policy.Allow(from, status); err != nil {
			return err
		}

		if domain.RestoresStock(from, status) {
			back := map[int64]int{}
			for _, it := range order.Items {
				back[it.ProductID] += it.Quantity
			}
			for _, pid := range sortedIDs(back) {
				if _, err := tx.AdjustStock(ctx, pid, back[pid]); err != nil {
					return err
				}
			}
			restored = true
		}

		at := s.now()
		if err := tx.SetStatus(ctx, id, status, at); err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = at

		return s.appendEvent(ctx, tx, id, domain.EventOrderStatusChanged, domain.OrderStatusChanged{
			OrderID:       id,
			From:          from,
			To:            status,
			StockRestored: restored,
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	if from != status {
		s.log.Info("order status changed", "order_id", id, "from", from, "to", status, "stock_restored", restored)
	}
	return order, nil
}

func (s *Service) Cancel(ctx context.Context, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, id, domain.StatusCancelled)
}

func (s *Service) Complete(ctx context.Context, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, id, domain.StatusCompleted)
}

func (s *Service) Confirm(ctx context.Context, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, id, domain.StatusConfirmed)
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx, domain.Query{})
}

func (s *Service) ByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, apperr.InvalidArgument("Invalid status: %s", status)
	}
	return s.orders.List(ctx, domain.Query{Status: status})
}

func (s *Service) ByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.InvalidArgument("customer email is required")
	}
	return s.orders.List(ctx, domain.Query{CustomerEmail: email})
}

func (s *Service) Today(ctx context.Context) ([]domain.Order, error) {
	from, to := domain.Today(s.now())
	return s.orders.List(ctx, domain.Query{From: from, To: to})
}

func (s *Service) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orders.Items(ctx, orderID)
}

func (s *Service) PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	if limit < 0 {
		return nil, apperr.InvalidArgument("limit cannot be negative")
	}
	if limit == 0 {
		limit = defaultPopularLimit
	}
	return s.orders.PopularProducts(ctx, limit)
}

func (s *Service) Statistics(ctx context.Context) (domain.Statistics, error) {
	rows, err := s.orders.StatusTotals(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}
	return domain.ComputeStatistics(rows), nil
}

func (s *Service) appendEvent(ctx context.Context, tx Tx, orderID int64, eventType string, payload any) error {
	ev, err := outbox.NewEvent(domain.AggregateType, strconv.FormatInt(orderID, 10), eventType, payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, ev)
}

func sortedIDs(m map[int64]int) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
