package memory

import (
	"context"
	"slices"
	"time"

	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	order "github.com/dmehra2102/pos-backend/internal/order/domain"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
)

type txn struct {
	st  *state
	now func() time.Time
}

func (t *txn) LockProducts(_ context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := make(map[int64]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := t.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t *txn) AdjustStock(_ context.Context, id int64, delta int) (catalog.Product, error) {
	p, ok := t.st.products[id]
	if !ok {
		return catalog.Product{}, catalog.ProductNotFound(id)
	}
	if delta < 0 {
		if err := p.Deduct(-delta); err != nil {
			return catalog.Product{}, err
		}
	} else if err := p.Restock(delta); err != nil {
		return catalog.Product{}, err
	}
	p.UpdatedAt = t.now()
	t.st.products[id] = p
	return p, nil
}

func (t *txn) AppendEvent(_ context.Context, e outbox.Event) error {
	t.st.eventSeq++
	e.ID = t.st.eventSeq
	e.Status = outbox.StatusPending
	t.st.events = append(t.st.events, e)
	return nil
}

func (t *txn) InsertOrder(_ context.Context, o *order.Order) error {
	t.st.orderSeq++
	o.ID = t.st.orderSeq
	for i := range o.Items {
		t.st.itemSeq++
		o.Items[i].ID = t.st.itemSeq
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = slices.Clone(o.Items)
	t.st.orders[o.ID] = stored
	return nil
}

func (t *txn) LockOrder(_ context.Context, id int64) (order.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return order.Order{}, order.OrderNotFound(id)
	}
	o.Items = slices.Clone(o.Items)
	return o, nil
}

func (t *txn) SetStatus(_ context.Context, id int64, status order.Status, at time.Time) error {
	o, ok := t.st.orders[id]
	if !ok {
		return order.OrderNotFound(id)
	}
	o.Status = status
	o.UpdatedAt = at
	t.st.orders[id] = o
	return nil
}
