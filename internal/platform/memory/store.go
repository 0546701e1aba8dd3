// Package memory keeps the catalog, orders and the outbox in process memory.
// A transaction works on a copy of the state that replaces the live state
// only when it commits.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	order "github.com/dmehra2102/pos-backend/internal/order/domain"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
)

type state struct {
	products map[int64]catalog.Product
	orders   map[int64]order.Order
	events   []outbox.Event

	productSeq int64
	orderSeq   int64
	itemSeq    int64
	eventSeq   int64
}

func (s *state) clone() *state {
	c := *s
	c.products = maps.Clone(s.products)
	c.orders = make(map[int64]order.Order, len(s.orders))
	for id, o := range s.orders {
		o.Items = slices.Clone(o.Items)
		c.orders[id] = o
	}
	c.events = slices.Clone(s.events)
	return &c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{
		st: &state{
			products: map[int64]catalog.Product{},
			orders:   map[int64]order.Order{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Products() *Products { return &Products{s: s} }

func (s *Store) Orders() *Orders { return &Orders{s: s} }

// atomically runs fn against a copy of the state and keeps the copy only if
// fn succeeds.
func (s *Store) atomically(ctx context.Context, fn func(*txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&txn{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) read(fn func(*state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// Events returns a copy of every outbox event in insertion order.
func (s *Store) Events() []outbox.Event {
	var out []outbox.Event
	s.read(func(st *state) { out = slices.Clone(st.events) })
	return out
}

func (s *Store) LockBatch(_ context.Context, relayID string, batchSize int, _ time.Duration) ([]outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []outbox.Event
	for i := range s.st.events {
		if len(batch) == batchSize {
			break
		}
		ev := &s.st.events[i]
		if ev.Status != outbox.StatusPending {
			continue
		}
		ev.Status = outbox.StatusInProgress
		ev.RelayID = relayID
		batch = append(batch, *ev)
	}
	return batch, nil
}

func (s *Store) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.events {
		if slices.Contains(ids, s.st.events[i].ID) {
			s.st.events[i].Status = outbox.StatusSent
		}
	}
	return nil
}

func (s *Store) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.events {
		ev := &s.st.events[i]
		if ev.ID != id {
			continue
		}
		ev.RetryCount++
		ev.LastError = &errMsg
		ev.Status = outbox.StatusPending
		if ev.RetryCount >= outbox.MaxRetries {
			ev.Status = outbox.StatusFailed
		}
	}
	return nil
}

func (s *Store) ExtendLease(context.Context, string, []int64, time.Duration) error { return nil }
