package redis

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/pos-backend/internal/alert/domain"
)

const (
	indexKey = "alerts:low-stock"
	dataKey  = "alerts:low-stock:data"
)

// Store keeps alerts in a sorted set scored by raise time, with the alert
// bodies in a hash keyed by product id.
type Store struct {
	rdb redis.Cmdable
}

func NewStore(rdb redis.Cmdable) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Record(ctx context.Context, a domain.LowStockAlert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	member := strconv.FormatInt(a.ProductID, 10)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, indexKey, redis.Z{Score: float64(a.RaisedAt.Unix()), Member: member})
		p.HSet(ctx, dataKey, member, body)
		return nil
	})
	return err
}

func (s *Store) Remove(ctx context.Context, productID int64) (bool, error) {
	member := strconv.FormatInt(productID, 10)
	var removed *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		removed = p.ZRem(ctx, indexKey, member)
		p.HDel(ctx, dataKey, member)
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

// List returns alerts newest first.
func (s *Store) List(ctx context.Context) ([]domain.LowStockAlert, error) {
	members, err := s.rdb.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := []domain.LowStockAlert{}
	if len(members) == 0 {
		return out, nil
	}

	bodies, err := s.rdb.HMGet(ctx, dataKey, members...).Result()
	if err != nil {
		return nil, err
	}
	for _, b := range bodies {
		raw, ok := b.(string)
		if !ok {
			continue
		}
		var a domain.LowStockAlert
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
