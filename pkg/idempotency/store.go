package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, prefix: "idem"}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s:%s:%d:%d", s.prefix, topic, partition, offset)
}

// Seen marks key as processed and reports whether it had been marked before.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// Forget clears a mark set by Seen so the key can be processed again.
func (s *Store) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Claim reserves a client supplied request key. It returns false when the key
// is already claimed.
func (s *Store) Claim(ctx context.Context, requestKey string) (bool, error) {
	seen, err := s.Seen(ctx, s.requestKey(requestKey))
	return !seen, err
}

func (s *Store) Release(ctx context.Context, requestKey string) error {
	return s.rdb.Del(ctx, s.requestKey(requestKey)).Err()
}

func (s *Store) requestKey(k string) string {
	return s.prefix + ":http:" + k
}
