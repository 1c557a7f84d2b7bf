package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pratofeito/marmita-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists a session's cart as a JSON document next to the session.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(redisx.KeySessionCart, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	key := fmt.Sprintf(redisx.KeySessionCart, sessionID)
	if c.IsEmpty() {
		return s.rdb.Del(ctx, key).Err()
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}
