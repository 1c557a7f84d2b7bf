package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/pratofeito/marmita-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers which order a (customer, key) pair produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, customerID int64, key string) (int64, bool, error)
	Remember(ctx context.Context, customerID int64, key string, orderID int64) error
}

type RedisIdempotency struct{ rdb *redis.Client }

func NewRedisIdempotency(rdb *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb}
}

func (r *RedisIdempotency) Lookup(ctx context.Context, customerID int64, key string) (int64, bool, error) {
	v, err := r.rdb.Get(ctx, fmt.Sprintf(redisx.KeyIdemOrderPlace, customerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency value %q: %w", v, err)
	}
	return id, true, nil
}

func (r *RedisIdempotency) Remember(ctx context.Context, customerID int64, key string, orderID int64) error {
	return r.rdb.Set(ctx, fmt.Sprintf(redisx.KeyIdemOrderPlace, customerID, key), orderID, redisx.TTLIdempotency).Err()
}
