package kitchen

import (
	"context"
	"strconv"

	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/pratofeito/marmita-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Board is the number of line items currently in each status, as counted
// by the kitchen feed from order events.
type Board map[orders.ItemStatus]int64

// RedisBoard reads and updates the board hash.
type RedisBoard struct{ rdb *redis.Client }

func NewRedisBoard(rdb *redis.Client) *RedisBoard { return &RedisBoard{rdb: rdb} }

func (b *RedisBoard) Counts(ctx context.Context) (Board, error) {
	raw, err := b.rdb.HGetAll(ctx, redisx.KeyKitchenBoard).Result()
	if err != nil {
		return nil, err
	}
	out := Board{}
	for _, st := range orders.ItemStatuses {
		out[st] = 0
	}
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		st := orders.ItemStatus(k)
		if st.Valid() {
			out[st] = n
		}
	}
	return out, nil
}

// Move shifts n items from one status to another. An empty from only adds.
func (b *RedisBoard) Move(ctx context.Context, from, to orders.ItemStatus, n int64) error {
	_, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if from != "" {
			pipe.HIncrBy(ctx, redisx.KeyKitchenBoard, string(from), -n)
		}
		pipe.HIncrBy(ctx, redisx.KeyKitchenBoard, string(to), n)
		return nil
	})
	return err
}
