package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Store keeps login sessions in Redis. A session maps an opaque id to the
// principal that logged in; the session's cart lives next to it and shares
// its TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) Create(ctx context.Context, p accounts.Principal) (string, error) {
	id := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySession, id)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "kind", string(p.Kind), "account_id", p.ID)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get resolves the session and slides its expiry (and the cart's) forward.
func (s *Store) Get(ctx context.Context, id string) (accounts.Principal, error) {
	if id == "" {
		return accounts.Principal{}, apperr.ErrUnauthenticated
	}
	key := fmt.Sprintf(redisx.KeySession, id)
	vals, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return accounts.Principal{}, err
	}
	kind := accounts.Kind(vals["kind"])
	accountID, convErr := strconv.ParseInt(vals["account_id"], 10, 64)
	if !kind.Valid() || convErr != nil {
		return accounts.Principal{}, apperr.ErrUnauthenticated
	}

	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, key, s.ttl)
		pipe.Expire(ctx, fmt.Sprintf(redisx.KeySessionCart, id), s.ttl)
		return nil
	})
	if err != nil {
		return accounts.Principal{}, err
	}
	return accounts.Principal{Kind: kind, ID: accountID}, nil
}

// Destroy ends the session and drops its cart.
func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.rdb.Del(ctx,
		fmt.Sprintf(redisx.KeySession, id),
		fmt.Sprintf(redisx.KeySessionCart, id),
	).Err()
}
