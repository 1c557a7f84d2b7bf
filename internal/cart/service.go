package cart

import (
	"context"

	"github.com/pratofeito/marmita-orders/internal/catalog"
)

type Store interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
}

type DishLookup interface {
	Get(ctx context.Context, id int64) (*catalog.Dish, error)
}

var _ Store = (*RedisStore)(nil)

// Service loads the session's cart, applies one change and writes it back.
type Service struct {
	dishes DishLookup
	store  Store
}

func NewService(dishes DishLookup, store Store) *Service {
	return &Service{dishes: dishes, store: store}
}

func (s *Service) Get(ctx context.Context, sessionID string) (Cart, error) {
	return s.store.Load(ctx, sessionID)
}

func (s *Service) Save(ctx context.Context, sessionID string, c Cart) error {
	return s.store.Save(ctx, sessionID, c)
}

func (s *Service) Add(ctx context.Context, sessionID string, dishID int64, qty int) (Cart, error) {
	d, err := s.dishes.Get(ctx, dishID)
	if err != nil {
		return Cart{}, err
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error { return c.Add(*d, qty) })
}

func (s *Service) Remove(ctx context.Context, sessionID string, index int) (Cart, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error { return c.Remove(index) })
}

func (s *Service) UpdateQuantities(ctx context.Context, sessionID string, qs []int) (Cart, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.UpdateQuantities(qs)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Save(ctx, sessionID, Cart{})
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(c *Cart) error) (Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return Cart{}, err
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}
