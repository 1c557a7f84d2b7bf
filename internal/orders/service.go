package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/cart"
	"github.com/pratofeito/marmita-orders/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	CreateWithItems(ctx context.Context, o *Order, items []LineItem) error
	Get(ctx context.Context, id int64) (*Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	Items(ctx context.Context, orderID int64) ([]LineItem, error)
}

// AddressBook resolves the delivery address stored on a customer profile.
type AddressBook interface {
	CustomerAddress(ctx context.Context, customerID int64) (string, error)
}

var (
	_ Repository       = (*Repo)(nil)
	_ IdempotencyStore = (*RedisIdempotency)(nil)
)

type Service struct {
	repo      Repository
	addresses AddressBook
	idem      IdempotencyStore
	pub       Publisher
	producer  string
}

// NewService wires the order lifecycle. idem and pub may be nil.
func NewService(repo Repository, addresses AddressBook, idem IdempotencyStore, pub Publisher, producer string) *Service {
	return &Service{repo: repo, addresses: addresses, idem: idem, pub: pub, producer: producer}
}

// PlaceOrder turns the cart into a confirmed order. Nothing is written when
// the cart is empty or no delivery address can be resolved. On success the
// cart is emptied in place; persisting that is up to the caller.
func (s *Service) PlaceOrder(ctx context.Context, customerID int64, c *cart.Cart, in PlaceOrderInput) (*Order, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" && s.idem != nil {
		id, ok, err := s.idem.Lookup(ctx, customerID, key)
		if err != nil {
			log.WithError(err).Warn("idempotency lookup failed")
		} else if ok {
			o, err := s.repo.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if o.CustomerID != customerID {
				return nil, fmt.Errorf("order %d: %w", id, apperr.ErrForbidden)
			}
			if c != nil {
				c.Clear()
			}
			return o, nil
		}
	}

	if c == nil || c.IsEmpty() {
		return nil, apperr.ErrEmptyCart
	}

	address, err := s.resolveAddress(ctx, customerID, in.Address)
	if err != nil {
		return nil, err
	}

	o := &Order{
		CustomerID:      customerID,
		Status:          StatusConfirmed,
		Total:           c.Total(),
		DeliveryAddress: address,
	}
	note := strings.TrimSpace(in.Note)
	items := make([]LineItem, 0, c.Len())
	for _, e := range c.Entries {
		items = append(items, LineItem{
			DishID:    e.DishID,
			DishName:  e.Name,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			Status:    ItemSentToKitchen,
			Note:      note,
		})
	}

	if err := s.repo.CreateWithItems(ctx, o, items); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	c.Clear()
	if key != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, customerID, key, o.ID); err != nil {
			log.WithError(err).WithField("order_id", o.ID).Warn("idempotency remember failed")
		}
	}

	placed := make([]PlacedItem, 0, len(items))
	for _, it := range items {
		placed = append(placed, PlacedItem{
			LineItemID: it.ID,
			DishID:     it.DishID,
			DishName:   it.DishName,
			Quantity:   it.Quantity,
			Status:     it.Status,
		})
	}
	PublishEvent(ctx, s.pub, s.producer, EventOrderPlaced, o.ID, OrderPlacedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total.StringFixed(2),
		Items:      placed,
	})
	metrics.OrdersPlaced.Inc()

	log.WithFields(log.Fields{
		"order_id":    o.ID,
		"customer_id": customerID,
		"items":       len(items),
		"total":       o.Total.StringFixed(2),
	}).Info("order placed")
	return o, nil
}

func (s *Service) resolveAddress(ctx context.Context, customerID int64, override string) (string, error) {
	if a := strings.TrimSpace(override); a != "" {
		return a, nil
	}
	if s.addresses == nil {
		return "", apperr.ErrMissingAddress
	}
	a, err := s.addresses.CustomerAddress(ctx, customerID)
	if err != nil {
		return "", err
	}
	if a == "" {
		return "", apperr.ErrMissingAddress
	}
	return a, nil
}

// ListOrders returns the customer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID int64) ([]Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *Service) GetOrderDetail(ctx context.Context, orderID, requesterID int64) (*Detail, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != requesterID {
		return nil, fmt.Errorf("order %d: %w", orderID, apperr.ErrForbidden)
	}
	items, err := s.repo.Items(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Detail{Order: *o, Items: items}, nil
}
