package kitchen

import (
	"context"
	"fmt"

	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/metrics"
	"github.com/pratofeito/marmita-orders/internal/orders"
	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
	Items(ctx context.Context, orderID int64) ([]orders.LineItem, error)
	ItemsByStatus(ctx context.Context, statuses []orders.ItemStatus) ([]orders.LineItem, error)
	SetItemStatus(ctx context.Context, id int64, status orders.ItemStatus) (*orders.LineItem, error)
}

type BoardReader interface {
	Counts(ctx context.Context) (Board, error)
}

var (
	_ Repository  = (*orders.Repo)(nil)
	_ BoardReader = (*RedisBoard)(nil)
)

const qrSize = 256

// Service is the merchant-facing view over line items across all orders.
// Every method requires a merchant principal.
type Service struct {
	repo     Repository
	board    BoardReader
	pub      orders.Publisher
	producer string
	baseURL  string
}

func NewService(repo Repository, board BoardReader, pub orders.Publisher, producer, baseURL string) *Service {
	return &Service{repo: repo, board: board, pub: pub, producer: producer, baseURL: baseURL}
}

func requireMerchant(p accounts.Principal) error {
	if !p.IsMerchant() {
		return fmt.Errorf("kitchen: %w", apperr.ErrForbidden)
	}
	return nil
}

// ListActive returns the working queue: every line item not yet done, newest first.
func (s *Service) ListActive(ctx context.Context, p accounts.Principal) ([]orders.LineItem, error) {
	if err := requireMerchant(p); err != nil {
		return nil, err
	}
	return s.repo.ItemsByStatus(ctx, orders.ActiveStatuses)
}

// Transition overwrites the item's status. Any valid status is accepted from
// any other, so concurrent transitions on one item resolve last writer wins.
func (s *Service) Transition(ctx context.Context, p accounts.Principal, itemID int64, to orders.ItemStatus) (*orders.LineItem, error) {
	if err := requireMerchant(p); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, fmt.Errorf("status %q: %w", to, apperr.ErrInvalidStatus)
	}

	prev, err := s.repo.SetItemStatus(ctx, itemID, to)
	if err != nil {
		return nil, err
	}
	from := prev.Status

	orders.PublishEvent(ctx, s.pub, s.producer, orders.EventLineItemStatusChanged, prev.OrderID, orders.LineItemStatusChangedPayload{
		LineItemID: prev.ID,
		OrderID:    prev.OrderID,
		From:       from,
		To:         to,
	})
	metrics.LineItemTransitions.WithLabelValues(string(to)).Inc()
	log.WithFields(log.Fields{
		"line_item_id": prev.ID,
		"order_id":     prev.OrderID,
		"from":         from,
		"to":           to,
		"merchant_id":  p.ID,
	}).Info("line item status changed")

	it := *prev
	it.Status = to
	return &it, nil
}

// OrderDetail is the comanda: the order and all of its items, done included.
func (s *Service) OrderDetail(ctx context.Context, p accounts.Principal, orderID int64) (*orders.Detail, error) {
	if err := requireMerchant(p); err != nil {
		return nil, err
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.Items(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &orders.Detail{Order: *o, Items: items}, nil
}

func (s *Service) ComandaURL(orderID int64) string {
	return fmt.Sprintf("%s/kitchen/orders/%d", s.baseURL, orderID)
}

// ComandaQR renders a PNG QR code pointing at the order's comanda.
func (s *Service) ComandaQR(ctx context.Context, p accounts.Principal, orderID int64) ([]byte, error) {
	if err := requireMerchant(p); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.ComandaURL(orderID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (s *Service) Board(ctx context.Context, p accounts.Principal) (Board, error) {
	if err := requireMerchant(p); err != nil {
		return nil, err
	}
	if s.board == nil {
		return Board{}, nil
	}
	return s.board.Counts(ctx)
}
