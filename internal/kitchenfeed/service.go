package kitchenfeed

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/pratofeito/marmita-orders/internal/kafka"
	"github.com/pratofeito/marmita-orders/internal/kitchen"
	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/pratofeito/marmita-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// BoardWriter moves line item counts between statuses.
type BoardWriter interface {
	Move(ctx context.Context, from, to orders.ItemStatus, n int64) error
}

var _ BoardWriter = (*kitchen.RedisBoard)(nil)

// Service keeps the kitchen board in step with order events. Each event is
// applied at most once per event id.
type Service struct {
	Board       BoardWriter
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	env, ok, err := s.claim(ctx, m, orders.EventOrderPlaced)
	if err != nil || !ok {
		return err
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		s.release(ctx, env)
		return err
	}
	if len(p.Items) == 0 {
		return nil
	}
	if err := s.Board.Move(ctx, "", orders.ItemSentToKitchen, int64(len(p.Items))); err != nil {
		s.release(ctx, env)
		return fmt.Errorf("board: %w", err)
	}
	log.WithFields(log.Fields{"order_id": p.OrderID, "items": len(p.Items), "trace_id": env.TraceID}).Info("order on kitchen board")
	return nil
}

func (s *Service) HandleLineItemStatusChanged(ctx context.Context, m kafkago.Message) error {
	env, ok, err := s.claim(ctx, m, orders.EventLineItemStatusChanged)
	if err != nil || !ok {
		return err
	}

	p, err := kafkax.UnwrapPayload[orders.LineItemStatusChangedPayload](env.Payload)
	if err != nil {
		s.release(ctx, env)
		return err
	}
	if p.From == p.To || !p.To.Valid() {
		return nil
	}
	from := p.From
	if !from.Valid() {
		from = ""
	}
	if err := s.Board.Move(ctx, from, p.To, 1); err != nil {
		s.release(ctx, env)
		return fmt.Errorf("board: %w", err)
	}
	log.WithFields(log.Fields{"line_item_id": p.LineItemID, "from": p.From, "to": p.To, "trace_id": env.TraceID}).Debug("kitchen board updated")
	return nil
}

// claim decodes the envelope and reserves its event id. ok is false for
// events of another type and for ids that were already applied.
func (s *Service) claim(ctx context.Context, m kafkago.Message, eventType string) (orders.Envelope, bool, error) {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return env, false, err
	}
	if env.EventType != eventType {
		return env, false, nil
	}

	first, err := s.Redis.SetNX(ctx, s.dedupKey(env), "1", redisx.TTLDedup).Result()
	if err != nil {
		return env, false, err
	}
	if !first {
		log.WithFields(log.Fields{"event_id": env.EventID, "event_type": env.EventType}).Debug("duplicate event skipped")
	}
	return env, first, nil
}

func (s *Service) release(ctx context.Context, env orders.Envelope) {
	_ = s.Redis.Del(ctx, s.dedupKey(env)).Err()
}

func (s *Service) dedupKey(env orders.Envelope) string {
	return fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
}
