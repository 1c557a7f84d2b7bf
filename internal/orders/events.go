package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkax "github.com/pratofeito/marmita-orders/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventOrderPlaced           = "OrderPlaced"
	EventLineItemStatusChanged = "LineItemStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type PlacedItem struct {
	LineItemID int64      `json:"line_item_id"`
	DishID     int64      `json:"dish_id"`
	DishName   string     `json:"dish_name"`
	Quantity   int        `json:"quantity"`
	Status     ItemStatus `json:"status"`
}

type OrderPlacedPayload struct {
	OrderID    int64        `json:"order_id"`
	CustomerID int64        `json:"customer_id"`
	Total      string       `json:"total"`
	Items      []PlacedItem `json:"items"`
}

type LineItemStatusChangedPayload struct {
	LineItemID int64      `json:"line_item_id"`
	OrderID    int64      `json:"order_id"`
	From       ItemStatus `json:"from"`
	To         ItemStatus `json:"to"`
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// PublishEvent wraps payload in a v1 envelope and hands it to p, keyed by order id.
func PublishEvent(ctx context.Context, p Publisher, producer, eventType string, orderID int64, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: string(PartitionKey(orderID)),
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
