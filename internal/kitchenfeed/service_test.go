package kitchenfeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	kafkax "github.com/pratofeito/marmita-orders/internal/kafka"
	"github.com/pratofeito/marmita-orders/internal/kitchen"
	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Service{Board: kitchen.NewRedisBoard(rdb), Redis: rdb, ServiceName: "kitchenfeed"}, mr
}

func message(t *testing.T, eventID, eventType string, payload any) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func boardCount(t *testing.T, mr *miniredis.Miniredis, st orders.ItemStatus) string {
	t.Helper()
	return mr.HGet("kitchen:board", string(st))
}

func TestHandleOrderPlaced_AppliedOnce(t *testing.T) {
	ctx := context.Background()
	svc, mr := setup(t)

	m := message(t, uuid.NewString(), orders.EventOrderPlaced, orders.OrderPlacedPayload{
		OrderID: 1,
		Items:   []orders.PlacedItem{{LineItemID: 1}, {LineItemID: 2}},
	})
	require.NoError(t, svc.HandleOrderPlaced(ctx, m))
	require.NoError(t, svc.HandleOrderPlaced(ctx, m))

	assert.Equal(t, "2", boardCount(t, mr, orders.ItemSentToKitchen))
	assert.True(t, mr.Exists("dedup:kitchenfeed:"+mustEventID(t, m)))
}

func mustEventID(t *testing.T, m kafkago.Message) string {
	t.Helper()
	env, err := kafkax.UnwrapPayload[orders.Envelope](m.Value)
	require.NoError(t, err)
	return env.EventID
}

func TestHandleLineItemStatusChanged_MovesCounts(t *testing.T) {
	ctx := context.Background()
	svc, mr := setup(t)

	placed := message(t, uuid.NewString(), orders.EventOrderPlaced, orders.OrderPlacedPayload{
		OrderID: 1,
		Items:   []orders.PlacedItem{{LineItemID: 1}, {LineItemID: 2}, {LineItemID: 3}},
	})
	require.NoError(t, svc.HandleOrderPlaced(ctx, placed))

	changed := message(t, uuid.NewString(), orders.EventLineItemStatusChanged, orders.LineItemStatusChangedPayload{
		LineItemID: 2, OrderID: 1, From: orders.ItemSentToKitchen, To: orders.ItemDone,
	})
	require.NoError(t, svc.HandleLineItemStatusChanged(ctx, changed))
	require.NoError(t, svc.HandleLineItemStatusChanged(ctx, changed))

	assert.Equal(t, "2", boardCount(t, mr, orders.ItemSentToKitchen))
	assert.Equal(t, "1", boardCount(t, mr, orders.ItemDone))
}

func TestHandlers_IgnoreOtherEvents(t *testing.T) {
	ctx := context.Background()
	svc, mr := setup(t)

	m := message(t, uuid.NewString(), orders.EventLineItemStatusChanged, orders.LineItemStatusChangedPayload{
		From: orders.ItemSentToKitchen, To: orders.ItemDone,
	})
	require.NoError(t, svc.HandleOrderPlaced(ctx, m))
	assert.False(t, mr.Exists("kitchen:board"))

	assert.Error(t, svc.HandleOrderPlaced(ctx, kafkago.Message{Value: []byte("{")}))
}

func TestHandleOrderPlaced_ReleasesClaimOnFailure(t *testing.T) {
	ctx := context.Background()
	svc, mr := setup(t)

	m := message(t, uuid.NewString(), orders.EventOrderPlaced, orders.OrderPlacedPayload{
		OrderID: 1,
		Items:   []orders.PlacedItem{{LineItemID: 1}},
	})

	// a string where a hash is expected makes HINCRBY fail
	require.NoError(t, mr.Set("kitchen:board", "oops"))
	assert.Error(t, svc.HandleOrderPlaced(ctx, m))
	assert.False(t, mr.Exists("dedup:kitchenfeed:"+mustEventID(t, m)))

	mr.Del("kitchen:board")
	require.NoError(t, svc.HandleOrderPlaced(ctx, m))
	assert.Equal(t, "1", boardCount(t, mr, orders.ItemSentToKitchen))
}
