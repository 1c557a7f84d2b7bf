package redisx

import "time"

const (
	// Session hash: session:{session_id} -> {kind, account_id}
	KeySession = "session:%s"

	// Cart entries (JSON) scoped to a session: session:{session_id}:cart
	KeySessionCart = "session:%s:cart"

	// Idempotent order placement: idem:order:place:{customer_id}:{key} -> order_id
	KeyIdemOrderPlace = "idem:order:place:%d:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Kitchen board hash: status -> number of line items
	KeyKitchenBoard = "kitchen:board"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
