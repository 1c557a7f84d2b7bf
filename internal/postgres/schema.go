package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		address       TEXT NOT NULL DEFAULT '',
		phone         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS merchants (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		address       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS dishes (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		price       NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		category    TEXT NOT NULL DEFAULT '',
		size        TEXT NOT NULL DEFAULT '',
		image_url   TEXT NOT NULL DEFAULT '',
		available   BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               BIGSERIAL PRIMARY KEY,
		customer_id      BIGINT NOT NULL REFERENCES customers(id),
		status           TEXT NOT NULL,
		total            NUMERIC(12,2) NOT NULL,
		delivery_address TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// dish_id carries no foreign key: dishes can be deleted while historical
	// line items keep their snapshot.
	`CREATE TABLE IF NOT EXISTS line_items (
		id         BIGSERIAL PRIMARY KEY,
		order_id   BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		dish_id    BIGINT NOT NULL,
		dish_name  TEXT NOT NULL DEFAULT '',
		quantity   INT NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(10,2) NOT NULL,
		status     TEXT NOT NULL,
		note       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_created_idx ON orders (customer_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS line_items_order_idx ON line_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS line_items_status_idx ON line_items (status)`,
}

// Migrate creates the storefront tables when they do not exist yet.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
