package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/postgres"
)

type Repo struct{ DB postgres.DB }

// CreateWithItems inserts the order and all of its line items in one
// transaction. On success o and items carry their generated ids.
func (r *Repo) CreateWithItems(ctx context.Context, o *Order, items []LineItem) error {
	return postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders(customer_id, status, total, delivery_address)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			o.CustomerID, string(o.Status), o.Total, o.DeliveryAddress,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range items {
			it := &items[i]
			it.OrderID = o.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO line_items(order_id, dish_id, dish_name, quantity, unit_price, status, note)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				it.OrderID, it.DishID, it.DishName, it.Quantity, it.UnitPrice, string(it.Status), it.Note,
			).Scan(&it.ID)
			if err != nil {
				return fmt.Errorf("insert line item for dish %d: %w", it.DishID, err)
			}
		}
		return nil
	})
}

func (r *Repo) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, customer_id, status, total, delivery_address, created_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.CustomerID, &status, &o.Total, &o.DeliveryAddress, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, customer_id, status, total, delivery_address, created_at
		FROM orders
		WHERE customer_id=$1
		ORDER BY created_at DESC, id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &status, &o.Total, &o.DeliveryAddress, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

const itemColumns = `id, order_id, dish_id, dish_name, quantity, unit_price, status, note`

func (r *Repo) Items(ctx context.Context, orderID int64) ([]LineItem, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+itemColumns+` FROM line_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// ItemsByStatus returns line items in any of the given states, newest first.
func (r *Repo) ItemsByStatus(ctx context.Context, statuses []ItemStatus) ([]LineItem, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	rows, err := r.DB.Query(ctx, `SELECT `+itemColumns+` FROM line_items WHERE status = ANY($1) ORDER BY id DESC`, names)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// SetItemStatus overwrites the item's status and returns the item as it was
// before the update.
func (r *Repo) SetItemStatus(ctx context.Context, id int64, status ItemStatus) (*LineItem, error) {
	var it LineItem
	var prev string
	err := r.DB.QueryRow(ctx, `
		UPDATE line_items li SET status=$2
		FROM (SELECT id, status FROM line_items WHERE id=$1 FOR UPDATE) old
		WHERE li.id = old.id
		RETURNING li.id, li.order_id, li.dish_id, li.dish_name, li.quantity, li.unit_price, old.status, li.note`,
		id, string(status)).
		Scan(&it.ID, &it.OrderID, &it.DishID, &it.DishName, &it.Quantity, &it.UnitPrice, &prev, &it.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("line item %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	it.Status = ItemStatus(prev)
	return &it, nil
}

func scanItems(rows pgx.Rows) ([]LineItem, error) {
	defer rows.Close()

	var out []LineItem
	for rows.Next() {
		var it LineItem
		var status string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.DishID, &it.DishName, &it.Quantity, &it.UnitPrice, &status, &it.Note); err != nil {
			return nil, err
		}
		it.Status = ItemStatus(status)
		out = append(out, it)
	}
	return out, rows.Err()
}
