package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/postgres"
)

type Repo struct{ DB postgres.DB }

const dishColumns = `id, name, description, price, category, size, image_url, available`

func (r *Repo) Insert(ctx context.Context, d *Dish) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO dishes(name, description, price, category, size, image_url, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		d.Name, d.Description, d.Price, d.Category, d.Size, d.ImageURL, d.Available,
	).Scan(&d.ID)
}

func (r *Repo) Update(ctx context.Context, d *Dish) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE dishes
		SET name=$2, description=$3, price=$4, category=$5, size=$6, image_url=$7, available=$8
		WHERE id=$1`,
		d.ID, d.Name, d.Description, d.Price, d.Category, d.Size, d.ImageURL, d.Available)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("dish %d: %w", d.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) SetAvailability(ctx context.Context, id int64, available bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE dishes SET available=$2 WHERE id=$1`, id, available)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("dish %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM dishes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("dish %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Dish, error) {
	var d Dish
	err := r.DB.QueryRow(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id=$1`, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Category, &d.Size, &d.ImageURL, &d.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dish %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns dishes ordered by id. Empty category means any category;
// limit <= 0 means no limit.
func (r *Repo) List(ctx context.Context, f Filter) ([]Dish, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+dishColumns+`
		FROM dishes
		WHERE ($1 = FALSE OR available)
		  AND ($2 = '' OR category = $2)
		ORDER BY id
		LIMIT NULLIF($3, 0)`,
		f.OnlyAvailable, f.Category, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dish
	for rows.Next() {
		var d Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Category, &d.Size, &d.ImageURL, &d.Available); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT category FROM dishes WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM dishes`).Scan(&n)
	return n, err
}
