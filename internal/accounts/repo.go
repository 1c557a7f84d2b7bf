package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/postgres"
)

type Repo struct{ DB postgres.DB }

const uniqueViolation = "23505"

func (r *Repo) CustomerExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE username=$1 OR email=$2)`,
		username, email).Scan(&exists)
	return exists, err
}

func (r *Repo) InsertCustomer(ctx context.Context, c *Customer) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO customers(username, email, password_hash, address, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		c.Username, c.Email, c.PasswordHash, c.Address, c.Phone,
	).Scan(&c.ID, &c.CreatedAt)
	return mapInsertErr(err)
}

func (r *Repo) CustomerByUsername(ctx context.Context, username string) (*Customer, error) {
	return r.scanCustomer(r.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, address, phone, created_at
		FROM customers WHERE username=$1`, username))
}

func (r *Repo) CustomerByID(ctx context.Context, id int64) (*Customer, error) {
	return r.scanCustomer(r.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, address, phone, created_at
		FROM customers WHERE id=$1`, id))
}

func (r *Repo) UpdateCustomerProfile(ctx context.Context, id int64, in ProfileInput) error {
	ct, err := r.DB.Exec(ctx, `UPDATE customers SET address=$2, phone=$3 WHERE id=$1`, id, in.Address, in.Phone)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("customer %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) MerchantExists(ctx context.Context, name, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM merchants WHERE name=$1 OR email=$2)`,
		name, email).Scan(&exists)
	return exists, err
}

func (r *Repo) InsertMerchant(ctx context.Context, m *Merchant) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO merchants(name, email, password_hash, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		m.Name, m.Email, m.PasswordHash, m.Address,
	).Scan(&m.ID)
	return mapInsertErr(err)
}

func (r *Repo) MerchantByName(ctx context.Context, name string) (*Merchant, error) {
	return r.scanMerchant(r.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash, address
		FROM merchants WHERE name=$1`, name))
}

func (r *Repo) MerchantByID(ctx context.Context, id int64) (*Merchant, error) {
	return r.scanMerchant(r.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash, address
		FROM merchants WHERE id=$1`, id))
}

func (r *Repo) scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Username, &c.Email, &c.PasswordHash, &c.Address, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) scanMerchant(row pgx.Row) (*Merchant, error) {
	var m Merchant
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// a concurrent registration can slip past the EXISTS check; the unique
// index still rejects it.
func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.ErrDuplicateAccount
	}
	return err
}
