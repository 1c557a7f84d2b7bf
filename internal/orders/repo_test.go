package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() (*Order, []LineItem) {
	o := &Order{CustomerID: 1, Status: StatusConfirmed, Total: decimal.RequireFromString("74.30"), DeliveryAddress: "Rua A, 1"}
	items := []LineItem{
		{DishID: 1, DishName: "Frango", Quantity: 2, UnitPrice: decimal.RequireFromString("25.90"), Status: ItemSentToKitchen},
		{DishID: 2, DishName: "Vegetariana", Quantity: 1, UnitPrice: decimal.RequireFromString("22.50"), Status: ItemSentToKitchen},
	}
	return o, items
}

func TestRepo_CreateWithItemsCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), "confirmed", pgxmock.AnyArg(), "Rua A, 1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs(int64(7), int64(1), "Frango", 2, pgxmock.AnyArg(), "sent_to_kitchen", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(70)))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs(int64(7), int64(2), "Vegetariana", 1, pgxmock.AnyArg(), "sent_to_kitchen", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(71)))
	mock.ExpectCommit()

	o, items := sampleOrder()
	repo := &Repo{DB: mock}
	require.NoError(t, repo.CreateWithItems(context.Background(), o, items))

	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, int64(70), items[0].ID)
	assert.Equal(t, int64(71), items[1].ID)
	assert.Equal(t, int64(7), items[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CreateWithItemsRollsBackOnLineItemFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("check constraint violated")
	mock.ExpectBegin()
	arg := pgxmock.AnyArg()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(arg, arg, arg, arg).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs(int64(7), int64(1), "Frango", 2, arg, "sent_to_kitchen", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(70)))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs(int64(7), int64(2), arg, arg, arg, arg, arg).
		WillReturnError(boom)
	mock.ExpectRollback()

	o, items := sampleOrder()
	repo := &Repo{DB: mock}
	err = repo.CreateWithItems(context.Background(), o, items)

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM orders WHERE id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err = (&Repo{DB: mock}).Get(context.Background(), 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepo_ItemsByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "order_id", "dish_id", "dish_name", "quantity", "unit_price", "status", "note"}
	mock.ExpectQuery("FROM line_items WHERE status = ANY").
		WithArgs([]string{"sent_to_kitchen", "in_progress", "out_for_delivery"}).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(5), int64(2), int64(1), "Frango", 1, decimal.RequireFromString("25.90"), "in_progress", "").
			AddRow(int64(3), int64(1), int64(2), "Vegana", 2, decimal.RequireFromString("24.90"), "sent_to_kitchen", "sem sal"))

	items, err := (&Repo{DB: mock}).ItemsByStatus(context.Background(), ActiveStatuses)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ItemInProgress, items[0].Status)
	assert.Equal(t, "sem sal", items[1].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_SetItemStatusReturnsPrevious(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "order_id", "dish_id", "dish_name", "quantity", "unit_price", "status", "note"}
	mock.ExpectQuery("UPDATE line_items").
		WithArgs(int64(5), "done").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(5), int64(2), int64(1), "Frango", 1, decimal.RequireFromString("25.90"), "out_for_delivery", ""))
	mock.ExpectQuery("UPDATE line_items").
		WithArgs(int64(6), "done").
		WillReturnError(pgx.ErrNoRows)

	repo := &Repo{DB: mock}
	prev, err := repo.SetItemStatus(context.Background(), 5, ItemDone)
	require.NoError(t, err)
	assert.Equal(t, ItemOutForDelivery, prev.Status)
	assert.Equal(t, int64(2), prev.OrderID)

	_, err = repo.SetItemStatus(context.Background(), 6, ItemDone)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
