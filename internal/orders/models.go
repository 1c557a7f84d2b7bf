package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	Status          Status          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LineItem keeps its own copy of the dish name and unit price so later menu
// edits do not change what was ordered.
type LineItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	DishID    int64           `json:"dish_id"`
	DishName  string          `json:"dish_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Status    ItemStatus      `json:"status"`
	Note      string          `json:"note,omitempty"`
}

type Detail struct {
	Order Order      `json:"order"`
	Items []LineItem `json:"items"`
}

type PlaceOrderInput struct {
	Address        string
	Note           string
	IdempotencyKey string
}
