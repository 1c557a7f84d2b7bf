package cart

import (
	"fmt"

	"github.com/pratofeito/marmita-orders/internal/apperr"
	"github.com/pratofeito/marmita-orders/internal/catalog"
	"github.com/shopspring/decimal"
)

// Entry is one dish selection. Name, image and unit price are copied from
// the dish when it is first added.
type Entry struct {
	DishID    int64           `json:"dish_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (e Entry) Subtotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart holds at most one entry per dish id.
type Cart struct {
	Entries []Entry `json:"entries"`
}

func (c *Cart) Len() int { return len(c.Entries) }

func (c *Cart) IsEmpty() bool { return len(c.Entries) == 0 }

// Add puts qty units of d in the cart, merging with an existing entry for
// the same dish.
func (c *Cart) Add(d catalog.Dish, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, apperr.ErrInvalidQuantity)
	}
	if !d.Available {
		return fmt.Errorf("dish %d: %w", d.ID, apperr.ErrUnavailable)
	}
	for i := range c.Entries {
		if c.Entries[i].DishID == d.ID {
			c.Entries[i].Quantity += qty
			return nil
		}
	}
	c.Entries = append(c.Entries, Entry{
		DishID:    d.ID,
		Name:      d.Name,
		ImageURL:  d.ImageURL,
		UnitPrice: d.Price,
		Quantity:  qty,
	})
	return nil
}

func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Entries) {
		return fmt.Errorf("index %d: %w", index, apperr.ErrIndexOutOfRange)
	}
	c.Entries = append(c.Entries[:index], c.Entries[index+1:]...)
	return nil
}

// UpdateQuantities applies qs by position in a single pass: a quantity <= 0
// drops the entry, anything else replaces it. Entries past len(qs) are kept
// as they are and surplus values are ignored.
func (c *Cart) UpdateQuantities(qs []int) {
	kept := make([]Entry, 0, len(c.Entries))
	for i, e := range c.Entries {
		if i < len(qs) {
			if qs[i] <= 0 {
				continue
			}
			e.Quantity = qs[i]
		}
		kept = append(kept, e)
	}
	c.Entries = kept
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

func (c *Cart) Clear() { c.Entries = nil }
