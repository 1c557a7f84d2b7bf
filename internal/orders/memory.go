package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pratofeito/marmita-orders/internal/apperr"
)

// MemoryRepo keeps orders and line items in process memory. It mirrors Repo
// closely enough to back service tests.
type MemoryRepo struct {
	mu        sync.RWMutex
	nextOrder int64
	nextItem  int64
	orders    map[int64]Order
	items     map[int64]LineItem
	now       func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextOrder: 1,
		nextItem:  1,
		orders:    make(map[int64]Order),
		items:     make(map[int64]LineItem),
		now:       time.Now,
	}
}

var _ Repository = (*MemoryRepo)(nil)

func (m *MemoryRepo) CreateWithItems(_ context.Context, o *Order, items []LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.ID = m.nextOrder
	m.nextOrder++
	o.CreatedAt = m.now().UTC()
	m.orders[o.ID] = *o

	for i := range items {
		items[i].ID = m.nextItem
		items[i].OrderID = o.ID
		m.nextItem++
		m.items[items[i].ID] = items[i]
	}
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id int64) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	return &o, nil
}

func (m *MemoryRepo) ListByCustomer(_ context.Context, customerID int64) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryRepo) Items(_ context.Context, orderID int64) ([]LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []LineItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepo) ItemsByStatus(_ context.Context, statuses []ItemStatus) ([]LineItem, error) {
	want := make(map[ItemStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []LineItem
	for _, it := range m.items {
		if want[it.Status] {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryRepo) SetItemStatus(_ context.Context, id int64, status ItemStatus) (*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("line item %d: %w", id, apperr.ErrNotFound)
	}
	prev := it
	it.Status = status
	m.items[id] = it
	return &prev, nil
}
