package orders

// Count reports how many orders and line items are stored.
func (m *MemoryRepo) Count() (orders, items int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders), len(m.items)
}
