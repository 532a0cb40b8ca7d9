package order

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cortilabs/cuisine/internal/menu"
)

// MockOrderRepo is a mock implementation of OrderRepo for testing
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order

	CreateFunc    func(ctx context.Context, o *Order) error
	GetFunc       func(ctx context.Context, id uuid.UUID) (*Order, error)
	ListFunc      func(ctx context.Context) ([]*Order, error)
	SaveFunc      func(ctx context.Context, o *Order) error
	DeleteFunc    func(ctx context.Context, id uuid.UUID) error
	DeleteAllFunc func(ctx context.Context) (int64, error)
	StatsFunc     func(ctx context.Context) (*Stats, error)
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, o *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *MockOrderRepo) List(ctx context.Context) ([]*Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		result = append(result, o)
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, o *Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return ErrNotFound
	}
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MockOrderRepo) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := int64(len(m.orders))
	m.orders = make(map[uuid.UUID]*Order)
	return count, nil
}

func (m *MockOrderRepo) Stats(ctx context.Context) (*Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &Stats{}
	for _, o := range m.orders {
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalAmount
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.TotalOrders)
	}
	return stats, nil
}

// MockMenuItemRepo is a mock implementation of menu.MenuItemRepo for testing
type MockMenuItemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*menu.MenuItem
}

func NewMockMenuItemRepo() *MockMenuItemRepo {
	return &MockMenuItemRepo{
		items: make(map[uuid.UUID]*menu.MenuItem),
	}
}

func (m *MockMenuItemRepo) Add(item *menu.MenuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

func (m *MockMenuItemRepo) Quantity(id uuid.UUID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if item, ok := m.items[id]; ok {
		return item.QuantityAvailable
	}
	return 0
}

func (m *MockMenuItemRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	m.Add(item)
	return nil
}

func (m *MockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	return item, nil
}

func (m *MockMenuItemRepo) List(ctx context.Context) ([]*menu.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*menu.MenuItem
	for _, item := range m.items {
		result = append(result, item)
	}
	return result, nil
}

func (m *MockMenuItemRepo) Save(ctx context.Context, item *menu.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return menu.ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockMenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return menu.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockMenuItemRepo) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*menu.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	if item.QuantityAvailable < qty {
		return nil, menu.ErrInsufficientStock
	}
	item.QuantityAvailable -= qty
	return item, nil
}

func (m *MockMenuItemRepo) ReleaseStock(ctx context.Context, id uuid.UUID, qty int) (*menu.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	item.QuantityAvailable += qty
	return item, nil
}

// RecordedEvent captures one Broadcast call for assertions
type RecordedEvent struct {
	Type    string
	Payload any
}

// MockNotifier records every broadcast event
type MockNotifier struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Broadcast(ctx context.Context, eventType string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, RecordedEvent{Type: eventType, Payload: payload})
}

func (m *MockNotifier) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var types []string
	for _, e := range m.Events {
		types = append(types, e.Type)
	}
	return types
}
