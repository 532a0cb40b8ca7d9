package menu

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cortilabs/cuisine/internal/events"
)

// MockMenuItemRepo is a mock implementation of MenuItemRepo for testing
type MockMenuItemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*MenuItem

	CreateFunc       func(ctx context.Context, item *MenuItem) error
	GetFunc          func(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListFunc         func(ctx context.Context) ([]*MenuItem, error)
	SaveFunc         func(ctx context.Context, item *MenuItem) error
	DeleteFunc       func(ctx context.Context, id uuid.UUID) error
	ReserveStockFunc func(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error)
	ReleaseStockFunc func(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error)
}

func NewMockMenuItemRepo() *MockMenuItemRepo {
	return &MockMenuItemRepo{
		items: make(map[uuid.UUID]*MenuItem),
	}
}

func (m *MockMenuItemRepo) Create(ctx context.Context, item *MenuItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

func (m *MockMenuItemRepo) List(ctx context.Context) ([]*MenuItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*MenuItem
	for _, item := range m.items {
		result = append(result, item)
	}
	return result, nil
}

func (m *MockMenuItemRepo) Save(ctx context.Context, item *MenuItem) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockMenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockMenuItemRepo) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error) {
	if m.ReserveStockFunc != nil {
		return m.ReserveStockFunc(ctx, id, qty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if item.QuantityAvailable < qty {
		return nil, ErrInsufficientStock
	}
	item.QuantityAvailable -= qty
	return item, nil
}

func (m *MockMenuItemRepo) ReleaseStock(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error) {
	if m.ReleaseStockFunc != nil {
		return m.ReleaseStockFunc(ctx, id, qty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
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

var _ events.Notifier = (*MockNotifier)(nil)
