package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// ErrInsufficientStock is returned by ReserveStock when the requested quantity
// exceeds the available stock. The Ledger wraps it into an
// InsufficientStockError identifying the item by name.
var ErrInsufficientStock = errors.New("insufficient stock")

// MenuItemRepo defines the repository interface for menu items.
//
// ReserveStock must be a single conditional decrement: it only applies when
// quantity_available >= qty, so concurrent reservations can never drive the
// stock below zero. ReleaseStock increments unconditionally (no upper bound).
type MenuItemRepo interface {
	Create(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	List(ctx context.Context) ([]*MenuItem, error)
	Save(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error)
	ReleaseStock(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error)
}
