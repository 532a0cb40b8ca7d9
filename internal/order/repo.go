package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced order does not exist.
var ErrNotFound = errors.New("order not found")

// Stats aggregates over all persisted orders. Zero orders yield all-zero
// stats rather than an error.
type Stats struct {
	TotalOrders       int     `json:"totalOrders" bson:"total_orders"`
	TotalRevenue      float64 `json:"totalRevenue" bson:"total_revenue"`
	AverageOrderValue float64 `json:"averageOrderValue" bson:"average_order_value"`
}

// OrderRepo defines the repository interface for orders.
// List returns orders sorted by creation time descending.
type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}
