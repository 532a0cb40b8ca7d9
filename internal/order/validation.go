package order

import (
	"strings"

	"github.com/google/uuid"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OrderLineRequest is one requested line within a create/update payload.
type OrderLineRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
}

// CreateOrderRequest is the payload for creating an order. TotalAmount is
// caller-supplied and stored as-is; it is not recomputed from line prices.
type CreateOrderRequest struct {
	TableNumber string             `json:"table_number"`
	Items       []OrderLineRequest `json:"items"`
	Notes       string             `json:"notes"`
	TotalAmount float64            `json:"total_amount"`
}

// UpdateOrderRequest is a partial patch. Nil fields are left untouched.
// Replacing Items swaps the line list wholesale without recomputing stock
// reservations.
type UpdateOrderRequest struct {
	TableNumber *string             `json:"table_number"`
	Notes       *string             `json:"notes"`
	TotalAmount *float64            `json:"total_amount"`
	Status      *string             `json:"status"`
	Items       *[]OrderLineRequest `json:"items"`
}

// UpdateStatusRequest carries the target status for the status endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ValidateCreateOrder validates an order creation payload. Stock and
// existence checks happen later, line by line, in the reservation loop.
func ValidateCreateOrder(req *CreateOrderRequest) []ValidationError {
	var errors []ValidationError

	if len(req.Items) == 0 {
		errors = append(errors, ValidationError{
			Field:   "items",
			Message: "order must contain at least one item",
		})
		return errors
	}

	for _, line := range req.Items {
		if line.MenuItemID == uuid.Nil {
			errors = append(errors, ValidationError{
				Field:   "items",
				Message: "one or more items are missing a menu item reference",
			})
			break
		}
	}

	return errors
}

// ValidateStatus validates a target status for the status update endpoint.
func ValidateStatus(status string) []ValidationError {
	if ValidUpdateStatus(status) {
		return nil
	}
	return []ValidationError{{
		Field:   "status",
		Message: "status must be one of: " + strings.Join(UpdatableStatuses(), ", "),
	}}
}
