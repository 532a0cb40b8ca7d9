package menu

import (
	"math"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateMenuItem validates a menu item before creation or update.
// Errors are keyed by field name so UIs can render field-level messages.
func ValidateMenuItem(item *MenuItem) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(item.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if math.IsNaN(item.Price) || item.Price < 0 {
		errors = append(errors, ValidationError{
			Field:   "price",
			Message: "price must be a non-negative number",
		})
	}

	if item.Category == "" {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: "category is required",
		})
	} else if !ValidCategory(item.Category) {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: "category must be one of: " + strings.Join(Categories(), ", "),
		})
	}

	if item.QuantityAvailable < 0 {
		errors = append(errors, ValidationError{
			Field:   "quantityAvailable",
			Message: "quantity must be a non-negative integer",
		})
	}

	return errors
}
