package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cortilabs/cuisine/internal/menu"
)

// Order statuses. Pending is the initial state; completed and cancelled are
// terminal. Ready and cancelled exist as entity states reachable through the
// MarkAsReady/Cancel transitions but are not accepted by the status update
// endpoint, which only exposes pending, preparing and completed.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// UpdatableStatuses returns the statuses accepted by the status update endpoint.
func UpdatableStatuses() []string {
	return []string{StatusPending, StatusPreparing, StatusCompleted}
}

// ValidUpdateStatus reports whether s is accepted by the status update endpoint.
func ValidUpdateStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusCompleted:
		return true
	}
	return false
}

// OrderLine is one (menu item, quantity, notes) entry within an order.
// MenuItem carries the resolved record on read paths and broadcasts; it is
// never persisted with the order.
type OrderLine struct {
	MenuItemID uuid.UUID      `json:"menu_item_id" bson:"menu_item_id"`
	Quantity   int            `json:"quantity" bson:"quantity"`
	Notes      string         `json:"notes,omitempty" bson:"notes,omitempty"`
	MenuItem   *menu.MenuItem `json:"menu_item,omitempty" bson:"-"`
}

// Order represents a table's order. Lines embed menu items by id, not by
// ownership: a menu item may appear in many orders concurrently.
type Order struct {
	ID          uuid.UUID   `json:"id" bson:"_id"`
	TableNumber string      `json:"table_number" bson:"table_number"`
	Items       []OrderLine `json:"items" bson:"items"`
	Notes       string      `json:"notes" bson:"notes"`
	Status      string      `json:"status" bson:"status"`
	TotalAmount float64     `json:"total_amount" bson:"total_amount"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// NewOrder creates an order in the initial pending state.
func NewOrder() *Order {
	return &Order{
		ID:     uuid.New(),
		Status: StatusPending,
	}
}

// EnsureID generates a new UUID if ID is nil
func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
}

// GetID returns the order ID
func (o *Order) GetID() uuid.UUID {
	return o.ID
}

// SetID sets the order ID
func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

// ResourceType returns the resource type for URL generation
func (o *Order) ResourceType() string {
	return "order"
}

// BeforeCreate sets up the order before creation
func (o *Order) BeforeCreate() {
	o.EnsureID()
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusPending
	}
}

// BeforeUpdate updates the timestamp
func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// MarkAsPreparing moves the order to the preparing state.
func (o *Order) MarkAsPreparing() {
	o.Status = StatusPreparing
	o.BeforeUpdate()
}

// MarkAsReady moves the order to the ready state (kitchen-internal).
func (o *Order) MarkAsReady() {
	o.Status = StatusReady
	o.BeforeUpdate()
}

// Complete moves the order to the terminal completed state and stamps
// CompletedAt.
func (o *Order) Complete() {
	o.Status = StatusCompleted
	now := time.Now()
	o.CompletedAt = &now
	o.BeforeUpdate()
}

// Cancel moves the order to the terminal cancelled state.
func (o *Order) Cancel() {
	o.Status = StatusCancelled
	o.BeforeUpdate()
}

// SetStatus applies a status accepted by the update endpoint. Forward-only
// transitions are not enforced: a regression to an earlier status is applied
// as-is.
func (o *Order) SetStatus(status string) {
	if status == StatusCompleted {
		o.Complete()
		return
	}
	o.Status = status
	o.BeforeUpdate()
}

// MarshalBSON custom BSON marshaling for UUID handling
func (o *Order) MarshalBSON() ([]byte, error) {
	items := make([]bson.M, len(o.Items))
	for i, line := range o.Items {
		items[i] = bson.M{
			"menu_item_id": line.MenuItemID.String(),
			"quantity":     line.Quantity,
			"notes":        line.Notes,
		}
	}

	doc := bson.M{
		"_id":          o.ID.String(),
		"table_number": o.TableNumber,
		"items":        items,
		"notes":        o.Notes,
		"status":       o.Status,
		"total_amount": o.TotalAmount,
		"created_at":   o.CreatedAt,
		"updated_at":   o.UpdatedAt,
	}
	if o.CompletedAt != nil {
		doc["completed_at"] = *o.CompletedAt
	}

	return bson.Marshal(doc)
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling
func (o *Order) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	if idStr, ok := doc["_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for _id: %w", err)
		}
		o.ID = id
	}

	if v, ok := doc["table_number"].(string); ok {
		o.TableNumber = v
	}
	if v, ok := doc["notes"].(string); ok {
		o.Notes = v
	}
	if v, ok := doc["status"].(string); ok {
		o.Status = v
	}

	if v, ok := doc["total_amount"].(float64); ok {
		o.TotalAmount = v
	} else if v, ok := doc["total_amount"].(int32); ok {
		o.TotalAmount = float64(v)
	} else if v, ok := doc["total_amount"].(int64); ok {
		o.TotalAmount = float64(v)
	}

	if itemsArr, ok := doc["items"].(bson.A); ok {
		o.Items = make([]OrderLine, len(itemsArr))
		for i, it := range itemsArr {
			lineMap, ok := it.(bson.M)
			if !ok {
				continue
			}
			if idStr, ok := lineMap["menu_item_id"].(string); ok {
				id, err := uuid.Parse(idStr)
				if err != nil {
					return fmt.Errorf("invalid UUID format for menu_item_id: %w", err)
				}
				o.Items[i].MenuItemID = id
			}
			if v, ok := lineMap["quantity"].(int32); ok {
				o.Items[i].Quantity = int(v)
			} else if v, ok := lineMap["quantity"].(int64); ok {
				o.Items[i].Quantity = int(v)
			} else if v, ok := lineMap["quantity"].(float64); ok {
				o.Items[i].Quantity = int(v)
			}
			if v, ok := lineMap["notes"].(string); ok {
				o.Items[i].Notes = v
			}
		}
	}

	// BSON datetimes decode into bson.M as primitive.DateTime, not time.Time.
	if v, ok := doc["created_at"].(primitive.DateTime); ok {
		o.CreatedAt = v.Time()
	} else if v, ok := doc["created_at"].(time.Time); ok {
		o.CreatedAt = v
	}
	if v, ok := doc["updated_at"].(primitive.DateTime); ok {
		o.UpdatedAt = v.Time()
	} else if v, ok := doc["updated_at"].(time.Time); ok {
		o.UpdatedAt = v
	}
	if v, ok := doc["completed_at"].(primitive.DateTime); ok {
		completed := v.Time()
		o.CompletedAt = &completed
	} else if v, ok := doc["completed_at"].(time.Time); ok {
		o.CompletedAt = &v
	}

	return nil
}
