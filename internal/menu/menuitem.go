package menu

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CurrentMenuItemSchemaVersion = 1

// Menu item categories form a fixed enumerated set.
const (
	CategoryBurgers   = "Burgers"
	CategoryBeverages = "Beverages"
	CategoryDesserts  = "Desserts"
	CategorySides     = "Sides"
)

// Categories returns the fixed set of valid categories.
func Categories() []string {
	return []string{CategoryBurgers, CategoryBeverages, CategoryDesserts, CategorySides}
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryBurgers, CategoryBeverages, CategoryDesserts, CategorySides:
		return true
	}
	return false
}

// MenuItem represents a dish or drink with a finite, shared stock pool.
// QuantityAvailable is the only contended field: it is mutated exclusively
// through the Ledger and must never drop below zero.
type MenuItem struct {
	ID                uuid.UUID `json:"id" bson:"_id"`
	Name              string    `json:"name" bson:"name"`
	Description       string    `json:"description" bson:"description"`
	Price             float64   `json:"price" bson:"price"`
	Category          string    `json:"category" bson:"category"`
	QuantityAvailable int       `json:"quantity_available" bson:"quantity_available"`
	SchemaVersion     int       `json:"schema_version" bson:"schema_version"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// EnsureID generates a new UUID if ID is nil
func (m *MenuItem) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// GetID returns the menu item ID
func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

// SetID sets the menu item ID
func (m *MenuItem) SetID(id uuid.UUID) {
	m.ID = id
}

// ResourceType returns the resource type for URL generation
func (m *MenuItem) ResourceType() string {
	return "menu/item"
}

// BeforeCreate sets up the menu item before creation
func (m *MenuItem) BeforeCreate() {
	m.EnsureID()
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.SchemaVersion == 0 {
		m.SchemaVersion = CurrentMenuItemSchemaVersion
	}
}

// BeforeUpdate updates the timestamp
func (m *MenuItem) BeforeUpdate() {
	m.UpdatedAt = time.Now()
}

// MarshalBSON custom BSON marshaling for UUID handling
func (m *MenuItem) MarshalBSON() ([]byte, error) {
	return bson.Marshal(bson.M{
		"_id":                m.ID.String(),
		"name":               m.Name,
		"description":        m.Description,
		"price":              m.Price,
		"category":           m.Category,
		"quantity_available": m.QuantityAvailable,
		"schema_version":     m.SchemaVersion,
		"created_at":         m.CreatedAt,
		"updated_at":         m.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling
func (m *MenuItem) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	if idStr, ok := doc["_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for _id: %w", err)
		}
		m.ID = id
	}

	if v, ok := doc["name"].(string); ok {
		m.Name = v
	}
	if v, ok := doc["description"].(string); ok {
		m.Description = v
	}
	if v, ok := doc["price"].(float64); ok {
		m.Price = v
	} else if v, ok := doc["price"].(int32); ok {
		m.Price = float64(v)
	} else if v, ok := doc["price"].(int64); ok {
		m.Price = float64(v)
	}
	if v, ok := doc["category"].(string); ok {
		m.Category = v
	}

	if v, ok := doc["quantity_available"].(int32); ok {
		m.QuantityAvailable = int(v)
	} else if v, ok := doc["quantity_available"].(int64); ok {
		m.QuantityAvailable = int(v)
	} else if v, ok := doc["quantity_available"].(float64); ok {
		m.QuantityAvailable = int(v)
	}

	if v, ok := doc["schema_version"].(int32); ok {
		m.SchemaVersion = int(v)
	} else if v, ok := doc["schema_version"].(int64); ok {
		m.SchemaVersion = int(v)
	}

	// BSON datetimes decode into bson.M as primitive.DateTime, not time.Time.
	if v, ok := doc["created_at"].(primitive.DateTime); ok {
		m.CreatedAt = v.Time()
	} else if v, ok := doc["created_at"].(time.Time); ok {
		m.CreatedAt = v
	}
	if v, ok := doc["updated_at"].(primitive.DateTime); ok {
		m.UpdatedAt = v.Time()
	} else if v, ok := doc["updated_at"].(time.Time); ok {
		m.UpdatedAt = v
	}

	return nil
}
