package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds returns all seeds for the service.
func Seeds(db *mongo.Database) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2026-08-20_demo_menu_items",
			Description: "Seed demo menu items across all categories",
			Run: func(ctx context.Context) error {
				return seedDemoMenuItems(ctx, db)
			},
		},
	}
}

func seedDemoMenuItems(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("menu_items")
	now := time.Now()
	items := []struct {
		Name        string
		Description string
		Price       float64
		Category    string
		Quantity    int
	}{
		{"Classic Cheeseburger", "Beef patty with cheddar, lettuce and tomato", 12.50, CategoryBurgers, 40},
		{"Double Bacon Burger", "Two patties, crispy bacon, smoked BBQ sauce", 15.00, CategoryBurgers, 30},
		{"Veggie Burger", "Grilled plant-based patty with avocado", 11.50, CategoryBurgers, 25},
		{"Crispy Chicken Burger", "Buttermilk fried chicken, pickles, slaw", 13.00, CategoryBurgers, 35},

		{"Craft Lemonade", "Pressed lemons with mint", 4.50, CategoryBeverages, 80},
		{"Iced Tea", "Fresh brewed black tea", 4.00, CategoryBeverages, 80},
		{"Sparkling Water", "Chilled bottled sparkling water", 3.50, CategoryBeverages, 100},
		{"Cola", "12oz glass bottle cola", 3.50, CategoryBeverages, 100},

		{"Chocolate Lava Cake", "Warm cake with vanilla ice cream", 8.00, CategoryDesserts, 20},
		{"Classic Cheesecake", "NY style cheesecake with berry compote", 7.50, CategoryDesserts, 20},
		{"Vanilla Milkshake", "Hand-spun with whipped cream", 6.50, CategoryDesserts, 30},

		{"French Fries", "Double fried with sea salt", 4.50, CategorySides, 60},
		{"Onion Rings", "Beer-battered with ranch dip", 5.50, CategorySides, 50},
		{"Side Salad", "Mixed greens with house vinaigrette", 5.00, CategorySides, 40},
	}

	for _, item := range items {
		doc := bson.M{
			"_id":                uuid.New().String(),
			"name":               item.Name,
			"description":        item.Description,
			"price":              item.Price,
			"category":           item.Category,
			"quantity_available": item.Quantity,
			"schema_version":     CurrentMenuItemSchemaVersion,
			"created_at":         now,
			"updated_at":         now,
		}

		filter := bson.M{"name": item.Name}
		update := bson.M{"$setOnInsert": doc}
		if _, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("seed menu item %s: %w", item.Name, err)
		}
	}

	return nil
}

// SeedingFunc returns a function for running seeds during service startup.
func SeedingFunc(appName string, dbFn func() *mongo.Database, logger apt.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Info("Applying database seeds...")
		db := dbFn()
		tracker := seed.NewMongoTracker(db)
		seeds := Seeds(db)
		if err := seed.Apply(ctx, tracker, seeds, appName); err != nil {
			return fmt.Errorf("apply seeds: %w", err)
		}
		logger.Info("Database seeds applied successfully")
		return nil
	}
}
