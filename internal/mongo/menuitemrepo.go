package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cortilabs/cuisine/internal/menu"
)

// MenuItemRepo implements menu.MenuItemRepo using MongoDB.
type MenuItemRepo struct {
	collection *mongo.Collection
}

func NewMenuItemRepo(db *mongo.Database) *MenuItemRepo {
	return &MenuItemRepo{
		collection: db.Collection("menu_items"),
	}
}

// EnsureIndexes creates the indexes used by the read paths.
func (r *MenuItemRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create category index: %w", err)
	}
	return nil
}

func (r *MenuItemRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("cannot create menu item: %w", err)
	}
	return nil
}

func (r *MenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	var item menu.MenuItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get menu item: %w", err)
	}
	return &item, nil
}

func (r *MenuItemRepo) List(ctx context.Context) ([]*menu.MenuItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*menu.MenuItem
	for cursor.Next(ctx) {
		var item menu.MenuItem
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("cannot decode menu item: %w", err)
		}
		items = append(items, &item)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return items, nil
}

func (r *MenuItemRepo) Save(ctx context.Context, item *menu.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}

	filter := bson.M{"_id": item.GetID().String()}
	opts := options.Replace().SetUpsert(false)

	result, err := r.collection.ReplaceOne(ctx, filter, item, opts)
	if err != nil {
		return fmt.Errorf("cannot save menu item: %w", err)
	}

	if result.MatchedCount == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func (r *MenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("cannot delete menu item: %w", err)
	}

	if result.DeletedCount == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// ReserveStock applies a single conditional decrement: the update only
// matches while quantity_available >= qty, so concurrent reservations can
// never drive the stock below zero. On a miss, a follow-up lookup
// distinguishes a missing item from insufficient stock.
func (r *MenuItemRepo) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*menu.MenuItem, error) {
	filter := bson.M{
		"_id":                id.String(),
		"quantity_available": bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"quantity_available": -qty},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item menu.MenuItem
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if lookupErr := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Err(); lookupErr == mongo.ErrNoDocuments {
				return nil, menu.ErrNotFound
			}
			return nil, menu.ErrInsufficientStock
		}
		return nil, fmt.Errorf("cannot reserve stock: %w", err)
	}
	return &item, nil
}

// ReleaseStock increments the available quantity unconditionally; no upper
// bound is enforced.
func (r *MenuItemRepo) ReleaseStock(ctx context.Context, id uuid.UUID, qty int) (*menu.MenuItem, error) {
	update := bson.M{
		"$inc": bson.M{"quantity_available": qty},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item menu.MenuItem
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("cannot release stock: %w", err)
	}
	return &item, nil
}
