package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cortilabs/cuisine/internal/order"
)

// OrderRepo implements order.OrderRepo using MongoDB.
type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection("orders"),
	}
}

// EnsureIndexes creates the indexes used by the read paths.
func (r *OrderRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create created_at index: %w", err)
	}
	return nil
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&o)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &o, nil
}

// List returns all orders sorted by creation time descending.
func (r *OrderRepo) List(ctx context.Context) ([]*order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.Order
	for cursor.Next(ctx) {
		var o order.Order
		if err := cursor.Decode(&o); err != nil {
			return nil, fmt.Errorf("cannot decode order: %w", err)
		}
		result = append(result, &o)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return result, nil
}

func (r *OrderRepo) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	filter := bson.M{"_id": o.ID.String()}
	opts := options.Replace().SetUpsert(false)

	result, err := r.collection.ReplaceOne(ctx, filter, o, opts)
	if err != nil {
		return fmt.Errorf("cannot save order: %w", err)
	}

	if result.MatchedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("cannot delete order: %w", err)
	}

	if result.DeletedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}

// DeleteAll removes every order and returns the deleted count.
func (r *OrderRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot delete orders: %w", err)
	}
	return result.DeletedCount, nil
}

// Stats aggregates count, revenue sum and average order value over all
// orders. An empty collection yields all-zero stats.
func (r *OrderRepo) Stats(ctx context.Context) (*order.Stats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_revenue", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "average_order_value", Value: bson.D{{Key: "$avg", Value: "$total_amount"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("cannot aggregate order stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []order.Stats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("cannot decode order stats: %w", err)
	}

	if len(results) == 0 {
		return &order.Stats{}, nil
	}
	return &results[0], nil
}
