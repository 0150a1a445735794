package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	UsersCollection    = "users"
)

func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Products: NewMongoProductRepository(db.Collection(ProductsCollection)),
		Orders:   NewMongoOrderRepository(db.Collection(OrdersCollection)),
		Users:    NewMongoUserRepository(db.Collection(UsersCollection)),
		Close:    func() {},
	}
}

// EnsureMongoIndexes is idempotent; the driver skips indexes that already exist with the same keys and options.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
			{
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$type": "string"}}),
			},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "addedBy.email", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "slug", Value: 1}}},
		},
	}

	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
		slog.Info("mongo indexes ensured", "collection", name, "count", len(specs))
	}
	return nil
}
