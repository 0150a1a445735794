package repositories

import (
	"context"
	"errors"

	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(coll *mongo.Collection) *MongoOrderRepository {
	return &MongoOrderRepository{coll: coll}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.Email = normalizeEmail(order.Email)
	_, err := r.coll.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoOrderRepository) findOne(ctx context.Context, query bson.M) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	err := r.coll.FindOne(ctx, query).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoOrderRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	if userID == "" || key == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"userId": userID, "idempotencyKey": key})
}

func (r *MongoOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	page := filter.Page.Normalize()
	query := orderQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *MongoOrderRepository) update(ctx context.Context, query bson.M, fields models.Fields) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx, query, setFields(fields),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, bson.M{"_id": oid}, fields)
}

func (r *MongoOrderRepository) UpdateIfStatus(ctx context.Context, id, from string, fields models.Fields) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := r.update(ctx, bson.M{"_id": oid, "orderStatus": from}, fields)
	if errors.Is(err, ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrConflict
	}
	return order, err
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) Stats(ctx context.Context, email string) (*models.OrderStats, error) {
	match := bson.M{}
	if email != "" {
		match["email"] = normalizeEmail(email)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$orderStatus",
			"count": bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$paymentStatus", models.PaymentStatusPaid}}, "$total", 0,
			}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status  string  `bson:"_id"`
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &models.OrderStats{ByStatus: map[string]int64{}}
	for _, row := range rows {
		stats.Total += row.Count
		stats.Revenue += row.Revenue
		stats.ByStatus[row.Status] = row.Count
	}
	return stats, nil
}
