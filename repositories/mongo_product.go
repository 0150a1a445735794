package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll}
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, product)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var product models.Product
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	page := filter.Page.Normalize()
	query := productQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(productSort(filter)).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var product models.Product
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, setFields(fields),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
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

func (r *MongoProductRepository) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	return r.categories(ctx, bson.M{})
}

func (r *MongoProductRepository) categories(ctx context.Context, match bson.M) ([]models.CategoryCount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.CategoryCount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// stockDelta moves top-level stock and keeps stockStatus in step, inside one pipeline update.
func stockDelta(delta int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"stock":     bson.M{"$add": bson.A{"$stock", delta}},
			"updatedAt": time.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"stockStatus": bson.M{"$cond": bson.A{
				bson.M{"$lte": bson.A{"$stock", 0}}, models.StockStatusOut, models.StockStatusIn,
			}},
		}}},
	}
}

func (r *MongoProductRepository) takeLine(ctx context.Context, line models.StockLine) (bool, error) {
	var (
		res *mongo.UpdateResult
		err error
	)
	if line.Unit != "" {
		res, err = r.coll.UpdateOne(ctx,
			bson.M{
				"_id":      line.ProductID,
				"variants": bson.M{"$elemMatch": bson.M{"unit": line.Unit, "stock": bson.M{"$gte": line.Quantity}}},
			},
			bson.M{
				"$inc": bson.M{"variants.$.stock": -line.Quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			})
	} else {
		res, err = r.coll.UpdateOne(ctx,
			bson.M{"_id": line.ProductID, "stock": bson.M{"$gte": line.Quantity}},
			stockDelta(-line.Quantity))
	}
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoProductRepository) giveLine(ctx context.Context, line models.StockLine) error {
	var err error
	if line.Unit != "" {
		_, err = r.coll.UpdateOne(ctx,
			bson.M{"_id": line.ProductID, "variants.unit": line.Unit},
			bson.M{
				"$inc": bson.M{"variants.$.stock": line.Quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			})
	} else {
		_, err = r.coll.UpdateOne(ctx, bson.M{"_id": line.ProductID}, stockDelta(line.Quantity))
	}
	return err
}

// ReserveStock decrements each line with a conditional update. A line that cannot be
// satisfied rolls back the lines already taken.
func (r *MongoProductRepository) ReserveStock(ctx context.Context, lines []models.StockLine) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	taken := make([]models.StockLine, 0, len(lines))
	for _, line := range lines {
		ok, err := r.takeLine(ctx, line)
		if err == nil && !ok {
			err = fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
		}
		if err != nil {
			if rbErr := r.releaseLines(context.WithoutCancel(ctx), taken); rbErr != nil {
				return errors.Join(err, rbErr)
			}
			return err
		}
		taken = append(taken, line)
	}
	return nil
}

func (r *MongoProductRepository) ReleaseStock(ctx context.Context, lines []models.StockLine) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.releaseLines(ctx, lines)
}

func (r *MongoProductRepository) releaseLines(ctx context.Context, lines []models.StockLine) error {
	var errs []error
	for _, line := range lines {
		if err := r.giveLine(ctx, line); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", line.ProductID.Hex(), err))
		}
	}
	return errors.Join(errs...)
}

func (r *MongoProductRepository) Stats(ctx context.Context, addedBy string) (*models.ProductStats, error) {
	match := bson.M{}
	if addedBy != "" {
		match["addedBy.email"] = normalizeEmail(addedBy)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"total":      bson.M{"$sum": 1},
			"outOfStock": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$lte": bson.A{"$stock", 0}}, 1, 0}}},
			"avgRating":  bson.M{"$avg": "$rating"},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total      int64   `bson:"total"`
		OutOfStock int64   `bson:"outOfStock"`
		AvgRating  float64 `bson:"avgRating"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &models.ProductStats{}
	if len(rows) > 0 {
		stats.Total = rows[0].Total
		stats.OutOfStock = rows[0].OutOfStock
		stats.AvgRating = math.Round(rows[0].AvgRating*10) / 10
	}
	stats.Categories, err = r.categories(ctx, match)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
