package repositories

import (
	"testing"

	"freshfetch/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr(f float64) *float64 { return &f }

func TestProductQuery(t *testing.T) {
	id := primitive.NewObjectID()
	q := productQuery(models.ProductFilter{
		Category:  "Fruits",
		Search:    "a.b(",
		AddedBy:   "Boss@Shop.com ",
		ExcludeID: id.Hex(),
		MinPrice:  ptr(1),
		MaxPrice:  ptr(9.5),
		MinRating: ptr(4),
	})

	assert.Equal(t, "Fruits", q["category"])
	assert.Equal(t, primitive.Regex{Pattern: `a\.b\(`, Options: "i"}, q["name"])
	assert.Equal(t, "boss@shop.com", q["addedBy.email"])
	assert.Equal(t, bson.M{"$ne": id}, q["_id"])
	assert.Equal(t, bson.M{"$gte": 1.0, "$lte": 9.5}, q["price"])
	assert.Equal(t, bson.M{"$gte": 4.0}, q["rating"])

	assert.Empty(t, productQuery(models.ProductFilter{}))
	assert.NotContains(t, productQuery(models.ProductFilter{ExcludeID: "bogus"}), "_id")
}

func TestProductSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		productSort(models.ProductFilter{}))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		productSort(models.ProductFilter{SortBy: "password"}))
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}},
		productSort(models.ProductFilter{SortBy: "price"}))
	assert.Equal(t, bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: -1}},
		productSort(models.ProductFilter{SortBy: "rating", SortDesc: true}))
}

func TestOrderAndUserQuery(t *testing.T) {
	q := orderQuery(models.OrderFilter{Email: "A@B.com", Status: "pending"})
	assert.Equal(t, bson.M{"email": "a@b.com", "orderStatus": "pending"}, q)

	q = orderQuery(models.OrderFilter{Search: "jo"})
	assert.Len(t, q["$or"], 3)

	u := userQuery(models.UserFilter{Role: "manager", Search: "x"})
	assert.Equal(t, "manager", u["role"])
	assert.Len(t, u["$or"], 2)
}

func TestPostgresProductWhere(t *testing.T) {
	w := productWhere(models.ProductFilter{Category: "Dairy", Search: "50%_off", MinPrice: ptr(2), MinRating: ptr(3)})

	assert.Equal(t,
		" WHERE doc->>'category' = $1 AND doc->>'name' ILIKE $2 AND (doc->>'price')::numeric >= $3 AND (doc->>'rating')::numeric >= $4",
		w.String())
	assert.Equal(t, []interface{}{"Dairy", `%50\%\_off%`, 2.0, 3.0}, w.args)

	limit, args := pageClause(w, models.Page{Page: 3, Limit: 10})
	assert.Equal(t, " LIMIT $5 OFFSET $6", limit)
	assert.Equal(t, []interface{}{"Dairy", `%50\%\_off%`, 2.0, 3.0, 10, 20}, args)
	assert.Len(t, w.args, 4)

	assert.Equal(t, "", productWhere(models.ProductFilter{}).String())
}

func TestPostgresProductOrderBy(t *testing.T) {
	assert.Equal(t, " ORDER BY created_at DESC, id DESC", productOrderBy(models.ProductFilter{}))
	assert.Equal(t, " ORDER BY created_at DESC, id DESC", productOrderBy(models.ProductFilter{SortBy: "doc; DROP TABLE"}))
	assert.Equal(t, " ORDER BY (doc->>'price')::numeric ASC, id ASC", productOrderBy(models.ProductFilter{SortBy: "price"}))
	assert.Equal(t, " ORDER BY doc->>'name' DESC, id DESC", productOrderBy(models.ProductFilter{SortBy: "name", SortDesc: true}))
	assert.Equal(t, " ORDER BY created_at ASC, id ASC", productOrderBy(models.ProductFilter{SortBy: "createdAt"}))
}

func TestPostgresOrderAndUserWhere(t *testing.T) {
	w := orderWhere(models.OrderFilter{Email: "X@Y.com", Search: "Ann"})
	assert.Equal(t,
		" WHERE doc->>'email' = $1 AND (doc->>'email' ILIKE $2 OR doc->'shippingAddress'->>'fullName' ILIKE $2 OR doc->'shippingAddress'->>'city' ILIKE $2)",
		w.String())
	assert.Equal(t, []interface{}{"x@y.com", "%Ann%"}, w.args)

	u := userWhere(models.UserFilter{Role: "admin"})
	assert.Equal(t, " WHERE doc->>'role' = $1", u.String())
}
