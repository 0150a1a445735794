package repositories

import (
	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func productQuery(f models.ProductFilter) bson.M {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Search != "" {
		query["name"] = searchRegex(f.Search)
	}
	if f.AddedBy != "" {
		query["addedBy.email"] = normalizeEmail(f.AddedBy)
	}
	if f.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(f.ExcludeID); err == nil {
			query["_id"] = bson.M{"$ne": oid}
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.MinRating != nil {
		query["rating"] = bson.M{"$gte": *f.MinRating}
	}
	return query
}

func productSort(f models.ProductFilter) bson.D {
	field := f.SortBy
	if !models.ProductSortFields[field] {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func orderQuery(f models.OrderFilter) bson.M {
	query := bson.M{}
	if f.Email != "" {
		query["email"] = normalizeEmail(f.Email)
	}
	if f.Status != "" {
		query["orderStatus"] = f.Status
	}
	if f.Search != "" {
		re := searchRegex(f.Search)
		query["$or"] = bson.A{
			bson.M{"email": re},
			bson.M{"shippingAddress.fullName": re},
			bson.M{"shippingAddress.city": re},
		}
	}
	return query
}

func userQuery(f models.UserFilter) bson.M {
	query := bson.M{}
	if f.Email != "" {
		query["email"] = normalizeEmail(f.Email)
	}
	if f.Role != "" {
		query["role"] = f.Role
	}
	if f.Search != "" {
		re := searchRegex(f.Search)
		query["$or"] = bson.A{bson.M{"name": re}, bson.M{"email": re}}
	}
	return query
}

func setFields(fields models.Fields) bson.M {
	return bson.M{"$set": bson.M(fields)}
}
