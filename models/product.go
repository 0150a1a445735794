package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StockStatusIn  = "in-stock"
	StockStatusOut = "out-of-stock"
)

type Variant struct {
	Unit  string  `json:"unit" bson:"unit"`
	Price float64 `json:"price" bson:"price"`
	Stock int     `json:"stock" bson:"stock"`
}

type AddedBy struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

type Product struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Slug               string             `json:"slug" bson:"slug"`
	Category           string             `json:"category" bson:"category"`
	SubCategory        string             `json:"subCategory" bson:"subCategory"`
	Brand              string             `json:"brand" bson:"brand"`
	SKU                string             `json:"sku" bson:"sku"`
	Price              float64            `json:"price" bson:"price"`
	OldPrice           float64            `json:"oldPrice" bson:"oldPrice"`
	DiscountPercentage float64            `json:"discountPercentage" bson:"discountPercentage"`
	DiscountType       string             `json:"discountType" bson:"discountType"`
	Currency           string             `json:"currency" bson:"currency"`
	Stock              int                `json:"stock" bson:"stock"`
	StockStatus        string             `json:"stockStatus" bson:"stockStatus"`
	Rating             float64            `json:"rating" bson:"rating"`
	TotalReviews       int                `json:"totalReviews" bson:"totalReviews"`
	SingleImg          string             `json:"singleImg" bson:"singleImg"`
	Thumbnail          string             `json:"thumbnail" bson:"thumbnail"`
	Images             []string           `json:"images" bson:"images"`
	Variants           []Variant          `json:"variants" bson:"variants"`
	Features           []string           `json:"features" bson:"features"`
	Tags               []string           `json:"tags" bson:"tags"`
	Description        string             `json:"description" bson:"description"`
	IsNew              bool               `json:"isNew" bson:"isNew"`
	IsFeatured         bool               `json:"isFeatured" bson:"isFeatured"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	AddedBy            AddedBy            `json:"addedBy" bson:"addedBy"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// VariantByUnit returns the variant with the given unit, if any.
func (p *Product) VariantByUnit(unit string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Unit == unit {
			return v, true
		}
	}
	return Variant{}, false
}

// MainImage mirrors the storefront: the single image wins over the thumbnail.
func (p *Product) MainImage() string {
	if p.SingleImg != "" {
		return p.SingleImg
	}
	return p.Thumbnail
}

type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}
