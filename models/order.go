package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "card"
)

// cardAliases are the names checkout clients use for online card payments.
var cardAliases = map[string]bool{"card": true, "stripe": true, "online": true}

// NormalizePaymentMethod maps a client payment method onto COD or card.
func NormalizePaymentMethod(method string) (string, bool) {
	m := strings.ToLower(strings.TrimSpace(method))
	switch {
	case m == "cod":
		return PaymentMethodCOD, true
	case cardAliases[m]:
		return PaymentMethodCard, true
	}
	return "", false
}

var OrderStatuses = []string{OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled}

// CartItem is a cart line. Orders keep a snapshot of the lines they were placed with.
type CartItem struct {
	CartID    string  `json:"cartId" bson:"cartId"`
	ProductID string  `json:"productId" bson:"productId" binding:"required"`
	Name      string  `json:"name" bson:"name"`
	Image     string  `json:"image" bson:"image"`
	Category  string  `json:"category" bson:"category"`
	Unit      string  `json:"unit" bson:"unit"`
	Price     float64 `json:"price" bson:"price" binding:"gte=0"`
	Quantity  int     `json:"quantity" bson:"quantity" binding:"gte=1"`
}

type ShippingAddress struct {
	FullName string `json:"fullName" bson:"fullName"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
	City     string `json:"city" bson:"city"`
	Address  string `json:"address" bson:"address"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID          *string            `json:"userId" bson:"userId"`
	Email           string             `json:"email" bson:"email"`
	Products        []CartItem         `json:"products" bson:"products"`
	Subtotal        float64            `json:"subtotal" bson:"subtotal"`
	Shipping        float64            `json:"shipping" bson:"shipping"`
	Total           float64            `json:"total" bson:"total"`
	PaymentMethod   string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus   string             `json:"paymentStatus" bson:"paymentStatus"`
	OrderStatus     string             `json:"orderStatus" bson:"orderStatus"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shippingAddress"`
	TransactionID   *string            `json:"transactionId" bson:"transactionId"`
	IdempotencyKey  string             `json:"-" bson:"idempotencyKey,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// StockLine is a quantity to take from (or give back to) a product, optionally a variant of it.
type StockLine struct {
	ProductID primitive.ObjectID
	Unit      string
	Quantity  int
	Name      string
}
