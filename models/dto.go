package models

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Image    string `json:"image" binding:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2"`
	Image string `json:"image" binding:"omitempty,url"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Image    string `json:"image" binding:"omitempty,url"`
	Role     string `json:"role" binding:"omitempty,role"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2"`
	Image    *string `json:"image" binding:"omitempty"`
	Role     *string `json:"role" binding:"omitempty,role"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type CreateProductRequest struct {
	Name               string    `json:"name" binding:"required,min=3"`
	Slug               string    `json:"slug"`
	Category           string    `json:"category" binding:"required"`
	SubCategory        string    `json:"subCategory"`
	Brand              string    `json:"brand"`
	SKU                string    `json:"sku"`
	Price              float64   `json:"price" binding:"gte=0"`
	OldPrice           float64   `json:"oldPrice" binding:"gte=0"`
	DiscountPercentage float64   `json:"discountPercentage" binding:"gte=0,lte=100"`
	DiscountType       string    `json:"discountType"`
	Currency           string    `json:"currency"`
	Stock              int       `json:"stock" binding:"gte=0"`
	Rating             float64   `json:"rating" binding:"gte=0,lte=5"`
	TotalReviews       int       `json:"totalReviews" binding:"gte=0"`
	SingleImg          string    `json:"singleImg"`
	Thumbnail          string    `json:"thumbnail"`
	Images             []string  `json:"images"`
	Variants           []Variant `json:"variants"`
	Features           []string  `json:"features"`
	Tags               []string  `json:"tags"`
	Description        string    `json:"description"`
	IsNew              *bool     `json:"isNew"`
	IsFeatured         bool      `json:"isFeatured"`
	IsActive           *bool     `json:"isActive"`
}

type UpdateProductRequest struct {
	Name               *string    `json:"name" binding:"omitempty,min=3"`
	Slug               *string    `json:"slug"`
	Category           *string    `json:"category"`
	SubCategory        *string    `json:"subCategory"`
	Brand              *string    `json:"brand"`
	SKU                *string    `json:"sku"`
	Price              *float64   `json:"price" binding:"omitempty,gte=0"`
	OldPrice           *float64   `json:"oldPrice" binding:"omitempty,gte=0"`
	DiscountPercentage *float64   `json:"discountPercentage" binding:"omitempty,gte=0,lte=100"`
	DiscountType       *string    `json:"discountType"`
	Currency           *string    `json:"currency"`
	Stock              *int       `json:"stock" binding:"omitempty,gte=0"`
	Rating             *float64   `json:"rating" binding:"omitempty,gte=0,lte=5"`
	TotalReviews       *int       `json:"totalReviews" binding:"omitempty,gte=0"`
	SingleImg          *string    `json:"singleImg"`
	Thumbnail          *string    `json:"thumbnail"`
	Images             *[]string  `json:"images"`
	Variants           *[]Variant `json:"variants"`
	Features           *[]string  `json:"features"`
	Tags               *[]string  `json:"tags"`
	Description        *string    `json:"description"`
	IsNew              *bool      `json:"isNew"`
	IsFeatured         *bool      `json:"isFeatured"`
	IsActive           *bool      `json:"isActive"`
}

type CreateOrderRequest struct {
	Email           string          `json:"email" binding:"required,email"`
	Products        []CartItem      `json:"products" binding:"required,min=1,dive"`
	Total           *float64        `json:"total"`
	PaymentMethod   string          `json:"paymentMethod" binding:"omitempty,paymentmethod"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TransactionID   string          `json:"transactionId"`
}

type UpdateOrderRequest struct {
	OrderStatus     *string          `json:"orderStatus" binding:"omitempty,orderstatus"`
	PaymentStatus   *string          `json:"paymentStatus" binding:"omitempty,oneof=pending paid"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	TransactionID   *string          `json:"transactionId"`
}

type CartQuoteRequest struct {
	Items []CartItem `json:"items" binding:"dive"`
}

type AddCartItemRequest struct {
	Items []CartItem `json:"items" binding:"dive"`
	Item  CartItem   `json:"item"`
}

type UpdateCartItemRequest struct {
	Items    []CartItem `json:"items" binding:"dive"`
	Quantity int        `json:"quantity"`
}

type PaymentIntentRequest struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Email    string  `json:"email"`
}
