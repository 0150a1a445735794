package repositories

import (
	"context"
	"errors"

	"freshfetch/models"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("document already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidID         = errors.New("invalid id")
	// ErrConflict is returned by conditional updates whose precondition no longer holds.
	ErrConflict = errors.New("document changed concurrently")
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	// ReserveStock takes every line or none of them.
	ReserveStock(ctx context.Context, lines []models.StockLine) error
	ReleaseStock(ctx context.Context, lines []models.StockLine) error
	Stats(ctx context.Context, addedBy string) (*models.ProductStats, error)
}

type OrderRepository interface {
	// Create returns ErrDuplicate when the user already used the idempotency key.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.Order, error)
	// UpdateIfStatus applies fields only while the order is still in status from.
	UpdateIfStatus(ctx context.Context, id, from string, fields models.Fields) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, email string) (*models.OrderStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// Store groups the repositories of one backend.
type Store struct {
	Products ProductRepository
	Orders   OrderRepository
	Users    UserRepository
	Close    func()
}

var (
	_ ProductRepository = (*MongoProductRepository)(nil)
	_ ProductRepository = (*PostgresProductRepository)(nil)
	_ ProductRepository = (*MemoryProductRepository)(nil)
	_ OrderRepository   = (*MongoOrderRepository)(nil)
	_ OrderRepository   = (*PostgresOrderRepository)(nil)
	_ OrderRepository   = (*MemoryOrderRepository)(nil)
	_ UserRepository    = (*MongoUserRepository)(nil)
	_ UserRepository    = (*PostgresUserRepository)(nil)
	_ UserRepository    = (*MemoryUserRepository)(nil)
)
