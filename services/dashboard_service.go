package services

import (
	"context"

	"freshfetch/models"
	"freshfetch/repositories"

	"github.com/shopspring/decimal"
)

const ScopeMine = "mine"

type DashboardService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
}

func NewDashboardService(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, userRepo repositories.UserRepository) *DashboardService {
	return &DashboardService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Stats returns the numbers the caller's dashboard shows; the shape depends on the role.
func (s *DashboardService) Stats(ctx context.Context, principal models.Principal, scope string) (interface{}, error) {
	switch principal.Role {
	case models.RoleAdmin:
		return s.adminStats(ctx)
	case models.RoleManager:
		return s.managerStats(ctx, principal, scope)
	default:
		return s.userStats(ctx, principal)
	}
}

func (s *DashboardService) adminStats(ctx context.Context) (*models.AdminStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.Stats(ctx, "")
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.Stats(ctx, "")
	if err != nil {
		return nil, err
	}
	return &models.AdminStats{
		Users:      users,
		Products:   products.Total,
		Orders:     orders.Total,
		Revenue:    roundMoney(orders.Revenue),
		ByStatus:   orders.ByStatus,
		Categories: products.Categories,
	}, nil
}

func (s *DashboardService) managerStats(ctx context.Context, principal models.Principal, scope string) (*models.ManagerStats, error) {
	addedBy := ""
	if scope == ScopeMine {
		addedBy = principal.Email
	}
	products, err := s.productRepo.Stats(ctx, addedBy)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.Stats(ctx, "")
	if err != nil {
		return nil, err
	}
	return &models.ManagerStats{
		TotalProducts: products.Total,
		OutOfStock:    products.OutOfStock,
		PendingOrders: orders.ByStatus[models.OrderStatusPending],
		AvgRating:     products.AvgRating,
		Categories:    products.Categories,
	}, nil
}

func (s *DashboardService) userStats(ctx context.Context, principal models.Principal) (*models.UserStats, error) {
	orders, err := s.orderRepo.Stats(ctx, principal.Email)
	if err != nil {
		return nil, err
	}
	return &models.UserStats{
		Orders:    orders.Total,
		Spent:     roundMoney(orders.Revenue),
		Pending:   orders.ByStatus[models.OrderStatusPending],
		Shipped:   orders.ByStatus[models.OrderStatusShipped],
		Delivered: orders.ByStatus[models.OrderStatusDelivered],
		Cancelled: orders.ByStatus[models.OrderStatusCancelled],
	}, nil
}
