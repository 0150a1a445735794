package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"freshfetch/models"
	"freshfetch/repositories"
)

// OrderMailer sends the confirmation for a freshly placed order. Implementations
// bound the send themselves; the order service waits for every call to return.
type OrderMailer interface {
	SendOrderConfirmation(order *models.Order) error
}

type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cart        *CartService
	cache       *ProductCache
	mailer      OrderMailer

	mailWG sync.WaitGroup
}

func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, cache *ProductCache, mailer OrderMailer) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cart:        NewCartService(productRepo),
		cache:       cache,
		mailer:      mailer,
	}
}

// Wait blocks until every queued confirmation email has been sent or has failed.
func (s *OrderService) Wait() {
	s.mailWG.Wait()
}

func isOwner(principal models.Principal, order *models.Order) bool {
	if order.UserID != nil && *order.UserID == principal.UserID {
		return true
	}
	return strings.EqualFold(order.Email, principal.Email)
}

// replayed returns the order an idempotency key already produced, but only to the caller who placed it.
func replayed(principal models.Principal, order *models.Order) (*models.Order, bool, error) {
	if !isOwner(principal, order) {
		return nil, false, ErrIdempotencyKeyReused
	}
	return order, false, nil
}

// Create places an order. created is false when the idempotency key matched an earlier order.
func (s *OrderService) Create(ctx context.Context, principal models.Principal, req models.CreateOrderRequest, idempotencyKey string) (order *models.Order, created bool, err error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.orderRepo.FindByIdempotencyKey(ctx, principal.UserID, idempotencyKey)
		if err == nil {
			return replayed(principal, existing)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, false, err
		}
	}

	method := models.PaymentMethodCOD
	if strings.TrimSpace(req.PaymentMethod) != "" {
		normalized, ok := models.NormalizePaymentMethod(req.PaymentMethod)
		if !ok {
			return nil, false, validationError("unknown payment method %q", req.PaymentMethod)
		}
		method = normalized
	}
	transactionID := strings.TrimSpace(req.TransactionID)
	if method == models.PaymentMethodCard && transactionID == "" {
		return nil, false, validationError("transactionId is required for card payments")
	}

	items, err := s.cart.Reprice(ctx, req.Products)
	if err != nil {
		return nil, false, err
	}
	quote := PriceCart(items)
	if req.Total != nil && !TotalsMatch(*req.Total, quote.Total) {
		return nil, false, fmt.Errorf("%w: expected %.2f, got %.2f", ErrTotalMismatch, quote.Total, *req.Total)
	}

	lines, err := s.stockLines(ctx, items)
	if err != nil {
		return nil, false, err
	}
	if err := s.productRepo.ReserveStock(ctx, lines); err != nil {
		return nil, false, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !principal.IsStaff() {
		email = strings.ToLower(principal.Email)
	}
	userID := principal.UserID

	now := time.Now()
	order = &models.Order{
		UserID:          &userID,
		Email:           email,
		Products:        items,
		Subtotal:        quote.Subtotal,
		Shipping:        quote.Shipping,
		Total:           quote.Total,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentStatusPaid,
		OrderStatus:     models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  idempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if method == models.PaymentMethodCOD {
		order.PaymentStatus = models.PaymentStatusPending
	} else {
		order.TransactionID = &transactionID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.release(ctx, lines)
		if errors.Is(err, repositories.ErrDuplicate) && idempotencyKey != "" {
			existing, findErr := s.orderRepo.FindByIdempotencyKey(ctx, principal.UserID, idempotencyKey)
			if findErr == nil {
				return replayed(principal, existing)
			}
		}
		return nil, false, err
	}

	ordersCreated.WithLabelValues(method).Inc()
	s.cache.Invalidate(ctx)
	s.sendConfirmation(order)

	slog.InfoContext(ctx, "order placed", "order_id", order.ID.Hex(), "total", order.Total, "payment_method", method)
	return order, true, nil
}

// stockLines uses variant stock only when the product actually has that variant.
func (s *OrderService) stockLines(ctx context.Context, items []models.CartItem) ([]models.StockLine, error) {
	lines := make([]models.StockLine, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		line := models.StockLine{ProductID: product.ID, Quantity: item.Quantity, Name: product.Name}
		if _, ok := product.VariantByUnit(item.Unit); ok && item.Unit != "" {
			line.Unit = item.Unit
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// orderLines rebuilds the stock lines of a stored order, skipping products deleted since.
func (s *OrderService) orderLines(ctx context.Context, order *models.Order) []models.StockLine {
	lines := make([]models.StockLine, 0, len(order.Products))
	for _, item := range order.Products {
		line, err := s.stockLines(ctx, []models.CartItem{item})
		if err != nil {
			continue
		}
		lines = append(lines, line...)
	}
	return lines
}

func (s *OrderService) release(ctx context.Context, lines []models.StockLine) {
	if err := s.productRepo.ReleaseStock(context.WithoutCancel(ctx), lines); err != nil {
		slog.ErrorContext(ctx, "stock release failed", "error", err)
	}
}

func (s *OrderService) sendConfirmation(order *models.Order) {
	if s.mailer == nil {
		return
	}
	s.mailWG.Add(1)
	go func(o models.Order) {
		defer s.mailWG.Done()
		if err := s.mailer.SendOrderConfirmation(&o); err != nil {
			slog.Error("order confirmation email failed", "order_id", o.ID.Hex(), "error", err)
		}
	}(*order)
}

// List scopes non-staff callers to their own orders.
func (s *OrderService) List(ctx context.Context, principal models.Principal, filter models.OrderFilter) ([]models.Order, int64, error) {
	if !principal.IsStaff() {
		filter.Email = principal.Email
	}
	filter.Page = filter.Page.Normalize()
	return s.orderRepo.List(ctx, filter)
}

func (s *OrderService) Get(ctx context.Context, principal models.Principal, id string) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsStaff() && !isOwner(principal, order) {
		return nil, ErrForbidden
	}
	return order, nil
}

// Update applies a partial staff update; a status change goes through the workflow.
func (s *OrderService) Update(ctx context.Context, principal models.Principal, id string, req models.UpdateOrderRequest) (*models.Order, error) {
	if !principal.IsStaff() {
		return nil, ErrForbidden
	}
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := models.Fields{}
	if req.PaymentStatus != nil {
		if err := CheckPaymentTransition(order.PaymentStatus, *req.PaymentStatus); err != nil {
			return nil, err
		}
		fields["paymentStatus"] = *req.PaymentStatus
	}
	if req.ShippingAddress != nil {
		fields["shippingAddress"] = *req.ShippingAddress
	}
	if req.TransactionID != nil {
		fields["transactionId"] = req.TransactionID
	}

	if req.OrderStatus != nil && *req.OrderStatus != order.OrderStatus {
		return s.transition(ctx, principal, order, *req.OrderStatus, fields)
	}

	fields["updatedAt"] = time.Now()
	return s.orderRepo.Update(ctx, id, fields)
}

// Cancel lets the caller cancel an order they placed while it is still pending.
func (s *OrderService) Cancel(ctx context.Context, principal models.Principal, id string) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsStaff() && !isOwner(principal, order) {
		return nil, ErrForbidden
	}
	if order.OrderStatus == models.OrderStatusCancelled {
		return order, nil
	}
	return s.transition(ctx, principal, order, models.OrderStatusCancelled, models.Fields{})
}

func (s *OrderService) transition(ctx context.Context, principal models.Principal, order *models.Order, to string, fields models.Fields) (*models.Order, error) {
	from := order.OrderStatus
	if err := CheckTransition(from, to, principal.Role, isOwner(principal, order)); err != nil {
		return nil, err
	}

	fields["orderStatus"] = to
	fields["updatedAt"] = time.Now()
	if to == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCOD {
		fields["paymentStatus"] = models.PaymentStatusPaid
	}

	var restored []models.StockLine
	if from == models.OrderStatusCancelled && to == models.OrderStatusPending {
		restored = s.orderLines(ctx, order)
		if err := s.productRepo.ReserveStock(ctx, restored); err != nil {
			return nil, err
		}
	}

	updated, err := s.orderRepo.UpdateIfStatus(ctx, order.ID.Hex(), from, fields)
	if err != nil {
		if restored != nil {
			s.release(ctx, restored)
		}
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: order was changed by someone else", ErrInvalidTransition)
		}
		return nil, err
	}

	if to == models.OrderStatusCancelled {
		s.release(ctx, s.orderLines(ctx, order))
	}
	if restored != nil || to == models.OrderStatusCancelled {
		s.cache.Invalidate(ctx)
	}

	orderTransitions.WithLabelValues(from, to).Inc()
	slog.InfoContext(ctx, "order status changed", "order_id", order.ID.Hex(), "from", from, "to", to, "by", principal.Email)
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, principal models.Principal, id string) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	return s.orderRepo.Delete(ctx, id)
}
