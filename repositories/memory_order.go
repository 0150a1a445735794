package repositories

import (
	"context"
	"sync"

	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]*models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: map[primitive.ObjectID]*models.Order{}}
}

// cloneOrder keeps the idempotency key, which is not part of the JSON form.
func cloneOrder(o *models.Order) *models.Order {
	c := cloneDoc(o)
	c.IdempotencyKey = o.IdempotencyKey
	return c
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.IdempotencyKey != "" {
		for _, o := range r.orders {
			if o.IdempotencyKey == order.IdempotencyKey && orderOwner(o) == orderOwner(order) {
				return ErrDuplicate
			}
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.Email = normalizeEmail(order.Email)
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) FindByIdempotencyKey(_ context.Context, userID, key string) (*models.Order, error) {
	if userID == "" || key == "" {
		return nil, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.IdempotencyKey == key && orderOwner(o) == userID {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrNotFound
}

func matchOrder(f models.OrderFilter, o *models.Order) bool {
	if f.Email != "" && o.Email != normalizeEmail(f.Email) {
		return false
	}
	if f.Status != "" && o.OrderStatus != f.Status {
		return false
	}
	if f.Search != "" && !containsFold(compileSearch(f.Search), o.Email, o.ShippingAddress.FullName, o.ShippingAddress.City) {
		return false
	}
	return true
}

func (r *MemoryOrderRepository) List(_ context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*models.Order{}
	for _, o := range r.orders {
		if matchOrder(filter, o) {
			matched = append(matched, o)
		}
	}
	sortNewestFirst(matched,
		func(o *models.Order) int64 { return o.CreatedAt.UnixNano() },
		func(o *models.Order) string { return o.ID.Hex() })

	out := []models.Order{}
	for _, o := range paginate(matched, filter.Page) {
		out = append(out, *cloneOrder(o))
	}
	return out, int64(len(matched)), nil
}

func (r *MemoryOrderRepository) update(oid primitive.ObjectID, from string, fields models.Fields) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[oid]
	if !ok {
		return nil, ErrNotFound
	}
	if from != "" && o.OrderStatus != from {
		return nil, ErrConflict
	}
	updated, err := mergeFields(o, fields)
	if err != nil {
		return nil, err
	}
	updated.IdempotencyKey = o.IdempotencyKey
	r.orders[oid] = updated
	return cloneOrder(updated), nil
}

func (r *MemoryOrderRepository) Update(_ context.Context, id string, fields models.Fields) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.update(oid, "", fields)
}

func (r *MemoryOrderRepository) UpdateIfStatus(_ context.Context, id, from string, fields models.Fields) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.update(oid, from, fields)
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[oid]; !ok {
		return ErrNotFound
	}
	delete(r.orders, oid)
	return nil
}

func (r *MemoryOrderRepository) Stats(_ context.Context, email string) (*models.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.OrderStats{ByStatus: map[string]int64{}}
	for _, o := range r.orders {
		if !matchOrder(models.OrderFilter{Email: email}, o) {
			continue
		}
		stats.Total++
		stats.ByStatus[o.OrderStatus]++
		if o.PaymentStatus == models.PaymentStatusPaid {
			stats.Revenue += o.Total
		}
	}
	return stats, nil
}
