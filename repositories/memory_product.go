package repositories

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]*models.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: map[primitive.ObjectID]*models.Product{}}
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, ok := r.products[product.ID]; ok {
		return ErrDuplicate
	}
	r.products[product.ID] = cloneDoc(product)
	return nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(p), nil
}

func matchProduct(f models.ProductFilter, p *models.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !compileSearch(f.Search).MatchString(p.Name) {
		return false
	}
	if f.AddedBy != "" && p.AddedBy.Email != normalizeEmail(f.AddedBy) {
		return false
	}
	if f.ExcludeID != "" && p.ID.Hex() == f.ExcludeID {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}

func productLess(field string, a, b *models.Product) (less bool, equal bool) {
	switch field {
	case "price":
		return a.Price < b.Price, a.Price == b.Price
	case "name":
		return a.Name < b.Name, a.Name == b.Name
	case "rating":
		return a.Rating < b.Rating, a.Rating == b.Rating
	case "stock":
		return a.Stock < b.Stock, a.Stock == b.Stock
	case "discountPercentage":
		return a.DiscountPercentage < b.DiscountPercentage, a.DiscountPercentage == b.DiscountPercentage
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

func (r *MemoryProductRepository) matching(f models.ProductFilter) []*models.Product {
	out := []*models.Product{}
	for _, p := range r.products {
		if matchProduct(f, p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *MemoryProductRepository) List(_ context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matching(filter)

	field, desc := filter.SortBy, filter.SortDesc
	if !models.ProductSortFields[field] {
		field, desc = "createdAt", true
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		less, equal := productLess(field, a, b)
		if equal {
			less, equal = a.ID.Hex() < b.ID.Hex(), a.ID == b.ID
		}
		if desc {
			return !less && !equal
		}
		return less
	})

	out := []models.Product{}
	for _, p := range paginate(matched, filter.Page) {
		out = append(out, *cloneDoc(p))
	}
	return out, int64(len(matched)), nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id string, fields models.Fields) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[oid]
	if !ok {
		return nil, ErrNotFound
	}
	updated, err := mergeFields(p, fields)
	if err != nil {
		return nil, err
	}
	r.products[oid] = updated
	return cloneDoc(updated), nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[oid]; !ok {
		return ErrNotFound
	}
	delete(r.products, oid)
	return nil
}

func countCategories(products []*models.Product) []models.CategoryCount {
	counts := map[string]int64{}
	for _, p := range products {
		counts[p.Category]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func (r *MemoryProductRepository) Categories(_ context.Context) ([]models.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return countCategories(r.matching(models.ProductFilter{})), nil
}

// ReserveStock validates every line against a working copy before committing any of them.
func (r *MemoryProductRepository) ReserveStock(_ context.Context, lines []models.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	working := map[primitive.ObjectID]*models.Product{}
	for _, line := range lines {
		p, ok := working[line.ProductID]
		if !ok {
			stored, exists := r.products[line.ProductID]
			if !exists {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
			}
			p = cloneDoc(stored)
			working[line.ProductID] = p
		}
		if !applyStock(p, line, -line.Quantity) {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
		}
	}
	now := time.Now()
	for id, p := range working {
		p.UpdatedAt = now
		r.products[id] = p
	}
	return nil
}

func (r *MemoryProductRepository) ReleaseStock(_ context.Context, lines []models.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		if p, ok := r.products[line.ProductID]; ok {
			applyStock(p, line, line.Quantity)
			p.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *MemoryProductRepository) Stats(_ context.Context, addedBy string) (*models.ProductStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matching(models.ProductFilter{AddedBy: strings.TrimSpace(addedBy)})
	stats := &models.ProductStats{Categories: countCategories(matched)}
	var ratingSum float64
	for _, p := range matched {
		stats.Total++
		if p.Stock <= 0 {
			stats.OutOfStock++
		}
		ratingSum += p.Rating
	}
	if stats.Total > 0 {
		stats.AvgRating = math.Round(ratingSum/float64(stats.Total)*10) / 10
	}
	return stats, nil
}
