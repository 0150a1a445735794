package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/utils"
)

const defaultRelatedLimit = 4

type ProductService struct {
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	cache       *ProductCache
}

func NewProductService(productRepo repositories.ProductRepository, userRepo repositories.UserRepository, cache *ProductCache) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) (*models.ProductListData, error) {
	filter.Page = filter.Page.Normalize()

	if cached, ok := s.cache.Get(ctx, filter); ok {
		return cached, nil
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := &models.ProductListData{
		Products:      products,
		TotalProducts: total,
		TotalPages:    utils.TotalPages(total, filter.Limit),
		CurrentPage:   filter.Page.Page,
	}
	s.cache.Set(ctx, filter, data)
	return data, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	return s.productRepo.Categories(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Related lists other products of the same category.
func (s *ProductService) Related(ctx context.Context, id string, limit int) ([]models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultRelatedLimit
	}
	related, _, err := s.productRepo.List(ctx, models.ProductFilter{
		Category:  product.Category,
		ExcludeID: product.ID.Hex(),
		SortBy:    "rating",
		SortDesc:  true,
		Page:      models.Page{Page: 1, Limit: limit},
	})
	return related, err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (s *ProductService) Create(ctx context.Context, principal models.Principal, req models.CreateProductRequest) (*models.Product, error) {
	if !principal.IsStaff() {
		return nil, ErrForbidden
	}

	now := time.Now()
	product := &models.Product{
		Name:               strings.TrimSpace(req.Name),
		Slug:               req.Slug,
		Category:           req.Category,
		SubCategory:        req.SubCategory,
		Brand:              req.Brand,
		SKU:                req.SKU,
		Price:              req.Price,
		OldPrice:           req.OldPrice,
		DiscountPercentage: req.DiscountPercentage,
		DiscountType:       req.DiscountType,
		Currency:           req.Currency,
		Stock:              req.Stock,
		StockStatus:        stockStatus(req.Stock),
		Rating:             req.Rating,
		TotalReviews:       req.TotalReviews,
		SingleImg:          req.SingleImg,
		Thumbnail:          req.Thumbnail,
		Images:             nonNil(req.Images),
		Variants:           req.Variants,
		Features:           nonNil(req.Features),
		Tags:               nonNil(req.Tags),
		Description:        req.Description,
		IsNew:              req.IsNew == nil || *req.IsNew,
		IsFeatured:         req.IsFeatured,
		IsActive:           req.IsActive == nil || *req.IsActive,
		AddedBy:            s.addedBy(ctx, principal),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if product.Slug == "" {
		product.Slug = utils.Slugify(product.Name)
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	if err := validateVariants(product.Variants); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return product, nil
}

func stockStatus(stock int) string {
	if stock <= 0 {
		return models.StockStatusOut
	}
	return models.StockStatusIn
}

func validateVariants(variants []models.Variant) error {
	seen := map[string]bool{}
	for _, v := range variants {
		unit := strings.TrimSpace(v.Unit)
		if unit == "" || unit == defaultUnit {
			return validationError("variant unit %q is not allowed", v.Unit)
		}
		if seen[unit] {
			return validationError("duplicate variant unit %q", unit)
		}
		if v.Price < 0 || v.Stock < 0 {
			return validationError("variant %q has a negative price or stock", unit)
		}
		seen[unit] = true
	}
	return nil
}

func (s *ProductService) addedBy(ctx context.Context, principal models.Principal) models.AddedBy {
	added := models.AddedBy{Name: principal.Email, Email: strings.ToLower(principal.Email)}
	if user, err := s.userRepo.FindByID(ctx, principal.UserID); err == nil && user.Name != "" {
		added.Name = user.Name
	}
	return added
}

// canManage is true for admins and for the manager who added the product.
func canManage(principal models.Principal, product *models.Product) bool {
	if principal.IsAdmin() {
		return true
	}
	return principal.Role == models.RoleManager &&
		strings.EqualFold(product.AddedBy.Email, principal.Email)
}

func (s *ProductService) Update(ctx context.Context, principal models.Principal, id string, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(principal, product) {
		return nil, ErrForbidden
	}

	fields := models.Fields{}
	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			fields[key] = *v
		}
	}
	setBool := func(key string, v *bool) {
		if v != nil {
			fields[key] = *v
		}
	}
	setList := func(key string, v *[]string) {
		if v != nil {
			fields[key] = nonNil(*v)
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		fields["name"] = name
		if req.Slug == nil {
			fields["slug"] = utils.Slugify(name)
		}
	}
	setString("slug", req.Slug)
	setString("category", req.Category)
	setString("subCategory", req.SubCategory)
	setString("brand", req.Brand)
	setString("sku", req.SKU)
	setFloat("price", req.Price)
	setFloat("oldPrice", req.OldPrice)
	setFloat("discountPercentage", req.DiscountPercentage)
	setString("discountType", req.DiscountType)
	setString("currency", req.Currency)
	setFloat("rating", req.Rating)
	setString("singleImg", req.SingleImg)
	setString("thumbnail", req.Thumbnail)
	setString("description", req.Description)
	setBool("isNew", req.IsNew)
	setBool("isFeatured", req.IsFeatured)
	setBool("isActive", req.IsActive)
	setList("images", req.Images)
	setList("features", req.Features)
	setList("tags", req.Tags)

	if req.Stock != nil {
		fields["stock"] = *req.Stock
		fields["stockStatus"] = stockStatus(*req.Stock)
	}
	if req.TotalReviews != nil {
		fields["totalReviews"] = *req.TotalReviews
	}
	if req.Variants != nil {
		variants := *req.Variants
		if variants == nil {
			variants = []models.Variant{}
		}
		if err := validateVariants(variants); err != nil {
			return nil, err
		}
		fields["variants"] = variants
	}
	fields["updatedAt"] = time.Now()

	updated, err := s.productRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, principal models.Principal, id string) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(principal, product) {
		return ErrForbidden
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("product %s: %w", id, err)
		}
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}
