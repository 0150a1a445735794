package services

import (
	"context"
	"errors"

	"freshfetch/models"
	"freshfetch/repositories"

	"github.com/shopspring/decimal"
)

const defaultUnit = "default"

var (
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingFee       = decimal.NewFromInt(2)
)

// CartLineKey identifies a cart line: one per product and variant unit.
func CartLineKey(productID, unit string) string {
	if unit == "" {
		unit = defaultUnit
	}
	return productID + "-" + unit
}

// AddCartItem merges the quantity into an existing line with the same key.
func AddCartItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.CartID = CartLineKey(item.ProductID, item.Unit)
	for i := range items {
		if items[i].CartID == item.CartID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

// UpdateCartQuantity never lets a line drop below one; removal is explicit.
func UpdateCartQuantity(items []models.CartItem, cartID string, quantity int) []models.CartItem {
	if quantity < 1 {
		quantity = 1
	}
	for i := range items {
		if items[i].CartID == cartID {
			items[i].Quantity = quantity
		}
	}
	return items
}

func RemoveCartItem(items []models.CartItem, cartID string) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.CartID != cartID {
			out = append(out, item)
		}
	}
	return out
}

// PriceCart computes totals in decimal and rounds to cents.
func PriceCart(items []models.CartItem) models.CartQuote {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	shipping := FlatShippingFee
	remaining := FreeShippingThreshold.Sub(subtotal)
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) || len(items) == 0 {
		shipping = decimal.Zero
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartQuote{
		Items:                 items,
		Subtotal:              subtotal.InexactFloat64(),
		Shipping:              shipping.InexactFloat64(),
		Total:                 subtotal.Add(shipping).Round(2).InexactFloat64(),
		FreeShippingRemaining: remaining.InexactFloat64(),
	}
}

// TotalsMatch allows one cent of drift between a client total and the computed one.
func TotalsMatch(client, computed float64) bool {
	diff := decimal.NewFromFloat(client).Sub(decimal.NewFromFloat(computed)).Abs()
	return diff.LessThanOrEqual(decimal.New(1, -2))
}

type CartService struct {
	productRepo repositories.ProductRepository
}

func NewCartService(productRepo repositories.ProductRepository) *CartService {
	return &CartService{productRepo: productRepo}
}

// Reprice replaces client-supplied line data with catalog data and merges duplicate lines.
func (s *CartService) Reprice(ctx context.Context, items []models.CartItem) ([]models.CartItem, error) {
	priced := []models.CartItem{}
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return nil, validationError("product %s is not available", item.ProductID)
		}
		if err != nil {
			return nil, err
		}

		line := models.CartItem{
			ProductID: product.ID.Hex(),
			Name:      product.Name,
			Image:     product.MainImage(),
			Category:  product.Category,
			Price:     product.Price,
			Quantity:  item.Quantity,
		}
		if item.Unit != "" && item.Unit != defaultUnit {
			variant, ok := product.VariantByUnit(item.Unit)
			if !ok {
				return nil, validationError("%s has no %q option", product.Name, item.Unit)
			}
			line.Unit = variant.Unit
			if variant.Price > 0 {
				line.Price = variant.Price
			}
		}
		priced = AddCartItem(priced, line)
	}
	return priced, nil
}

func (s *CartService) Quote(ctx context.Context, items []models.CartItem) (*models.CartQuote, error) {
	priced, err := s.Reprice(ctx, items)
	if err != nil {
		return nil, err
	}
	quote := PriceCart(priced)
	return &quote, nil
}

// keyed recomputes line keys for a client cart, merging lines that share one.
func keyed(items []models.CartItem) []models.CartItem {
	out := []models.CartItem{}
	for _, item := range items {
		out = AddCartItem(out, item)
	}
	return out
}

func (s *CartService) AddItem(ctx context.Context, items []models.CartItem, item models.CartItem) (*models.CartQuote, error) {
	return s.Quote(ctx, AddCartItem(keyed(items), item))
}

func (s *CartService) UpdateItem(ctx context.Context, items []models.CartItem, cartID string, quantity int) (*models.CartQuote, error) {
	items = keyed(items)
	if !hasLine(items, cartID) {
		return nil, repositories.ErrNotFound
	}
	return s.Quote(ctx, UpdateCartQuantity(items, cartID, quantity))
}

func (s *CartService) RemoveItem(ctx context.Context, items []models.CartItem, cartID string) (*models.CartQuote, error) {
	return s.Quote(ctx, RemoveCartItem(keyed(items), cartID))
}

func hasLine(items []models.CartItem, cartID string) bool {
	for _, item := range items {
		if item.CartID == cartID {
			return true
		}
	}
	return false
}
