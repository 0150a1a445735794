package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"freshfetch/models"

	"github.com/redis/go-redis/v9"
)

const (
	productListKeyPrefix = "products_list_"
	productListTTL       = 5 * time.Minute
)

// ProductCache holds rendered product list pages. A nil client turns every call into a no-op.
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

func productListKey(filter models.ProductFilter) string {
	raw, _ := json.Marshal(filter)
	sum := sha1.Sum(raw)
	return productListKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *ProductCache) Get(ctx context.Context, filter models.ProductFilter) (*models.ProductListData, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	cached, err := c.client.Get(ctx, productListKey(filter)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("product cache read failed", "error", err)
		}
		return nil, false
	}
	var data models.ProductListData
	if err := json.Unmarshal([]byte(cached), &data); err != nil {
		return nil, false
	}
	return &data, true
}

func (c *ProductCache) Set(ctx context.Context, filter models.ProductFilter, data *models.ProductListData) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productListKey(filter), raw, productListTTL).Err(); err != nil {
		slog.Warn("product cache write failed", "error", err)
	}
}

// Invalidate drops every cached list page.
func (c *ProductCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, productListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("product cache invalidation failed", "error", err)
	}
}
