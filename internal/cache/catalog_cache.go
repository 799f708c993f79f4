package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"garmentscore/internal/model"
)

const catalogKey = "catalog:active"

// CatalogCache keeps the resolved active catalog in Redis
type CatalogCache interface {
	Get(ctx context.Context) (*model.Catalog, error)
	Set(ctx context.Context, catalog *model.Catalog) error
	Invalidate(ctx context.Context) error
}

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &catalogCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *catalogCache) Get(ctx context.Context) (*model.Catalog, error) {
	data, err := c.client.Get(ctx, catalogKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var catalog model.Catalog
	if err := json.Unmarshal([]byte(data), &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *catalogCache) Set(ctx context.Context, catalog *model.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, data, c.ttl).Err()
}

func (c *catalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
