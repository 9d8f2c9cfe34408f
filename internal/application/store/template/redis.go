package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
	"scouthub/pkg/platform/sentinel"
)

const catalogCacheKey = "instructor-applications:templates"

// Catalog is the read side the cache decorates.
type Catalog interface {
	List(ctx context.Context) ([]models.RequirementTemplate, error)
	FindByID(ctx context.Context, templateID id.TemplateID) (*models.RequirementTemplate, error)
}

// RedisCache is a read-through cache over the template catalog. The catalog
// changes rarely but is read on every submission check, so a short TTL keeps
// reads off the backing store without staleness concerns.
type RedisCache struct {
	client *redis.Client
	inner  Catalog
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, inner Catalog, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, inner: inner, ttl: ttl}
}

func (c *RedisCache) List(ctx context.Context) ([]models.RequirementTemplate, error) {
	cached, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if err == nil {
		var templates []models.RequirementTemplate
		if err := json.Unmarshal(cached, &templates); err == nil {
			return templates, nil
		}
		// Corrupt cache entry: fall through to the backing catalog.
	} else if err != redis.Nil {
		return nil, fmt.Errorf("read template cache: %w", err)
	}

	templates, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(templates)
	if err != nil {
		return nil, fmt.Errorf("encode template cache: %w", err)
	}
	if err := c.client.Set(ctx, catalogCacheKey, encoded, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("write template cache: %w", err)
	}
	return templates, nil
}

func (c *RedisCache) FindByID(ctx context.Context, templateID id.TemplateID) (*models.RequirementTemplate, error) {
	templates, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == templateID {
			return &templates[i], nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Invalidate drops the cached catalog, forcing the next read through.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogCacheKey).Err()
}
