//go:build integration

package template

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
	"scouthub/pkg/platform/sentinel"
	"scouthub/pkg/testutil/containers"
)

// countingCatalog records how often the backing catalog is hit so cache
// behavior is observable.
type countingCatalog struct {
	inner *InMemory
	hits  atomic.Int64
}

func (c *countingCatalog) List(ctx context.Context) ([]models.RequirementTemplate, error) {
	c.hits.Add(1)
	return c.inner.List(ctx)
}

func (c *countingCatalog) FindByID(ctx context.Context, templateID id.TemplateID) (*models.RequirementTemplate, error) {
	c.hits.Add(1)
	return c.inner.FindByID(ctx, templateID)
}

func TestRedisCacheReadThrough(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	backing := &countingCatalog{inner: NewInMemory(SeedCatalog()...)}
	cache := NewRedisCache(rc.Client, backing, time.Minute)

	first, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, first, len(SeedCatalog()))
	assert.EqualValues(t, 1, backing.hits.Load())

	// Second read is served from redis.
	second, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, backing.hits.Load())

	// Invalidation forces the next read through.
	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, backing.hits.Load())
}

func TestRedisCacheFindByID(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	seed := SeedCatalog()
	cache := NewRedisCache(rc.Client, NewInMemory(seed...), time.Minute)

	found, err := cache.FindByID(ctx, seed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seed[0].Name, found.Name)

	_, err = cache.FindByID(ctx, id.NewTemplateID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
