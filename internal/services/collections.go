package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/events"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Collections loads tenant collections through the cache and announces
// changes to them. Concurrent loads of the same collection share one query.
type Collections struct {
	cache     caching.CacheService
	publisher events.Publisher
	ttl       time.Duration
	group     singleflight.Group
}

func NewCollections(cache caching.CacheService, publisher events.Publisher, ttl time.Duration) *Collections {
	if publisher == nil {
		publisher = events.NoopBus{}
	}
	return &Collections{cache: cache, publisher: publisher, ttl: ttl}
}

// loadCollection serves key from the cache or fetches and caches it.
// Cache failures are logged and the repository result is used. A result is
// only cached if the collection was not invalidated while it was fetched.
func loadCollection[T any](ctx context.Context, c *Collections, tenantID uuid.UUID, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	var cached []T
	hit, err := c.cache.GetCollection(ctx, tenantID, key, &cached)
	if err != nil {
		log.Printf("WARN: Failed to read %s from cache for tenant %s: %v", key, tenantID, err)
	} else if hit {
		return cached, nil
	}

	v, err, _ := c.group.Do(tenantID.String()+"/"+key, func() (any, error) {
		generation, genErr := c.cache.CollectionGeneration(ctx, tenantID, key)
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			log.Printf("WARN: Failed to read %s generation for tenant %s, not caching: %v", key, tenantID, genErr)
			return items, nil
		}
		err = c.cache.SetCollection(ctx, tenantID, key, generation, items, c.ttl)
		if err != nil && !errors.Is(err, caching.ErrStaleCollection) {
			log.Printf("WARN: Failed to cache %s for tenant %s: %v", key, tenantID, err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// Changed invalidates the named collections and publishes a change event.
// Neither step can fail the mutation that caused it.
func (c *Collections) Changed(ctx context.Context, tenantID uuid.UUID, action string, collections ...string) {
	keys := make([]string, 0, len(collections))
	for _, name := range collections {
		if name == ViewWarehouseInventory {
			keys = append(keys, caching.AllWarehouseInventory)
			continue
		}
		keys = append(keys, name)
	}
	if err := c.cache.InvalidateCollections(ctx, tenantID, keys...); err != nil {
		log.Printf("WARN: Failed to invalidate %s for tenant %s: %v", strings.Join(keys, ","), tenantID, err)
	}

	event := events.ChangeEvent{
		TenantID:    tenantID,
		Collections: collections,
		Action:      action,
		At:          time.Now().UTC(),
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		log.Printf("WARN: Failed to publish %s change for tenant %s: %v", action, tenantID, err)
	}
}
