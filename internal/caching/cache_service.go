package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Collection keys. A key ending in "*" passed to InvalidateCollections
// matches every key with that prefix.
const (
	KeyStockLevels        = "stock-levels"
	KeyAdjustments        = "adjustments"
	KeyAlerts             = "alerts"
	KeyAlertRules         = "alert-rules"
	KeyTransfers          = "transfers"
	KeyWarehouseInventory = "warehouse-inventory"
)

// WarehouseInventoryKey is the collection key of one warehouse's inventory
func WarehouseInventoryKey(warehouseID uuid.UUID) string {
	return KeyWarehouseInventory + ":" + warehouseID.String()
}

// AllWarehouseInventory matches the inventory collections of every warehouse
const AllWarehouseInventory = KeyWarehouseInventory + ":*"

// ErrStaleCollection is returned by SetCollection when the collection was
// invalidated after its generation was read
var ErrStaleCollection = errors.New("collection changed while loading")

type CacheService interface {
	// Collection caching. GetCollection decodes into dest and reports a hit.
	GetCollection(ctx context.Context, tenantID uuid.UUID, key string, dest any) (bool, error)
	// CollectionGeneration is read before loading a collection and handed to
	// SetCollection, which only writes if no invalidation happened in between.
	CollectionGeneration(ctx context.Context, tenantID uuid.UUID, key string) (int64, error)
	SetCollection(ctx context.Context, tenantID uuid.UUID, key string, generation int64, value any, ttl time.Duration) error
	InvalidateCollections(ctx context.Context, tenantID uuid.UUID, keys ...string) error

	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NormalizeAddr strips a redis:// or rediss:// scheme from addr
func NormalizeAddr(addr string) string {
	for _, scheme := range []string{"redis://", "rediss://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimPrefix(addr, scheme)
		}
	}
	return addr
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := NormalizeAddr(addr)

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("Redis connection established (%s)", parsedAddr)
	}

	return &redisCacheService{client: client}
}

func collectionKey(tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("stockroom:collection:%s:%s", tenantID.String(), key)
}

// generationKey is shared by every key of a collection family, so
// "warehouse-inventory:<id>" and "warehouse-inventory:*" bump the same counter
func generationKey(tenantID uuid.UUID, key string) string {
	family, _, _ := strings.Cut(strings.TrimSuffix(key, "*"), ":")
	return fmt.Sprintf("stockroom:generation:%s:%s", tenantID.String(), family)
}

// collectionFamilies are bumped when a whole tenant is invalidated
var collectionFamilies = []string{
	KeyStockLevels, KeyAdjustments, KeyAlerts, KeyAlertRules, KeyTransfers, KeyWarehouseInventory,
}

func (r *redisCacheService) GetCollection(ctx context.Context, tenantID uuid.UUID, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, collectionKey(tenantID, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) CollectionGeneration(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(tenantID, key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (r *redisCacheService) SetCollection(ctx context.Context, tenantID uuid.UUID, key string, generation int64, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	genKey := generationKey(tenantID, key)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return ErrStaleCollection
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, collectionKey(tenantID, key), data, ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleCollection
	}
	return err
}

// InvalidateCollections bumps the generation of every named family before
// deleting, so loads already in flight cannot write their result back
func (r *redisCacheService) InvalidateCollections(ctx context.Context, tenantID uuid.UUID, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.bumpGenerations(ctx, tenantID, keys...); err != nil {
		return err
	}

	var exact []string
	for _, key := range keys {
		if strings.HasSuffix(key, "*") {
			if err := r.deleteMatching(ctx, collectionKey(tenantID, key)); err != nil {
				return err
			}
			continue
		}
		exact = append(exact, collectionKey(tenantID, key))
	}
	if len(exact) > 0 {
		return r.client.Del(ctx, exact...).Err()
	}
	return nil
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	if err := r.bumpGenerations(ctx, tenantID, collectionFamilies...); err != nil {
		return err
	}
	return r.deleteMatching(ctx, fmt.Sprintf("stockroom:collection:%s:*", tenantID.String()))
}

func (r *redisCacheService) bumpGenerations(ctx context.Context, tenantID uuid.UUID, keys ...string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(tenantID, key))
		}
		return nil
	})
	return err
}

// deleteMatching walks the keyspace with SCAN so large databases are not blocked
func (r *redisCacheService) deleteMatching(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

// rateLimitScript counts a hit and makes sure the counter expires, also
// repairing a counter left without a TTL
var rateLimitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("stockroom:ratelimit:%s", key)
	count, err := rateLimitScript.Run(ctx, r.client, []string{cacheKey}, window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
