package captable

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "captable:"

// Cache is a Redis read-through cache for cap-table responses. Keys are
// prefixed per company so a mutation can drop every cached as-of view for
// that company without touching other tenants.
type Cache struct {
	Rdb *redis.Client
	TTL time.Duration
}

func cacheKey(companyID uuid.UUID, asOf time.Time) string {
	return cacheKeyPrefix + companyID.String() + ":" + asOf.UTC().Format("2006-01-02")
}

// Get returns the cached response for (company, asOf) or (nil, false).
func (c *Cache) Get(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*Response, bool) {
	if c == nil || c.Rdb == nil {
		return nil, false
	}
	b, err := c.Rdb.Get(ctx, cacheKey(companyID, asOf)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// Set stores a response under the company's prefix.
func (c *Cache) Set(ctx context.Context, companyID uuid.UUID, asOf time.Time, resp *Response) {
	if c == nil || c.Rdb == nil || c.TTL <= 0 {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = c.Rdb.Set(ctx, cacheKey(companyID, asOf), b, c.TTL).Err()
}

// InvalidateCompany deletes every cached cap-table view for the company by
// scanning the company's key prefix. Holdings change per company, so the
// prefix is the invalidation unit.
func (c *Cache) InvalidateCompany(ctx context.Context, companyID uuid.UUID) error {
	if c == nil || c.Rdb == nil {
		return nil
	}
	pattern := cacheKeyPrefix + companyID.String() + ":*"
	iter := c.Rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Rdb.Del(ctx, keys...).Err()
}

// CachedService wraps Service with the read-through cache.
type CachedService struct {
	Service *Service
	Cache   *Cache
}

// GetCapTable serves from cache when possible, computing and storing on miss.
func (cs *CachedService) GetCapTable(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*Response, error) {
	if resp, ok := cs.Cache.Get(ctx, companyID, asOf); ok {
		return resp, nil
	}
	resp, err := cs.Service.GetCapTable(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}
	cs.Cache.Set(ctx, companyID, asOf, resp)
	return resp, nil
}
