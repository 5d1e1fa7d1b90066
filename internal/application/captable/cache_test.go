package captable

import (
	"context"
	"testing"
	"time"

	"captable-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCacheTest(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Cache{Rdb: rdb, TTL: time.Minute}, mr
}

func TestCache_SetAndGet(t *testing.T) {
	cache, _ := setupCacheTest(t)
	ctx := context.Background()
	companyID := uuid.New()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	resp := &Response{CompanyID: companyID, AsOf: asOf, TotalShares: 1000}
	cache.Set(ctx, companyID, asOf, resp)

	got, ok := cache.Get(ctx, companyID, asOf)
	require.True(t, ok)
	assert.Equal(t, companyID, got.CompanyID)
	assert.Equal(t, 1000.0, got.TotalShares)

	_, ok = cache.Get(ctx, companyID, asOf.AddDate(0, 0, 1))
	assert.False(t, ok)
}

func TestCache_InvalidateCompanyDropsOnlyThatPrefix(t *testing.T) {
	cache, mr := setupCacheTest(t)
	ctx := context.Background()
	companyA := uuid.New()
	companyB := uuid.New()

	for _, day := range []string{"2024-06-01", "2024-06-02", "2024-06-03"} {
		d, _ := time.Parse("2006-01-02", day)
		cache.Set(ctx, companyA, d, &Response{CompanyID: companyA, AsOf: d})
		cache.Set(ctx, companyB, d, &Response{CompanyID: companyB, AsOf: d})
	}
	require.Len(t, mr.Keys(), 6)

	require.NoError(t, cache.InvalidateCompany(ctx, companyA))

	assert.Len(t, mr.Keys(), 3)
	d, _ := time.Parse("2006-01-02", "2024-06-02")
	_, ok := cache.Get(ctx, companyA, d)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, companyB, d)
	assert.True(t, ok)
}

func TestCache_InvalidateCompanyNoKeysIsNoop(t *testing.T) {
	cache, _ := setupCacheTest(t)
	assert.NoError(t, cache.InvalidateCompany(context.Background(), uuid.New()))
}

func TestCachedService_ReadThrough(t *testing.T) {
	svc, db := setupCapTableTest(t)
	f := seedCapTable(t, db)
	cache, _ := setupCacheTest(t)
	cached := &CachedService{Service: svc, Cache: cache}
	ctx := context.Background()
	asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := cached.GetCapTable(ctx, f.companyID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, first.TotalShares)

	// Bypass the cache and mutate; the cached view survives until invalidated.
	require.NoError(t, db.Create(&domain.Share{
		CompanyID: f.companyID, ShareholderID: f.founder.ShareholderID,
		ShareClassID: f.ordinary.ClassID, Quantity: 400,
		AcquisitionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:          domain.ShareActive,
	}).Error)

	stale, err := cached.GetCapTable(ctx, f.companyID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, stale.TotalShares)

	require.NoError(t, cache.InvalidateCompany(ctx, f.companyID))
	fresh, err := cached.GetCapTable(ctx, f.companyID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, fresh.TotalShares)
}
