package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/repository/memory"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
)

// mapCache is an in-memory AnalyticsCache for asserting cache behavior.
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return payload, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	c.sets++
	return nil
}

func (c *mapCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

type analyticsFixture struct {
	store     *memory.Store
	sales     *SaleService
	analytics *AnalyticsService
	cache     *mapCache
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	store := memory.NewStore()
	c := newMapCache()
	return &analyticsFixture{
		store:     store,
		sales:     NewSaleService(store.Sales(), store.Products(), c),
		analytics: NewAnalyticsService(store.Sales(), store.Products(), c, time.Minute, 10),
		cache:     c,
	}
}

func (f *analyticsFixture) submit(t *testing.T, date time.Time, lines []SaleLineInput) {
	t.Helper()
	_, err := f.sales.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID:   uuid.New(),
		SaleDate: date,
		Lines:    lines,
	})
	require.NoError(t, err)
}

func TestGetAnalyticsEndToEnd(t *testing.T) {
	f := newAnalyticsFixture(t)
	// Selling at 35.00 with cost 17.50
	oil := mustSeedProduct(t, f.store, "Engine Oil", 50, 3500)
	// Selling at 200.00 with cost 100.00
	battery := mustSeedProduct(t, f.store, "Battery", 50, 20000)

	f.submit(t, day(2025, 6, 1), []SaleLineInput{{ProductID: oil.ID, Quantity: 2}})
	f.submit(t, day(2025, 6, 1), []SaleLineInput{{ProductID: battery.ID, Quantity: 1}})
	f.submit(t, day(2025, 6, 2), []SaleLineInput{{ProductID: oil.ID, Quantity: 1}})

	report, err := f.analytics.GetAnalytics(context.Background(), &AnalyticsQuery{
		StartDate:   day(2025, 6, 1),
		EndDate:     day(2025, 6, 2),
		Granularity: GranularityDaily,
	})
	require.NoError(t, err)

	// Revenue: 70 + 200 + 35 = 305
	assert.Equal(t, 305.0, report.TotalRevenue)
	// Profit: half of every sale price
	assert.Equal(t, 152.5, report.TotalProfit)
	assert.Equal(t, 3, report.TransactionCount)
	// 305 / 3, sub-cent remainder kept
	assert.InDelta(t, 101.6667, report.AverageOrderValue, 0.0001)

	require.Len(t, report.Rollup, 2)
	assert.Equal(t, 270.0, report.Rollup[0].Sales)
	assert.Equal(t, 35.0, report.Rollup[1].Sales)

	require.NotEmpty(t, report.TopProducts)
	assert.Equal(t, "Battery", report.TopProducts[0].ProductName)
}

func TestGetAnalyticsWindowIsInclusive(t *testing.T) {
	f := newAnalyticsFixture(t)
	oil := mustSeedProduct(t, f.store, "Engine Oil", 50, 3500)

	f.submit(t, day(2025, 6, 1), []SaleLineInput{{ProductID: oil.ID, Quantity: 1}})
	f.submit(t, day(2025, 6, 5), []SaleLineInput{{ProductID: oil.ID, Quantity: 1}})
	f.submit(t, day(2025, 6, 6), []SaleLineInput{{ProductID: oil.ID, Quantity: 1}})

	report, err := f.analytics.GetAnalytics(context.Background(), &AnalyticsQuery{
		StartDate:   day(2025, 6, 1),
		EndDate:     day(2025, 6, 5),
		Granularity: GranularityDaily,
	})
	require.NoError(t, err)

	// Both boundary days count; June 6 does not
	assert.Equal(t, 2, report.TransactionCount)
	assert.Equal(t, 70.0, report.TotalRevenue)
}

func TestGetAnalyticsEmptyWindow(t *testing.T) {
	f := newAnalyticsFixture(t)

	report, err := f.analytics.GetAnalytics(context.Background(), &AnalyticsQuery{
		StartDate:   day(2025, 6, 1),
		EndDate:     day(2025, 6, 30),
		Granularity: GranularityDaily,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.TotalRevenue)
	assert.Equal(t, 0.0, report.AverageOrderValue)
	assert.Equal(t, 0, report.TransactionCount)
	assert.Empty(t, report.Rollup)
	assert.Empty(t, report.TopProducts)
}

func TestGetAnalyticsRejectsInvertedRange(t *testing.T) {
	f := newAnalyticsFixture(t)

	_, err := f.analytics.GetAnalytics(context.Background(), &AnalyticsQuery{
		StartDate:   day(2025, 6, 10),
		EndDate:     day(2025, 6, 1),
		Granularity: GranularityDaily,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestGetAnalyticsKeepsCostBasisForDeletedProduct(t *testing.T) {
	f := newAnalyticsFixture(t)
	oil := mustSeedProduct(t, f.store, "Engine Oil", 50, 3500)

	f.submit(t, day(2025, 6, 1), []SaleLineInput{{ProductID: oil.ID, Quantity: 2}})

	// Removing the product from the catalog must not zero historical profit
	require.NoError(t, f.store.Products().Delete(context.Background(), oil.ID))

	report, err := f.analytics.GetAnalytics(context.Background(), &AnalyticsQuery{
		StartDate:   day(2025, 6, 1),
		EndDate:     day(2025, 6, 1),
		Granularity: GranularityDaily,
	})
	require.NoError(t, err)
	assert.Equal(t, 35.0, report.TotalProfit)
}

func TestGetAnalyticsServesFromCacheUntilNextSale(t *testing.T) {
	f := newAnalyticsFixture(t)
	oil := mustSeedProduct(t, f.store, "Engine Oil", 50, 3500)

	f.submit(t, day(2025, 6, 1), []SaleLineInput{{ProductID: oil.ID, Quantity: 1}})

	query := &AnalyticsQuery{
		StartDate:   day(2025, 6, 1),
		EndDate:     day(2025, 6, 1),
		Granularity: GranularityDaily,
	}

	first, err := f.analytics.GetAnalytics(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.analytics.GetAnalytics(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
	assert.Equal(t, first.TotalRevenue, second.TotalRevenue)

	// A new sale invalidates the cache; the next read recomputes
	f.submit(t, day(2025, 6, 1), []SaleLineInput{{ProductID: oil.ID, Quantity: 1}})

	third, err := f.analytics.GetAnalytics(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 70.0, third.TotalRevenue)
}
