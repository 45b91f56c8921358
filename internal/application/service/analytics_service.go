package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/cache"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
)

// AnalyticsService produces derived views over committed sale history. It
// never writes; reports are recomputed on demand and optionally served from
// a short-lived cache.
type AnalyticsService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	cache       cache.AnalyticsCache
	cacheTTL    time.Duration
	topLimit    int
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	analyticsCache cache.AnalyticsCache,
	cacheTTL time.Duration,
	topLimit int,
) *AnalyticsService {
	if topLimit <= 0 {
		topLimit = 10
	}
	return &AnalyticsService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		cache:       analyticsCache,
		cacheTTL:    cacheTTL,
		topLimit:    topLimit,
	}
}

// AnalyticsQuery describes a report request
type AnalyticsQuery struct {
	StartDate   time.Time
	EndDate     time.Time
	Granularity Granularity
	// ZeroFill inserts empty daily buckets for charting
	ZeroFill bool
	// TopLimit overrides the configured top-sellers cap when positive
	TopLimit int
}

// AnalyticsReport is the full report for a window
type AnalyticsReport struct {
	StartDate           string         `json:"start_date"`
	EndDate             string         `json:"end_date"`
	Granularity         Granularity    `json:"granularity"`
	Rollup              []RollupBucket `json:"rollup"`
	TopProducts         []TopProduct   `json:"top_products"`
	CategoryPerformance []CategoryStat `json:"category_performance"`
	TotalRevenue        float64        `json:"total_revenue"`
	TotalProfit         float64        `json:"total_profit"`
	TransactionCount    int            `json:"transaction_count"`
	AverageOrderValue   float64        `json:"average_order_value"`
}

// GetAnalytics computes the report for an inclusive calendar date range.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, query *AnalyticsQuery) (*AnalyticsReport, error) {
	if query.EndDate.Before(query.StartDate) {
		return nil, apperror.NewBadRequestError("End date must not precede start date")
	}

	key := s.cacheKey(query)
	if payload, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var report AnalyticsReport
		if err := json.Unmarshal(payload, &report); err == nil {
			return &report, nil
		}
		// Corrupt payload; fall through and recompute.
	}

	sales, err := s.saleRepo.QueryRange(ctx, query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	costs, err := s.costBasis(ctx, sales)
	if err != nil {
		return nil, err
	}

	rollup := Rollup(sales, costs, query.Granularity)
	if query.ZeroFill && query.Granularity == GranularityDaily {
		rollup = zeroFillDaily(rollup, query.StartDate, query.EndDate)
	}

	limit := query.TopLimit
	if limit <= 0 {
		limit = s.topLimit
	}

	revenueCents, profitCents, count := totalsCents(sales, costs)

	report := &AnalyticsReport{
		StartDate:           query.StartDate.Format("2006-01-02"),
		EndDate:             query.EndDate.Format("2006-01-02"),
		Granularity:         query.Granularity,
		Rollup:              rollup,
		TopProducts:         TopProducts(sales, limit),
		CategoryPerformance: CategoryPerformance(sales, costs),
		TotalRevenue:        float64(revenueCents) / 100,
		TotalProfit:         float64(profitCents) / 100,
		TransactionCount:    count,
		AverageOrderValue:   averageOrderValue(revenueCents, count),
	}

	if payload, err := json.Marshal(report); err == nil {
		_ = s.cache.Set(ctx, key, payload, s.cacheTTL)
	}

	return report, nil
}

// costBasis collects the current purchase price of every product referenced
// by the window, soft-deleted products included, so profit keeps a cost basis
// after a product leaves the catalog.
func (s *AnalyticsService) costBasis(ctx context.Context, sales []entity.Sale) (map[uuid.UUID]int64, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for i := range sales {
		for j := range sales[i].Lines {
			id := sales[i].Lines[j].ProductID
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	return s.productRepo.CostBasis(ctx, ids)
}

func (s *AnalyticsService) cacheKey(query *AnalyticsQuery) string {
	return fmt.Sprintf("%s:%s:%s:%t:%d",
		query.StartDate.Format("2006-01-02"),
		query.EndDate.Format("2006-01-02"),
		query.Granularity,
		query.ZeroFill,
		query.TopLimit,
	)
}
