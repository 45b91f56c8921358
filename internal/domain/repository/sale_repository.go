package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// SaleFilterParams contains filtering parameters for sale history queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	// StartDate/EndDate filter on the sale date (inclusive calendar range)
	StartDate *time.Time
	EndDate   *time.Time
}

// SaleRepository defines the interface for sale transaction storage.
// Committed sales are immutable: there is deliberately no Update or Delete.
type SaleRepository interface {
	// Commit persists the sale header, all of its lines, and the stock
	// decrements for every line's product as one atomic unit - all three
	// effects land together or not at all. Products are locked in
	// ascending id order so overlapping concurrent sales cannot deadlock.
	// Returns apperror.KindInsufficientStock naming the first offending
	// product when any decrement would go negative, leaving every
	// product's stock untouched.
	Commit(ctx context.Context, sale *entity.Sale, decrements map[uuid.UUID]int) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)

	// QueryRange returns all sales with their lines whose sale date falls
	// inside the inclusive calendar range, ordered by sale date ascending.
	// Only committed rows are visible; in-flight transactions never leak
	// into analytics reads.
	QueryRange(ctx context.Context, start, end time.Time) ([]entity.Sale, error)
}
