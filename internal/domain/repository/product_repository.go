package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// RestockInput describes a stock increase applied to a product identified by
// name: if the product exists its stock grows by Quantity (and non-zero
// prices refresh the catalog entry), otherwise the product is created with
// Quantity as its initial stock.
type RestockInput struct {
	Name          string
	Category      string
	Unit          string
	Quantity      int
	PurchasePrice int64 // cents
	SellingPrice  int64 // cents
	CreatedBy     uuid.UUID
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
	LowStock   bool
	SortBy     string
	SortOrder  string
}

// ProductRepository defines the interface for product data operations.
// Stock-mutating methods are the stock ledger's storage contract: every
// decrement is a conditional atomic update, never a read-then-write.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	GetLowStock(ctx context.Context) ([]entity.Product, error)

	// CostBasis returns the purchase price in cents for each requested
	// product, including soft-deleted ones, so historical profit keeps a
	// cost basis after a product is removed from the catalog.
	CostBasis(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)

	// AtomicDecrement decrements stock only if at least qty is available.
	// Returns (true, nil) on success and (false, nil) when stock was
	// insufficient; the check and the write are a single atomic step.
	AtomicDecrement(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	// AtomicIncrementBatch unconditionally adds stock for multiple products
	// in one transaction (restocks, compensations).
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
	// Restock applies RestockInput atomically and returns the resulting product.
	Restock(ctx context.Context, input RestockInput) (*entity.Product, error)
}
