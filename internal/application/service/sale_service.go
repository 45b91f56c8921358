package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/cache"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// SaleService handles sale transactions. A submitted sale is all-or-nothing:
// stock decrements, the sale header and its lines land in one repository
// transaction, and a committed sale is immutable.
type SaleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	cache       cache.AnalyticsCache
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	analyticsCache cache.AnalyticsCache,
) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		cache:       analyticsCache,
	}
}

// SaleLineInput represents one requested line in a sale submission.
// UnitPrice, in cents, overrides the catalog selling price when set,
// covering discounts and negotiated prices; nil charges the catalog price.
type SaleLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *int64
}

// SubmitSaleInput represents the sale submission input
type SubmitSaleInput struct {
	UserID   uuid.UUID
	SaleDate time.Time
	Lines    []SaleLineInput
}

// SubmitSale validates and commits a sale. Duplicate lines for the same
// product at the same price are merged into one, name and category are
// snapshotted from the catalog at commit time, each line is priced at its
// supplied unit price or the catalog price when none was given, and the line
// total and sale total are computed here rather than trusted from the caller.
func (s *SaleService) SubmitSale(ctx context.Context, input *SubmitSaleInput) (*entity.Sale, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewEmptyTransactionError()
	}

	// Merge duplicates before validation so two lines of the same product
	// are checked against stock as one combined quantity.
	quantities := make(map[uuid.UUID]int)
	order := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantityError("Line quantity must be greater than zero")
		}
		if line.UnitPrice != nil && *line.UnitPrice < 0 {
			return nil, apperror.NewBadRequestError("Unit price cannot be negative")
		}
		if _, seen := quantities[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	products, err := s.productRepo.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range order {
		if _, ok := byID[id]; !ok {
			return nil, apperror.NewNotFoundError("Product")
		}
	}

	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}
	saleDate = time.Date(saleDate.Year(), saleDate.Month(), saleDate.Day(), 0, 0, 0, 0, time.UTC)

	// One stored line per product and effective price. Lines for the same
	// product at different prices stay separate so each keeps its own total.
	type lineKey struct {
		productID uuid.UUID
		unitPrice int64
	}
	lineQty := make(map[lineKey]int)
	lineOrder := make([]lineKey, 0, len(input.Lines))
	for _, line := range input.Lines {
		price := byID[line.ProductID].SellingPrice
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		key := lineKey{productID: line.ProductID, unitPrice: price}
		if _, seen := lineQty[key]; !seen {
			lineOrder = append(lineOrder, key)
		}
		lineQty[key] += line.Quantity
	}

	sale := &entity.Sale{
		SaleDate:  saleDate,
		CreatedBy: input.UserID,
	}
	for _, key := range lineOrder {
		product := byID[key.productID]
		qty := lineQty[key]
		lineTotal := key.unitPrice * int64(qty)
		sale.Lines = append(sale.Lines, entity.SaleLine{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductCategory: product.Category,
			Quantity:        qty,
			UnitPrice:       key.unitPrice,
			TotalPrice:      lineTotal,
		})
		sale.TotalAmount += lineTotal
	}

	if err := s.saleRepo.Commit(ctx, sale, quantities); err != nil {
		return nil, err
	}

	// Sales history changed; cached reports are stale now. A cache failure
	// must not undo a committed sale, the TTL will catch up.
	_ = s.cache.Invalidate(ctx)

	return sale, nil
}

// GetSale retrieves a sale with its lines
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales retrieves sale history with date filtering and pagination
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pager := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pager), nil
}
