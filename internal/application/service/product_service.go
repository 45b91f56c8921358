package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// ProductService handles product catalog operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	UserID        uuid.UUID
	Name          string
	Category      string
	Unit          string
	StockQuantity int
	StockAlert    int
	PurchasePrice float64
	SellingPrice  float64
}

// CreateProduct creates a new catalog entry
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if input.StockQuantity < 0 {
		return nil, apperror.NewInvalidQuantityError("Stock quantity cannot be negative")
	}

	existing, err := s.productRepo.GetByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewBadRequestError("Product name already exists")
	}

	product := &entity.Product{
		Name:          input.Name,
		Category:      input.Category,
		Unit:          input.Unit,
		StockQuantity: input.StockQuantity,
		StockAlert:    input.StockAlert,
		CreatedBy:     input.UserID,
	}
	product.SetPurchasePriceFromDecimal(input.PurchasePrice)
	product.SetSellingPriceFromDecimal(input.SellingPrice)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProductInput represents the update product input; nil fields are left unchanged
type UpdateProductInput struct {
	Name          *string
	Category      *string
	Unit          *string
	StockAlert    *int
	PurchasePrice *float64
	SellingPrice  *float64
}

// UpdateProduct updates catalog fields. Stock is deliberately not updatable
// here; it only moves through reservations, restocks and sales.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != product.Name {
		existing, err := s.productRepo.GetByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewBadRequestError("Product name already exists")
		}
		product.Name = *input.Name
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.StockAlert != nil {
		product.StockAlert = *input.StockAlert
	}
	if input.PurchasePrice != nil {
		product.SetPurchasePriceFromDecimal(*input.PurchasePrice)
	}
	if input.SellingPrice != nil {
		product.SetSellingPriceFromDecimal(*input.SellingPrice)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a product. Historical sale lines keep their
// snapshots, so reports survive the removal.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListProducts retrieves products with filtering and pagination
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pager := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pager), nil
}

// GetLowStockProducts returns products at or below their stock alert threshold
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}
