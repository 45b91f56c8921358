package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
)

// StockService is the stock ledger: every quantity movement outside a sale
// commit goes through it. Decrements never drop a product below zero.
type StockService struct {
	productRepo repository.ProductRepository
}

// NewStockService creates a new stock service
func NewStockService(productRepo repository.ProductRepository) *StockService {
	return &StockService{productRepo: productRepo}
}

// Reserve decrements stock for a single product, failing with
// InsufficientStock when availability is below qty. The check and decrement
// are one atomic step in the repository, so concurrent reservations can never
// jointly oversell.
func (s *StockService) Reserve(ctx context.Context, productID uuid.UUID, qty int) (*entity.Product, error) {
	if qty <= 0 {
		return nil, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}

	ok, err := s.productRepo.AtomicDecrement(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}
		return nil, apperror.NewInsufficientStockError(product.ID, product.Name)
	}

	return s.productRepo.GetByID(ctx, productID)
}

// ReserveBatch decrements stock for multiple products all-or-nothing.
// Products are processed in ascending ID order; on the first failure every
// decrement already applied is compensated before the error returns, so a
// failed batch leaves all quantities as they were.
func (s *StockService) ReserveBatch(ctx context.Context, quantities map[uuid.UUID]int) error {
	for _, qty := range quantities {
		if qty <= 0 {
			return apperror.NewInvalidQuantityError("Quantity must be greater than zero")
		}
	}

	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	applied := make(map[uuid.UUID]int)
	for _, id := range ids {
		qty := quantities[id]
		ok, err := s.productRepo.AtomicDecrement(ctx, id, qty)
		if err == nil && !ok {
			product, getErr := s.productRepo.GetByID(ctx, id)
			if getErr != nil {
				err = getErr
			} else if product == nil {
				err = apperror.NewNotFoundError("Product")
			} else {
				err = apperror.NewInsufficientStockError(product.ID, product.Name)
			}
		}
		if err != nil {
			if len(applied) > 0 {
				if compErr := s.productRepo.AtomicIncrementBatch(ctx, applied); compErr != nil {
					return compErr
				}
			}
			return err
		}
		applied[id] = qty
	}
	return nil
}

// Release returns previously reserved stock to a product
func (s *StockService) Release(ctx context.Context, productID uuid.UUID, qty int) (*entity.Product, error) {
	if qty <= 0 {
		return nil, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if err := s.productRepo.AtomicIncrementBatch(ctx, map[uuid.UUID]int{productID: qty}); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}

// Restock adds stock to a product identified by name, creating the catalog
// entry when it does not exist yet. Non-zero prices refresh the entry. A zero
// quantity is a valid no-op increment, useful for price-only refreshes.
func (s *StockService) Restock(ctx context.Context, input repository.RestockInput) (*entity.Product, error) {
	if input.Quantity < 0 {
		return nil, apperror.NewInvalidQuantityError("Quantity cannot be negative")
	}
	if input.Name == "" {
		return nil, apperror.NewBadRequestError("Product name is required")
	}
	return s.productRepo.Restock(ctx, input)
}
