package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/enum"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// OrderService handles the shopping order lifecycle: a planned purchase is
// created Pending, may be edited or deleted while Pending, and flips exactly
// once to Purchased, which feeds the received quantity into the stock ledger.
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	UserID        uuid.UUID
	ItemName      string
	Category      string
	Quantity      int
	PurchasePrice float64
	SellingPrice  float64
	Notes         *string
}

// CreateOrder creates a new pending shopping order
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.ShoppingOrder, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}
	if input.ItemName == "" {
		return nil, apperror.NewBadRequestError("Item name is required")
	}
	if input.PurchasePrice < 0 || input.SellingPrice < 0 {
		return nil, apperror.NewBadRequestError("Prices cannot be negative")
	}

	order := &entity.ShoppingOrder{
		ItemName:  input.ItemName,
		Category:  input.Category,
		Quantity:  input.Quantity,
		Status:    enum.OrderStatusPending,
		Notes:     input.Notes,
		CreatedBy: input.UserID,
	}
	order.SetPurchasePriceFromDecimal(input.PurchasePrice)
	order.SetSellingPriceFromDecimal(input.SellingPrice)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder retrieves a shopping order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.ShoppingOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// UpdateOrderInput represents the update order input; nil fields are left unchanged
type UpdateOrderInput struct {
	ItemName      *string
	Category      *string
	Quantity      *int
	PurchasePrice *float64
	SellingPrice  *float64
	Notes         *string
}

// UpdateOrder edits a pending order. Purchased orders are frozen; their
// quantities already moved into stock and must keep matching what arrived.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, input *UpdateOrderInput) (*entity.ShoppingOrder, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsPurchased() {
		return nil, apperror.NewInvalidStateError("Purchased orders cannot be edited")
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
		}
		order.Quantity = *input.Quantity
	}
	if input.ItemName != nil {
		if *input.ItemName == "" {
			return nil, apperror.NewBadRequestError("Item name is required")
		}
		order.ItemName = *input.ItemName
	}
	if input.Category != nil {
		order.Category = *input.Category
	}
	if input.PurchasePrice != nil {
		if *input.PurchasePrice < 0 {
			return nil, apperror.NewBadRequestError("Prices cannot be negative")
		}
		order.SetPurchasePriceFromDecimal(*input.PurchasePrice)
	}
	if input.SellingPrice != nil {
		if *input.SellingPrice < 0 {
			return nil, apperror.NewBadRequestError("Prices cannot be negative")
		}
		order.SetSellingPriceFromDecimal(*input.SellingPrice)
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes a pending order. Purchased orders stay: they are the
// provenance of stock already on the shelf.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.IsPurchased() {
		return apperror.NewInvalidStateError("Purchased orders cannot be deleted")
	}
	return s.orderRepo.Delete(ctx, id)
}

// ListOrders retrieves shopping orders with filtering and pagination
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.ShoppingOrder], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pager := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pager), nil
}

// MarkPurchased flips the order to Purchased and restocks the matching
// product in one transaction. When purchasedAt is zero, today is used.
// A second call reports AlreadyPurchased and never restocks again.
func (s *OrderService) MarkPurchased(ctx context.Context, id uuid.UUID, purchasedAt time.Time) (*entity.ShoppingOrder, *entity.Product, error) {
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}
	return s.orderRepo.MarkPurchased(ctx, id, purchasedAt)
}

// PurchaseSummary aggregates the purchased orders in a listing
type PurchaseSummary struct {
	TotalSpent     float64 `json:"total_spent"`
	ExpectedProfit float64 `json:"expected_profit"`
	OrderCount     int     `json:"order_count"`
}

// ListPurchased retrieves purchased orders with spend and expected profit totals
func (s *OrderService) ListPurchased(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.ShoppingOrder], *PurchaseSummary, error) {
	purchased := enum.OrderStatusPurchased
	params.Status = &purchased

	result, err := s.ListOrders(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	summary := &PurchaseSummary{OrderCount: len(result.Items)}
	var spentCents, profitCents int64
	for i := range result.Items {
		o := &result.Items[i]
		spentCents += o.PurchasePrice * int64(o.Quantity)
		profitCents += o.ExpectedProfit()
	}
	summary.TotalSpent = float64(spentCents) / 100
	summary.ExpectedProfit = float64(profitCents) / 100

	return result, summary, nil
}
