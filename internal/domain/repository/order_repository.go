package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/enum"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// OrderFilterParams contains filtering parameters for shopping order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
	Status     *enum.OrderStatus
	// StartDate/EndDate filter on the purchase date (inclusive calendar range)
	StartDate *time.Time
	EndDate   *time.Time
}

// OrderRepository defines the interface for shopping order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.ShoppingOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ShoppingOrder, error)
	Update(ctx context.Context, order *entity.ShoppingOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.ShoppingOrder, int64, error)

	// MarkPurchased flips the order from Pending to Purchased, stamps
	// purchasedAt and restocks the matching product (creating it when
	// absent), all in one storage transaction: a crash can never leave a
	// Purchased order without its stock increase or vice versa. Returns
	// apperror.KindAlreadyPurchased when the order is not Pending; the
	// guard is a conditional state update, so two concurrent calls cannot
	// both restock.
	MarkPurchased(ctx context.Context, id uuid.UUID, purchasedAt time.Time) (*entity.ShoppingOrder, *entity.Product, error)
}
