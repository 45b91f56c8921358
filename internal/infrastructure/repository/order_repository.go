package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/enum"
	domainRepo "github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new shopping order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.ShoppingOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ShoppingOrder, error) {
	var order entity.ShoppingOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.ShoppingOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.ShoppingOrder{}, "id = ?", id).Error
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.ShoppingOrder, int64, error) {
	var orders []entity.ShoppingOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ShoppingOrder{})

	if params.Search != "" {
		query = query.Where("item_name ILIKE ? OR category ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.StartDate != nil {
		query = query.Where("purchase_date >= ?", params.StartDate.Format("2006-01-02"))
	}
	if params.EndDate != nil {
		query = query.Where("purchase_date <= ?", params.EndDate.Format("2006-01-02"))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&orders).Error

	return orders, total, err
}

// MarkPurchased performs the one-way Pending -> Purchased transition and the
// matching restock as a single transaction. The state flip is a conditional
// UPDATE guarded on status = Pending, so a second call (or a concurrent
// duplicate) affects zero rows and reports AlreadyPurchased without ever
// restocking twice.
func (r *orderRepository) MarkPurchased(ctx context.Context, id uuid.UUID, purchasedAt time.Time) (*entity.ShoppingOrder, *entity.Product, error) {
	var order entity.ShoppingOrder
	var product entity.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Order")
			}
			return err
		}

		result := tx.Model(&entity.ShoppingOrder{}).
			Where("id = ? AND status = ?", id, enum.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":        enum.OrderStatusPurchased,
				"purchase_date": purchasedAt.Format("2006-01-02"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NewAlreadyPurchasedError()
		}

		if err := restockTx(tx, domainRepo.RestockInput{
			Name:          order.ItemName,
			Category:      order.Category,
			Quantity:      order.Quantity,
			PurchasePrice: order.PurchasePrice,
			SellingPrice:  order.SellingPrice,
			CreatedBy:     order.CreatedBy,
		}, &product); err != nil {
			return err
		}

		order.Status = enum.OrderStatusPurchased
		order.PurchaseDate = &purchasedAt
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &order, &product, nil
}
