package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	domainRepo "github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// Commit persists a sale and applies its stock decrements atomically.
// Products are decremented in ascending ID order so two overlapping sales
// always contend for row locks in the same sequence. A conditional UPDATE
// guarded on stock_quantity >= qty enforces the stock floor; zero rows
// affected rolls the whole sale back, so a failed line leaves no partial
// decrements and no sale row behind.
func (r *saleRepository) Commit(ctx context.Context, sale *entity.Sale, decrements map[uuid.UUID]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range sortedIDs(decrements) {
			qty := decrements[id]
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock_quantity >= ?", id, qty).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				var product entity.Product
				err := tx.First(&product, "id = ?", id).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NewNotFoundError("Product")
				}
				if err != nil {
					return err
				}
				return apperror.NewInsufficientStockError(product.ID, product.Name)
			}
		}

		return tx.Create(sale).Error
	})
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).Preload("Lines").First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{})

	if params.StartDate != nil {
		query = query.Where("sale_date >= ?", params.StartDate.Format("2006-01-02"))
	}
	if params.EndDate != nil {
		query = query.Where("sale_date <= ?", params.EndDate.Format("2006-01-02"))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Preload("Lines").
		Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("sale_date DESC, created_at DESC").
		Find(&sales).Error

	return sales, total, err
}

// QueryRange returns every sale whose sale_date falls inside the inclusive
// calendar range, oldest first, lines preloaded. Analytics rollups consume
// this as their only data source.
func (r *saleRepository) QueryRange(ctx context.Context, start, end time.Time) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := r.db.WithContext(ctx).
		Where("sale_date >= ? AND sale_date <= ?",
			start.Format("2006-01-02"), end.Format("2006-01-02")).
		Preload("Lines").
		Order("sale_date ASC, created_at ASC").
		Find(&sales).Error
	return sales, err
}
