package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	domainRepo "github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR category ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.LowStock {
		query = query.Where("stock_quantity <= stock_alert")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	if params.SortBy != "" {
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(sortBy + " " + sortOrder).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity <= stock_alert").
		Order("stock_quantity ASC").
		Find(&products).Error
	return products, err
}

// CostBasis reads purchase prices for the requested products, including
// soft-deleted rows: removing a product from the catalog must not zero out
// the cost basis of its historical sale lines.
func (r *productRepository) CostBasis(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	costs := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return costs, nil
	}

	var rows []struct {
		ID            uuid.UUID
		PurchasePrice int64
	}
	err := r.db.WithContext(ctx).Unscoped().Model(&entity.Product{}).
		Select("id", "purchase_price").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		costs[row.ID] = row.PurchasePrice
	}
	return costs, nil
}

// AtomicDecrement decrements stock only if sufficient quantity exists.
// Uses: UPDATE products SET stock_quantity = stock_quantity - qty
//       WHERE id = ? AND stock_quantity >= qty
func (r *productRepository) AtomicDecrement(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))

	if result.Error != nil {
		return false, result.Error
	}

	// No rows affected means the conditional check failed
	return result.RowsAffected > 0, nil
}

// AtomicIncrementBatch adds stock for multiple products in one transaction,
// touching products in ascending id order to keep lock acquisition
// consistent with the decrement path.
func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	if len(increments) == 0 {
		return nil
	}

	ids := sortedIDs(increments)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := tx.Model(&entity.Product{}).
				Where("id = ?", id).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", increments[id])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Restock adds stock to the product named in the input, creating it when it
// does not exist yet. Non-zero prices refresh the catalog entry; zero prices
// leave the existing ones alone (prices are snapshotted at restock time).
func (r *productRepository) Restock(ctx context.Context, input domainRepo.RestockInput) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return restockTx(tx, input, &product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// restockTx runs the create-or-increment inside an existing transaction so
// the order repository can reuse it when flipping an order to Purchased.
func restockTx(tx *gorm.DB, input domainRepo.RestockInput, out *entity.Product) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(out, "name = ?", input.Name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		*out = entity.Product{
			Name:          input.Name,
			Category:      input.Category,
			Unit:          input.Unit,
			StockQuantity: input.Quantity,
			PurchasePrice: input.PurchasePrice,
			SellingPrice:  input.SellingPrice,
			CreatedBy:     input.CreatedBy,
		}
		return tx.Create(out).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"stock_quantity": gorm.Expr("stock_quantity + ?", input.Quantity),
	}
	if input.PurchasePrice > 0 {
		updates["purchase_price"] = input.PurchasePrice
		out.PurchasePrice = input.PurchasePrice
	}
	if input.SellingPrice > 0 {
		updates["selling_price"] = input.SellingPrice
		out.SellingPrice = input.SellingPrice
	}
	if err := tx.Model(&entity.Product{}).Where("id = ?", out.ID).Updates(updates).Error; err != nil {
		return err
	}
	out.StockQuantity += input.Quantity
	return nil
}

// sortedIDs returns the map keys in ascending order. Locking products in a
// fixed global order prevents deadlock between concurrent multi-product
// transactions that overlap in different orders.
func sortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
