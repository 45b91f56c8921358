// Package memory provides in-memory repository implementations backed by a
// single mutex. They mirror the transactional semantics of the postgres
// repositories (conditional decrements, all-or-nothing commits) and back the
// service test suites.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/domain/enum"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
)

// Store holds all in-memory state and hands out repository views over it.
type Store struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
	orders   map[uuid.UUID]*entity.ShoppingOrder
	sales    map[uuid.UUID]*entity.Sale
	ikeys    map[string]*entity.IdempotencyKey
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]*entity.Product),
		orders:   make(map[uuid.UUID]*entity.ShoppingOrder),
		sales:    make(map[uuid.UUID]*entity.Sale),
		ikeys:    make(map[string]*entity.IdempotencyKey),
	}
}

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Orders returns the shopping order repository view of the store.
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s: s} }

// Sales returns the sale repository view of the store.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{s: s} }

// IdempotencyKeys returns the idempotency key repository view of the store.
func (s *Store) IdempotencyKeys() repository.IdempotencyRepository { return &ikeyRepo{s: s} }

type productRepo struct {
	s *Store
}

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.StockAlert == 0 {
		product.StockAlert = 10
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok || p.DeletedAt.Valid {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.findByName(name)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	products := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && !p.DeletedAt.Valid {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (r *productRepo) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product.UpdatedAt = time.Now()
	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p, ok := r.s.products[id]; ok {
		p.DeletedAt.Time = time.Now()
		p.DeletedAt.Valid = true
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var products []entity.Product
	for _, p := range r.s.products {
		if p.DeletedAt.Valid {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) &&
			!strings.Contains(strings.ToLower(p.Category), strings.ToLower(params.Search)) {
			continue
		}
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		if params.LowStock && !p.IsLowStock() {
			continue
		}
		products = append(products, *p)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	total := int64(len(products))
	params.Pagination.Validate()
	start := params.Pagination.Offset()
	if start > len(products) {
		start = len(products)
	}
	end := start + params.Pagination.PerPage
	if end > len(products) {
		end = len(products)
	}
	return products[start:end], total, nil
}

func (r *productRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var products []entity.Product
	for _, p := range r.s.products {
		if !p.DeletedAt.Valid && p.IsLowStock() {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *productRepo) CostBasis(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Soft-deleted products still contribute their cost basis.
	costs := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			costs[id] = p.PurchasePrice
		}
	}
	return costs, nil
}

func (r *productRepo) AtomicDecrement(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok || p.DeletedAt.Valid || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *productRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, qty := range increments {
		if p, ok := r.s.products[id]; ok {
			p.StockQuantity += qty
			p.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *productRepo) Restock(ctx context.Context, input repository.RestockInput) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.restockLocked(input)
	cp := *p
	return &cp, nil
}

// restockLocked applies RestockInput assuming the store lock is held.
func (s *Store) restockLocked(input repository.RestockInput) *entity.Product {
	now := time.Now()
	if p := s.findByName(input.Name); p != nil {
		p.StockQuantity += input.Quantity
		if input.PurchasePrice > 0 {
			p.PurchasePrice = input.PurchasePrice
		}
		if input.SellingPrice > 0 {
			p.SellingPrice = input.SellingPrice
		}
		p.UpdatedAt = now
		return p
	}

	p := &entity.Product{
		ID:            uuid.New(),
		Name:          input.Name,
		Category:      input.Category,
		Unit:          input.Unit,
		StockQuantity: input.Quantity,
		StockAlert:    10,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.products[p.ID] = p
	return p
}

func (s *Store) findByName(name string) *entity.Product {
	for _, p := range s.products {
		if !p.DeletedAt.Valid && p.Name == name {
			return p
		}
	}
	return nil
}

type orderRepo struct {
	s *Store
}

func (r *orderRepo) Create(ctx context.Context, order *entity.ShoppingOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ShoppingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok || o.DeletedAt.Valid {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepo) Update(ctx context.Context, order *entity.ShoppingOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order.UpdatedAt = time.Now()
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if o, ok := r.s.orders[id]; ok {
		o.DeletedAt.Time = time.Now()
		o.DeletedAt.Valid = true
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.ShoppingOrder, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var orders []entity.ShoppingOrder
	for _, o := range r.s.orders {
		if o.DeletedAt.Valid {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(o.ItemName), strings.ToLower(params.Search)) &&
			!strings.Contains(strings.ToLower(o.Category), strings.ToLower(params.Search)) {
			continue
		}
		if params.Category != "" && o.Category != params.Category {
			continue
		}
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		if params.StartDate != nil && (o.PurchaseDate == nil || o.PurchaseDate.Before(*params.StartDate)) {
			continue
		}
		if params.EndDate != nil && (o.PurchaseDate == nil || o.PurchaseDate.After(*params.EndDate)) {
			continue
		}
		orders = append(orders, *o)
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })

	total := int64(len(orders))
	params.Pagination.Validate()
	start := params.Pagination.Offset()
	if start > len(orders) {
		start = len(orders)
	}
	end := start + params.Pagination.PerPage
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end], total, nil
}

func (r *orderRepo) MarkPurchased(ctx context.Context, id uuid.UUID, purchasedAt time.Time) (*entity.ShoppingOrder, *entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok || o.DeletedAt.Valid {
		return nil, nil, apperror.NewNotFoundError("Order")
	}
	if o.Status != enum.OrderStatusPending {
		return nil, nil, apperror.NewAlreadyPurchasedError()
	}

	o.Status = enum.OrderStatusPurchased
	o.PurchaseDate = &purchasedAt
	o.UpdatedAt = time.Now()

	p := r.s.restockLocked(repository.RestockInput{
		Name:          o.ItemName,
		Category:      o.Category,
		Quantity:      o.Quantity,
		PurchasePrice: o.PurchasePrice,
		SellingPrice:  o.SellingPrice,
		CreatedBy:     o.CreatedBy,
	})

	oc := *o
	pc := *p
	return &oc, &pc, nil
}

type saleRepo struct {
	s *Store
}

func (r *saleRepo) Commit(ctx context.Context, sale *entity.Sale, decrements map[uuid.UUID]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(decrements))
	for id := range decrements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	// Validate every decrement before touching any stock so a late failure
	// cannot leave a partial commit behind.
	for _, id := range ids {
		p, ok := r.s.products[id]
		if !ok || p.DeletedAt.Valid {
			return apperror.NewNotFoundError("Product")
		}
		if p.StockQuantity < decrements[id] {
			return apperror.NewInsufficientStockError(p.ID, p.Name)
		}
	}

	for _, id := range ids {
		p := r.s.products[id]
		p.StockQuantity -= decrements[id]
		p.UpdatedAt = time.Now()
	}

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	for i := range sale.Lines {
		if sale.Lines[i].ID == uuid.Nil {
			sale.Lines[i].ID = uuid.New()
		}
		sale.Lines[i].SaleID = sale.ID
		sale.Lines[i].CreatedAt = sale.CreatedAt
	}

	cp := *sale
	cp.Lines = append([]entity.SaleLine(nil), sale.Lines...)
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Lines = append([]entity.SaleLine(nil), s.Lines...)
	return &cp, nil
}

func (r *saleRepo) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sales []entity.Sale
	for _, s := range r.s.sales {
		if params.StartDate != nil && s.SaleDate.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && s.SaleDate.After(*params.EndDate) {
			continue
		}
		cp := *s
		cp.Lines = append([]entity.SaleLine(nil), s.Lines...)
		sales = append(sales, cp)
	}

	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].SaleDate.Equal(sales[j].SaleDate) {
			return sales[i].SaleDate.After(sales[j].SaleDate)
		}
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})

	total := int64(len(sales))
	params.Pagination.Validate()
	start := params.Pagination.Offset()
	if start > len(sales) {
		start = len(sales)
	}
	end := start + params.Pagination.PerPage
	if end > len(sales) {
		end = len(sales)
	}
	return sales[start:end], total, nil
}

func (r *saleRepo) QueryRange(ctx context.Context, start, end time.Time) ([]entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sales []entity.Sale
	for _, s := range r.s.sales {
		if s.SaleDate.Before(start) || s.SaleDate.After(end) {
			continue
		}
		cp := *s
		cp.Lines = append([]entity.SaleLine(nil), s.Lines...)
		sales = append(sales, cp)
	}

	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].SaleDate.Equal(sales[j].SaleDate) {
			return sales[i].SaleDate.Before(sales[j].SaleDate)
		}
		return sales[i].CreatedAt.Before(sales[j].CreatedAt)
	})
	return sales, nil
}

type ikeyRepo struct {
	s *Store
}

func (r *ikeyRepo) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k, ok := r.s.ikeys[key]
	if !ok || k.UserID != userID {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *ikeyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = time.Now()
	cp := *ikey
	r.s.ikeys[ikey.Key] = &cp
	return nil
}

func (r *ikeyRepo) DeleteExpired(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, k := range r.s.ikeys {
		if k.IsExpired() {
			delete(r.s.ikeys, key)
		}
	}
	return nil
}
