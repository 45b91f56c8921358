package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/cache"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/repository/memory"
	"github.com/dukkan-app/dukkan-api/pkg/apperror"
)

func newSaleFixture() (*SaleService, *memory.Store) {
	store := memory.NewStore()
	svc := NewSaleService(store.Sales(), store.Products(), cache.NoopAnalyticsCache{})
	return svc, store
}

func mustSeedProduct(t *testing.T, store *memory.Store, name string, stock int, sellingCents int64) *entity.Product {
	t.Helper()
	product := &entity.Product{
		Name:          name,
		Category:      "General",
		StockQuantity: stock,
		SellingPrice:  sellingCents,
		PurchasePrice: sellingCents / 2,
	}
	if err := store.Products().Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestSubmitSaleRejectsEmptyTransaction(t *testing.T) {
	svc, _ := newSaleFixture()

	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{UserID: uuid.New()})
	if !apperror.IsKind(err, apperror.KindEmptyTransaction) {
		t.Fatalf("err = %v, want empty_transaction", err)
	}
}

func TestSubmitSaleRejectsNonPositiveQuantity(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 10, 3500)

	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines:  []SaleLineInput{{ProductID: product.ID, Quantity: 0}},
	})
	if !apperror.IsKind(err, apperror.KindInvalidQuantity) {
		t.Fatalf("err = %v, want invalid_quantity", err)
	}
}

func TestSubmitSaleUnknownProduct(t *testing.T) {
	svc, _ := newSaleFixture()

	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines:  []SaleLineInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestSubmitSaleInsufficientStockKeepsStock(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 5, 3500)

	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines:  []SaleLineInput{{ProductID: product.ID, Quantity: 6}},
	})
	if !apperror.IsKind(err, apperror.KindInsufficientStock) {
		t.Fatalf("err = %v, want insufficient_stock", err)
	}

	current, _ := store.Products().GetByID(context.Background(), product.ID)
	if current.StockQuantity != 5 {
		t.Errorf("stock = %d after failed sale, want 5", current.StockQuantity)
	}
}

func TestSubmitSaleAllOrNothingAcrossLines(t *testing.T) {
	svc, store := newSaleFixture()
	first := mustSeedProduct(t, store, "Brake Pads", 10, 8000)
	second := mustSeedProduct(t, store, "Engine Oil", 10, 3500)
	third := mustSeedProduct(t, store, "Wiper Blades", 1, 1500)

	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines: []SaleLineInput{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 3},
			{ProductID: third.ID, Quantity: 4},
		},
	})
	if !apperror.IsKind(err, apperror.KindInsufficientStock) {
		t.Fatalf("err = %v, want insufficient_stock", err)
	}
	appErr := apperror.GetAppError(err)
	if appErr.ProductID == nil || *appErr.ProductID != third.ID {
		t.Errorf("offending product = %v, want %v", appErr.ProductID, third.ID)
	}

	// Lines 1 and 2 must not have decremented
	for _, p := range []*entity.Product{first, second} {
		current, _ := store.Products().GetByID(context.Background(), p.ID)
		if current.StockQuantity != 10 {
			t.Errorf("%s stock = %d after failed sale, want 10", p.Name, current.StockQuantity)
		}
	}
}

func TestSubmitSaleComputesTotals(t *testing.T) {
	svc, store := newSaleFixture()
	filter := mustSeedProduct(t, store, "Air Filter", 10, 3500)
	battery := mustSeedProduct(t, store, "Battery", 3, 20000)

	sale, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID:   uuid.New(),
		SaleDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Lines: []SaleLineInput{
			{ProductID: filter.ID, Quantity: 2},
			{ProductID: battery.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("SubmitSale: %v", err)
	}

	// 2 x 35.00 + 1 x 200.00 = 270.00
	if sale.TotalAmount != 27000 {
		t.Errorf("total = %d cents, want 27000", sale.TotalAmount)
	}

	var lineSum int64
	for _, line := range sale.Lines {
		lineSum += line.TotalPrice
	}
	if lineSum != sale.TotalAmount {
		t.Errorf("line sum %d != total %d", lineSum, sale.TotalAmount)
	}

	p1, _ := store.Products().GetByID(context.Background(), filter.ID)
	p2, _ := store.Products().GetByID(context.Background(), battery.ID)
	if p1.StockQuantity != 8 || p2.StockQuantity != 2 {
		t.Errorf("stock = %d/%d, want 8/2", p1.StockQuantity, p2.StockQuantity)
	}
}

func TestSubmitSaleMergesDuplicateLines(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 10, 3500)

	sale, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines: []SaleLineInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("SubmitSale: %v", err)
	}

	if len(sale.Lines) != 1 {
		t.Fatalf("lines = %d, want merged into 1", len(sale.Lines))
	}
	if sale.Lines[0].Quantity != 5 {
		t.Errorf("merged quantity = %d, want 5", sale.Lines[0].Quantity)
	}

	current, _ := store.Products().GetByID(context.Background(), product.ID)
	if current.StockQuantity != 5 {
		t.Errorf("stock = %d, want 5", current.StockQuantity)
	}
}

func TestSubmitSaleMergedLinesCheckedAgainstCombinedStock(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 4, 3500)

	// 3 + 2 = 5 exceeds the 4 in stock even though each line alone fits
	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines: []SaleLineInput{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: 2},
		},
	})
	if !apperror.IsKind(err, apperror.KindInsufficientStock) {
		t.Fatalf("err = %v, want insufficient_stock", err)
	}

	current, _ := store.Products().GetByID(context.Background(), product.ID)
	if current.StockQuantity != 4 {
		t.Errorf("stock = %d, want 4", current.StockQuantity)
	}
}

func TestSubmitSaleHonorsSuppliedUnitPrice(t *testing.T) {
	svc, store := newSaleFixture()
	filter := mustSeedProduct(t, store, "Air Filter", 10, 3500)
	battery := mustSeedProduct(t, store, "Battery", 3, 20000)

	// The battery goes out at a negotiated 180.00 instead of the catalog 200.00
	discounted := int64(18000)
	sale, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines: []SaleLineInput{
			{ProductID: filter.ID, Quantity: 2},
			{ProductID: battery.ID, Quantity: 1, UnitPrice: &discounted},
		},
	})
	if err != nil {
		t.Fatalf("SubmitSale: %v", err)
	}

	// 2 x 35.00 + 1 x 180.00 = 250.00
	if sale.TotalAmount != 25000 {
		t.Errorf("total = %d cents, want 25000", sale.TotalAmount)
	}
	for _, line := range sale.Lines {
		switch line.ProductID {
		case filter.ID:
			if line.UnitPrice != 3500 {
				t.Errorf("filter unit price = %d, want catalog 3500", line.UnitPrice)
			}
		case battery.ID:
			if line.UnitPrice != 18000 || line.TotalPrice != 18000 {
				t.Errorf("battery line = %d/%d, want 18000/18000", line.UnitPrice, line.TotalPrice)
			}
		}
	}

	// The catalog price itself is untouched
	current, _ := store.Products().GetByID(context.Background(), battery.ID)
	if current.SellingPrice != 20000 {
		t.Errorf("catalog price = %d after sale, want 20000", current.SellingPrice)
	}
}

func TestSubmitSaleSameProductAtDifferentPrices(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 5, 3500)

	// One unit at catalog price, two at a discount: separate lines, but the
	// stock check still sees the combined quantity
	discounted := int64(3000)
	sale, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines: []SaleLineInput{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 2, UnitPrice: &discounted},
		},
	})
	if err != nil {
		t.Fatalf("SubmitSale: %v", err)
	}

	if len(sale.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(sale.Lines))
	}
	// 1 x 35.00 + 2 x 30.00 = 95.00
	if sale.TotalAmount != 9500 {
		t.Errorf("total = %d cents, want 9500", sale.TotalAmount)
	}

	current, _ := store.Products().GetByID(context.Background(), product.ID)
	if current.StockQuantity != 2 {
		t.Errorf("stock = %d, want 2", current.StockQuantity)
	}
}

func TestSubmitSaleRejectsNegativeUnitPrice(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 10, 3500)

	negative := int64(-100)
	_, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines:  []SaleLineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: &negative}},
	})
	if !apperror.IsKind(err, apperror.KindBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
}

func TestSubmitSaleSnapshotsProductFields(t *testing.T) {
	svc, store := newSaleFixture()
	product := mustSeedProduct(t, store, "Engine Oil", 10, 3500)

	sale, err := svc.SubmitSale(context.Background(), &SubmitSaleInput{
		UserID: uuid.New(),
		Lines:  []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("SubmitSale: %v", err)
	}

	// Rename the product after the sale; history keeps the old name
	product.Name = "Engine Oil 5W-30"
	if err := store.Products().Update(context.Background(), product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	stored, err := svc.GetSale(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if stored.Lines[0].ProductName != "Engine Oil" {
		t.Errorf("snapshot name = %q, want Engine Oil", stored.Lines[0].ProductName)
	}
}

func TestGetSaleNotFound(t *testing.T) {
	svc, _ := newSaleFixture()

	_, err := svc.GetSale(context.Background(), uuid.New())
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}
