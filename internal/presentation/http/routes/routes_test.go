package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/application/service"
	"github.com/dukkan-app/dukkan-api/internal/config"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/cache"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/repository/memory"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/handler"
	"github.com/dukkan-app/dukkan-api/pkg/utils"
)

type testServer struct {
	router *gin.Engine
	token  string
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	noop := cache.NoopAnalyticsCache{}

	productService := service.NewProductService(store.Products())
	stockService := service.NewStockService(store.Products())
	orderService := service.NewOrderService(store.Orders())
	saleService := service.NewSaleService(store.Sales(), store.Products(), noop)
	analyticsService := service.NewAnalyticsService(store.Sales(), store.Products(), noop, time.Minute, 10)

	handlers := &Handlers{
		Product:   handler.NewProductHandler(productService, stockService),
		Order:     handler.NewOrderHandler(orderService),
		Sale:      handler.NewSaleHandler(saleService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
	}

	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateAccessToken(uuid.New(), "till@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Name = "dukkan-api-test"
	cfg.RateLimit.Requests = 1000
	cfg.RateLimit.Duration = 1

	router := Setup(handlers, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: store.IdempotencyKeys(),
	})

	return &testServer{router: router, token: token, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createProduct(t *testing.T, name string, stock int, selling float64) uuid.UUID {
	t.Helper()
	w := s.do(t, "POST", "/api/v1/products", gin.H{
		"name":           name,
		"category":       "General",
		"stock_quantity": stock,
		"selling_price":  selling,
		"purchase_price": selling / 2,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product: status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Data.ID
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSaleSubmissionFlow(t *testing.T) {
	s := newTestServer(t)
	filterID := s.createProduct(t, "Air Filter", 10, 35)
	batteryID := s.createProduct(t, "Battery", 3, 200)

	body := gin.H{
		"sale_date": "2025-06-12",
		"lines": []gin.H{
			{"product_id": filterID, "quantity": 2},
			{"product_id": batteryID, "quantity": 1},
		},
	}
	headers := map[string]string{"Idempotency-Key": "sale-001"}

	w := s.do(t, "POST", "/api/v1/sales", body, headers)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit sale: status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			TotalAmount float64 `json:"total_amount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TotalAmount != 270 {
		t.Errorf("total = %v, want 270", resp.Data.TotalAmount)
	}

	// A retry with the same key replays the stored response without a
	// second commit
	retry := s.do(t, "POST", "/api/v1/sales", body, headers)
	if retry.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("retry was not replayed")
	}

	list := s.do(t, "GET", "/api/v1/sales", nil, nil)
	var listResp struct {
		Data struct {
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listResp.Data.Pagination.Total != 1 {
		t.Errorf("sales = %d after replay, want 1", listResp.Data.Pagination.Total)
	}
}

func TestSaleLineUnitPriceOverride(t *testing.T) {
	s := newTestServer(t)
	batteryID := s.createProduct(t, "Battery", 3, 200)

	// The line goes out at a negotiated 180.00 instead of the catalog 200.00
	w := s.do(t, "POST", "/api/v1/sales", gin.H{
		"lines": []gin.H{
			{"product_id": batteryID, "quantity": 1, "unit_price": 180.0},
		},
	}, map[string]string{"Idempotency-Key": "sale-discount"})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit sale: status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			TotalAmount float64 `json:"total_amount"`
			Lines       []struct {
				UnitPrice float64 `json:"unit_price"`
			} `json:"lines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TotalAmount != 180 {
		t.Errorf("total = %v, want 180", resp.Data.TotalAmount)
	}
	if len(resp.Data.Lines) != 1 || resp.Data.Lines[0].UnitPrice != 180 {
		t.Errorf("line price = %+v, want 180", resp.Data.Lines)
	}
}

func TestSaleRequiresIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, "Air Filter", 10, 35)

	w := s.do(t, "POST", "/api/v1/sales", gin.H{
		"lines": []gin.H{{"product_id": productID, "quantity": 1}},
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSaleInsufficientStockConflict(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, "Air Filter", 5, 35)

	w := s.do(t, "POST", "/api/v1/sales", gin.H{
		"lines": []gin.H{{"product_id": productID, "quantity": 6}},
	}, map[string]string{"Idempotency-Key": "sale-002"})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Kind   string `json:"kind"`
		Errors struct {
			ProductID uuid.UUID `json:"product_id"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "insufficient_stock" {
		t.Errorf("kind = %q, want insufficient_stock", resp.Kind)
	}
	if resp.Errors.ProductID != productID {
		t.Errorf("offending product = %v, want %v", resp.Errors.ProductID, productID)
	}
}

func TestOrderPurchaseFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "POST", "/api/v1/orders", gin.H{
		"item_name":      "Air Filter",
		"category":       "Filters",
		"quantity":       10,
		"purchase_price": 25,
		"selling_price":  35,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: status %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	purchase := s.do(t, "POST", fmt.Sprintf("/api/v1/orders/%s/purchase", created.Data.ID), nil, nil)
	if purchase.Code != http.StatusOK {
		t.Fatalf("mark purchased: status %d: %s", purchase.Code, purchase.Body.String())
	}

	// The second transition must conflict
	again := s.do(t, "POST", fmt.Sprintf("/api/v1/orders/%s/purchase", created.Data.ID), nil, nil)
	if again.Code != http.StatusConflict {
		t.Fatalf("second purchase: status %d, want 409", again.Code)
	}

	products := s.do(t, "GET", "/api/v1/products?search=Air+Filter", nil, nil)
	var list struct {
		Data struct {
			Items []struct {
				StockQuantity int `json:"stock_quantity"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(products.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(list.Data.Items) != 1 || list.Data.Items[0].StockQuantity != 10 {
		t.Fatalf("restocked product missing or wrong stock: %s", products.Body.String())
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, "Air Filter", 10, 35)

	w := s.do(t, "POST", "/api/v1/sales", gin.H{
		"sale_date": "2025-06-12",
		"lines":     []gin.H{{"product_id": productID, "quantity": 2}},
	}, map[string]string{"Idempotency-Key": "sale-003"})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit sale: status %d", w.Code)
	}

	report := s.do(t, "GET", "/api/v1/analytics?start_date=2025-06-01&end_date=2025-06-30", nil, nil)
	if report.Code != http.StatusOK {
		t.Fatalf("analytics: status %d: %s", report.Code, report.Body.String())
	}

	var resp struct {
		Data struct {
			TotalRevenue float64 `json:"total_revenue"`
		} `json:"data"`
	}
	if err := json.Unmarshal(report.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TotalRevenue != 70 {
		t.Errorf("revenue = %v, want 70", resp.Data.TotalRevenue)
	}

	missing := s.do(t, "GET", "/api/v1/analytics", nil, nil)
	if missing.Code != http.StatusBadRequest {
		t.Errorf("status = %d without dates, want 400", missing.Code)
	}
}
