package request

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=255"`
	Category      string  `json:"category" binding:"required,max=255"`
	Unit          string  `json:"unit" binding:"omitempty,max=50"`
	StockQuantity int     `json:"stock_quantity" binding:"min=0"`
	StockAlert    int     `json:"stock_alert" binding:"min=0"`
	PurchasePrice float64 `json:"purchase_price" binding:"min=0"`
	SellingPrice  float64 `json:"selling_price" binding:"min=0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=2,max=255"`
	Category      *string  `json:"category" binding:"omitempty,max=255"`
	Unit          *string  `json:"unit" binding:"omitempty,max=50"`
	StockAlert    *int     `json:"stock_alert" binding:"omitempty,min=0"`
	PurchasePrice *float64 `json:"purchase_price" binding:"omitempty,min=0"`
	SellingPrice  *float64 `json:"selling_price" binding:"omitempty,min=0"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// StockAdjustmentRequest represents a manual stock reservation or release
type StockAdjustmentRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// RestockRequest represents a manual restock by product name. A zero
// quantity refreshes prices without moving stock.
type RestockRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=255"`
	Category      string  `json:"category" binding:"omitempty,max=255"`
	Unit          string  `json:"unit" binding:"omitempty,max=50"`
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price" binding:"min=0"`
	SellingPrice  float64 `json:"selling_price" binding:"min=0"`
}
