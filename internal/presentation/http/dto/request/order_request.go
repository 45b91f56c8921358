package request

// CreateOrderRequest represents a shopping order creation request
type CreateOrderRequest struct {
	ItemName      string  `json:"item_name" binding:"required,min=2,max=255"`
	Category      string  `json:"category" binding:"required,max=255"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	PurchasePrice float64 `json:"purchase_price" binding:"min=0"`
	SellingPrice  float64 `json:"selling_price" binding:"min=0"`
	Notes         *string `json:"notes"`
}

// UpdateOrderRequest represents a shopping order update request
type UpdateOrderRequest struct {
	ItemName      *string  `json:"item_name" binding:"omitempty,min=2,max=255"`
	Category      *string  `json:"category" binding:"omitempty,max=255"`
	Quantity      *int     `json:"quantity" binding:"omitempty,min=1"`
	PurchasePrice *float64 `json:"purchase_price" binding:"omitempty,min=0"`
	SellingPrice  *float64 `json:"selling_price" binding:"omitempty,min=0"`
	Notes         *string  `json:"notes"`
}

// MarkPurchasedRequest represents the purchase transition request body.
// The purchase date is optional and defaults to today.
type MarkPurchasedRequest struct {
	PurchaseDate string `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
}

// OrderFilterRequest represents shopping order filter parameters
type OrderFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
