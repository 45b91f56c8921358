package request

import "github.com/google/uuid"

// SaleLineRequest represents one line in a sale submission. The unit price
// is optional; when omitted the line is charged at the catalog selling price.
type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	UnitPrice *float64  `json:"unit_price" binding:"omitempty,min=0"`
}

// SubmitSaleRequest represents a sale submission request.
// The sale date is optional and defaults to today.
type SubmitSaleRequest struct {
	SaleDate string            `json:"sale_date" binding:"omitempty,datetime=2006-01-02"`
	Lines    []SaleLineRequest `json:"lines"`
}

// SaleFilterRequest represents sale history filter parameters
type SaleFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// AnalyticsFilterRequest represents analytics query parameters
type AnalyticsFilterRequest struct {
	StartDate   string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `form:"end_date" binding:"required,datetime=2006-01-02"`
	Granularity string `form:"granularity"`
	ZeroFill    bool   `form:"zero_fill"`
	Limit       int    `form:"limit"`
}
