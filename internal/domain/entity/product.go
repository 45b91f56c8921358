package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a sellable item in the inventory. StockQuantity is
// only ever mutated through the stock ledger's atomic conditional updates
// and can never go negative.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name          string         `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Category      string         `gorm:"size:255;not null" json:"category"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	StockAlert    int            `gorm:"not null;default:10" json:"stock_alert"`
	PurchasePrice int64          `gorm:"not null;default:0" json:"-"` // Stored in cents
	SellingPrice  int64          `gorm:"not null;default:0" json:"-"` // Stored in cents
	Unit          string         `gorm:"size:50" json:"unit"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// GetPurchasePriceDecimal returns the purchase price as a decimal (for display)
func (p *Product) GetPurchasePriceDecimal() float64 {
	return float64(p.PurchasePrice) / 100
}

// GetSellingPriceDecimal returns the selling price as a decimal (for display)
func (p *Product) GetSellingPriceDecimal() float64 {
	return float64(p.SellingPrice) / 100
}

// SetPurchasePriceFromDecimal sets the purchase price from a decimal value
func (p *Product) SetPurchasePriceFromDecimal(price float64) {
	p.PurchasePrice = int64(price*100 + 0.5)
}

// SetSellingPriceFromDecimal sets the selling price from a decimal value
func (p *Product) SetSellingPriceFromDecimal(price float64) {
	p.SellingPrice = int64(price*100 + 0.5)
}

// IsLowStock reports whether available stock is at or below the alert threshold
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.StockAlert
}

// MarshalJSON converts Product to JSON with decimal prices
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
		SellingPrice  float64 `json:"selling_price"`
	}{
		Alias:         Alias(p),
		PurchasePrice: p.GetPurchasePriceDecimal(),
		SellingPrice:  p.GetSellingPriceDecimal(),
	})
}
