package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/enum"
	"gorm.io/gorm"
)

// ShoppingOrder is a to-buy list entry. It starts Pending and transitions
// to Purchased exactly once, at which point the item is restocked into the
// product catalog and PurchaseDate is stamped. PurchaseDate is set if and
// only if the order is Purchased.
type ShoppingOrder struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	ItemName      string           `gorm:"size:255;not null" json:"item_name"`
	Category      string           `gorm:"size:255;not null" json:"category"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	Notes         *string          `gorm:"type:text" json:"notes,omitempty"`
	PurchasePrice int64            `gorm:"not null;default:0" json:"-"` // Stored in cents
	SellingPrice  int64            `gorm:"not null;default:0" json:"-"` // Stored in cents
	Status        enum.OrderStatus `gorm:"not null;default:0;index" json:"status"`
	PurchaseDate  *time.Time       `gorm:"type:date" json:"purchase_date,omitempty"`
	CreatedBy     uuid.UUID        `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new shopping order
func (o *ShoppingOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ShoppingOrder model
func (ShoppingOrder) TableName() string {
	return "shopping_orders"
}

// SetPurchasePriceFromDecimal sets the purchase price from a decimal value
func (o *ShoppingOrder) SetPurchasePriceFromDecimal(price float64) {
	o.PurchasePrice = int64(price*100 + 0.5)
}

// SetSellingPriceFromDecimal sets the selling price from a decimal value
func (o *ShoppingOrder) SetSellingPriceFromDecimal(price float64) {
	o.SellingPrice = int64(price*100 + 0.5)
}

// IsPurchased reports whether the order reached its terminal state
func (o *ShoppingOrder) IsPurchased() bool {
	return o.Status == enum.OrderStatusPurchased
}

// ExpectedProfit returns the anticipated profit for the full quantity, in cents
func (o *ShoppingOrder) ExpectedProfit() int64 {
	return (o.SellingPrice - o.PurchasePrice) * int64(o.Quantity)
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o ShoppingOrder) MarshalJSON() ([]byte, error) {
	type Alias ShoppingOrder
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
		SellingPrice  float64 `json:"selling_price"`
	}{
		Alias:         Alias(o),
		PurchasePrice: float64(o.PurchasePrice) / 100,
		SellingPrice:  float64(o.SellingPrice) / 100,
	})
}
