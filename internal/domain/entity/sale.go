package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale is one committed multi-line sale transaction. SaleDate is the
// calendar day the sale belongs to (a business fact supplied by the
// seller), distinct from CreatedAt, the wall-clock insertion time.
// A committed sale is immutable; corrections are recorded as new sales.
type Sale struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SaleDate    time.Time  `gorm:"type:date;not null;index" json:"-"`
	TotalAmount int64      `gorm:"not null" json:"-"` // Stored in cents, equals the sum of line totals
	CreatedBy   uuid.UUID  `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Lines       []SaleLine `gorm:"foreignKey:SaleID" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// MarshalJSON custom marshaler: cents to decimal, sale date as YYYY-MM-DD
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SaleDate    string  `json:"sale_date"`
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(s),
		SaleDate:    s.SaleDate.Format("2006-01-02"),
		TotalAmount: float64(s.TotalAmount) / 100,
	})
}

// SaleLine is one product/quantity/price entry within a sale. Product name
// and category are snapshotted at sale time so history keeps reading
// correctly after the catalog entry is renamed or removed.
type SaleLine struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID          uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName     string    `gorm:"size:255;not null" json:"product_name"`
	ProductCategory string    `gorm:"size:255" json:"product_category"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	UnitPrice       int64     `gorm:"not null" json:"-"` // Stored in cents
	TotalPrice      int64     `gorm:"not null" json:"-"` // Stored in cents, quantity * unit price
	CreatedAt       time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new sale line
func (l *SaleLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleLine model
func (SaleLine) TableName() string {
	return "sale_lines"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (l SaleLine) MarshalJSON() ([]byte, error) {
	type Alias SaleLine
	return json.Marshal(&struct {
		Alias
		UnitPrice  float64 `json:"unit_price"`
		TotalPrice float64 `json:"total_price"`
	}{
		Alias:      Alias(l),
		UnitPrice:  float64(l.UnitPrice) / 100,
		TotalPrice: float64(l.TotalPrice) / 100,
	})
}
