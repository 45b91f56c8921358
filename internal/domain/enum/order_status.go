package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus represents the lifecycle state of a shopping order.
// The transition Pending -> Purchased is one-way; there is no revert.
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 0
	OrderStatusPurchased OrderStatus = 1
)

func (s OrderStatus) String() string {
	return [...]string{"Pending", "Purchased"}[s]
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = OrderStatusPending
	case "Purchased":
		*s = OrderStatusPurchased
	}
	return nil
}

// ParseOrderStatus maps a query-string value to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(s) {
	case "pending":
		return OrderStatusPending, nil
	case "purchased":
		return OrderStatusPurchased, nil
	default:
		return OrderStatusPending, fmt.Errorf("unknown order status %q", s)
	}
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	}
	return nil
}
