package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is stored as a JSON column on subscriptions and orders.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsEmpty reports whether the address carries enough data to ship to.
func (a ShippingAddress) IsEmpty() bool {
	return strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.PostalCode) == ""
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported shipping address column type %T", value)
	}
}
