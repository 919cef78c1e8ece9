package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNonPositiveQuantity = errors.New("line item quantity must be greater than zero")

// LineItem is one requested or received article. Older payloads name the code "articulo".
type LineItem struct {
	Code     string          `json:"codigo"`
	Name     string          `json:"nombre"`
	Quantity decimal.Decimal `json:"cantidad"`
	Unit     string          `json:"unidad,omitempty"`
}

// MarshalJSON writes cantidad as a bare number, the shape stored rows and clients use
func (li LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code     string      `json:"codigo"`
		Name     string      `json:"nombre"`
		Quantity json.Number `json:"cantidad"`
		Unit     string      `json:"unidad,omitempty"`
	}{li.Code, li.Name, json.Number(li.Quantity.String()), li.Unit})
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code     string          `json:"codigo"`
		Article  string          `json:"articulo"`
		Name     string          `json:"nombre"`
		Quantity decimal.Decimal `json:"cantidad"`
		Unit     string          `json:"unidad"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	li.Code = raw.Code
	if li.Code == "" {
		li.Code = raw.Article
	}
	li.Name = raw.Name
	li.Quantity = raw.Quantity
	li.Unit = raw.Unit
	return nil
}

// LineItems is stored as a JSON array in a single text column
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *LineItems) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("line items: unsupported column type %T", value)
	}
	if len(data) == 0 {
		*l = LineItems{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Validate checks every item has a code and a quantity > 0
func (l LineItems) Validate() error {
	if len(l) == 0 {
		return errors.New("at least one line item is required")
	}
	for i, item := range l {
		if item.Code == "" {
			return fmt.Errorf("line item %d: article code is required", i+1)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: line item %d (%s) has quantity %s", ErrNonPositiveQuantity, i+1, item.Code, item.Quantity.String())
		}
	}
	return nil
}

// Codes returns the distinct article codes in order of first appearance
func (l LineItems) Codes() []string {
	seen := make(map[string]bool, len(l))
	codes := make([]string, 0, len(l))
	for _, item := range l {
		if !seen[item.Code] {
			seen[item.Code] = true
			codes = append(codes, item.Code)
		}
	}
	return codes
}

// Clone returns a copy that does not share the backing array
func (l LineItems) Clone() LineItems {
	out := make(LineItems, len(l))
	copy(out, l)
	return out
}
