package domain

import (
	"encoding/json"
	"fmt"
)

// Amount es un valor monetario tal como lo guarda la base local.
// Rows written outside this service may carry a currency prefix or digit
// grouping, e.g. "Rs. 1,234.50"; use Decimal() to get the numeric value.
type Amount string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// ItemFields are the mutable columns of an item. Updates replace all of them.
type ItemFields struct {
	Name         string `json:"name"`
	Sku          string `json:"sku"`
	Rate         Amount `json:"rate"`
	PurchaseRate Amount `json:"purchase rate"`
	StockOnHand  int    `json:"stock on hand"`
}

type Item struct {
	ID           int64  `json:"item_id"`
	Name         string `json:"name"`
	Sku          string `json:"sku"`
	Rate         Amount `json:"rate"`
	PurchaseRate Amount `json:"purchase rate"`
	StockOnHand  int    `json:"stock on hand"`
}

func NewItem(id int64, f ItemFields) *Item {
	return &Item{
		ID:           id,
		Name:         f.Name,
		Sku:          f.Sku,
		Rate:         f.Rate,
		PurchaseRate: f.PurchaseRate,
		StockOnHand:  f.StockOnHand,
	}
}

func (i Item) Fields() ItemFields {
	return ItemFields{
		Name:         i.Name,
		Sku:          i.Sku,
		Rate:         i.Rate,
		PurchaseRate: i.PurchaseRate,
		StockOnHand:  i.StockOnHand,
	}
}
