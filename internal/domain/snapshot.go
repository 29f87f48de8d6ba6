package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type StockLevel string

const (
	StockLow    StockLevel = "low"
	StockMedium StockLevel = "medium"
	StockHigh   StockLevel = "high"
)

const (
	lowStockMax    = 10
	mediumStockMax = 30

	unnamedItem = "Unknown Item"
	missingSku  = "N/A"
)

var (
	currencyPrefix = regexp.MustCompile(`^\s*Rs\.\s*`)
	skuParens      = regexp.MustCompile(`[()]`)
)

func ClassifyStock(stock int) StockLevel {
	switch {
	case stock <= lowStockMax:
		return StockLow
	case stock <= mediumStockMax:
		return StockMedium
	default:
		return StockHigh
	}
}

// ParseCurrency extracts the numeric value of an amount such as
// "Rs. 1,234.50". Anything that does not parse is zero.
func ParseCurrency(raw string) decimal.Decimal {
	s := currencyPrefix.ReplaceAllString(raw, "")
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Decimal() decimal.Decimal {
	return ParseCurrency(string(a))
}

// CachedItem is the normalized form of an item kept in the cache.
type CachedItem struct {
	ID           int64   `json:"item_id"`
	Name         string  `json:"name"`
	Sku          string  `json:"sku"`
	Rate         float64 `json:"rate"`
	PurchaseRate float64 `json:"purchase rate"`
	StockOnHand  int     `json:"stock on hand"`
}

type Stats struct {
	TotalProducts    int       `json:"totalProducts"`
	TotalValue       float64   `json:"totalValue"`
	LowStockCount    int       `json:"lowStockCount"`
	CacheLastUpdated time.Time `json:"cacheLastUpdated"`
}

type Snapshot struct {
	Items []CachedItem
	Stats Stats
}

func NormalizeItem(item Item) CachedItem {
	name := item.Name
	if name == "" {
		name = unnamedItem
	}
	sku := item.Sku
	if sku == "" {
		sku = missingSku
	}
	return CachedItem{
		ID:           item.ID,
		Name:         name,
		Sku:          skuParens.ReplaceAllString(sku, ""),
		Rate:         item.Rate.Decimal().InexactFloat64(),
		PurchaseRate: item.PurchaseRate.Decimal().InexactFloat64(),
		StockOnHand:  item.StockOnHand,
	}
}

// BuildSnapshot normalizes the full item list and computes its statistics.
func BuildSnapshot(items []Item, now time.Time) Snapshot {
	cached := make([]CachedItem, 0, len(items))
	total := decimal.Zero
	low := 0
	for _, item := range items {
		cached = append(cached, NormalizeItem(item))
		total = total.Add(item.Rate.Decimal().Mul(decimal.NewFromInt(int64(item.StockOnHand))))
		if ClassifyStock(item.StockOnHand) == StockLow {
			low++
		}
	}
	return Snapshot{
		Items: cached,
		Stats: Stats{
			TotalProducts:    len(items),
			TotalValue:       total.InexactFloat64(),
			LowStockCount:    low,
			CacheLastUpdated: now.UTC(),
		},
	}
}
