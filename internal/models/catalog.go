package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the multiplier applied to a unit price to get the price with tax.
var TaxRate = decimal.RequireFromString("1.1")

const (
	LowInventoryThreshold = 10

	InventoryStatusLow = "Low"
	InventoryStatusOK  = "Ok"
)

// Price limits for NUMERIC(6,2) columns.
const (
	PriceMaxDigits     = 6
	PriceDecimalPlaces = 2
)

type Collection struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	FeaturedProductID *int64 `json:"featured_product"`
	ProductsCount     int    `json:"products_count"`
}

type Product struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Inventory       int             `json:"inventory"`
	LastUpdate      time.Time       `json:"last_update"`
	CollectionID    int64           `json:"collection"`
	CollectionTitle string          `json:"collection_title,omitempty"`
}

func (p Product) PriceWithTax() decimal.Decimal {
	return p.UnitPrice.Mul(TaxRate)
}

func (p Product) InventoryStatus() string {
	if p.Inventory < LowInventoryThreshold {
		return InventoryStatusLow
	}
	return InventoryStatusOK
}

type Promotion struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
}

// PriceFits reports whether d can be stored in a NUMERIC(6,2) column without
// rounding or overflow.
func PriceFits(d decimal.Decimal) bool {
	if d.Exponent() < -PriceDecimalPlaces && !d.Equal(d.Truncate(PriceDecimalPlaces)) {
		return false
	}
	limit := decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)
	return d.Abs().LessThan(limit)
}
