package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

// Orderings the public product list accepts. Others are ignored.
var productListOrderings = map[string]bool{
	"unit_price":   true,
	"-unit_price":  true,
	"last_update":  true,
	"-last_update": true,
}

// parseProductFilter reads the product list query string. Malformed numbers
// are reported per parameter with a 400.
func parseProductFilter(c *gin.Context) (store.ProductFilter, bool) {
	var filter store.ProductFilter
	errs := FieldErrors{}

	if raw := strings.TrimSpace(c.Query("collection_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("collection_id", "Enter a number.")
		} else {
			filter.CollectionID = &id
		}
	}

	filter.UnitPriceGT = parseDecimalParam(c, "unit_price__gt", errs)
	filter.UnitPriceLT = parseDecimalParam(c, "unit_price__lt", errs)
	filter.Search = strings.TrimSpace(c.Query("search"))

	if ordering := strings.TrimSpace(c.Query("ordering")); productListOrderings[ordering] {
		filter.Ordering = ordering
	}

	if len(errs) > 0 {
		RespondFieldErrors(c, errs)
		return filter, false
	}
	return filter, true
}

func parseDecimalParam(c *gin.Context, name string, errs FieldErrors) *decimal.Decimal {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Add(name, "Enter a number.")
		return nil
	}
	return &d
}

// ParseID reads a positive integer path parameter. Anything else does not
// match a resource and is answered with 404.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		notFound(c)
		return 0, false
	}
	return id, true
}
