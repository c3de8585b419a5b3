package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/store"
)

// Choices of the last_update date filter.
const (
	LastUpdateToday     = "today"
	LastUpdatePast7Days = "past_7_days"
	LastUpdateThisMonth = "this_month"
	LastUpdateThisYear  = "this_year"
)

// lowInventoryLookup is the only value the inventory filter offers.
const lowInventoryLookup = "<10"

// Orderings offered by the product list columns.
var productListOrderings = map[string]bool{
	"title": true, "-title": true,
	"unit_price": true, "-unit_price": true,
	"inventory_status": true, "-inventory_status": true,
	"collection_title": true, "-collection_title": true,
}

// lastUpdateSince returns the lower bound for a last_update choice, measured
// from the start of the current day in now's location.
func lastUpdateSince(choice string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch choice {
	case LastUpdateToday:
		return today, true
	case LastUpdatePast7Days:
		return today.AddDate(0, 0, -7), true
	case LastUpdateThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case LastUpdateThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

func (h *Handler) productFilter(c *gin.Context) (store.ProductFilter, bool) {
	filter := store.ProductFilter{Ordering: "title"}
	errs := api.FieldErrors{}

	if raw := c.Query("collection__id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("collection__id", "Enter a whole number.")
		} else {
			filter.CollectionID = &id
		}
	}

	if raw := c.Query("last_update"); raw != "" {
		since, ok := lastUpdateSince(raw, h.now())
		if !ok {
			errs.Add("last_update", "Select a valid choice.")
		} else {
			filter.UpdatedSince = &since
		}
	}

	filter.LowInventory = c.Query("inventory") == lowInventoryLookup
	filter.CollectionTitle = strings.TrimSpace(c.Query("q"))

	if o := c.Query("o"); productListOrderings[o] {
		filter.Ordering = o
	}

	if len(errs) > 0 {
		api.RespondFieldErrors(c, errs)
		return filter, false
	}
	return filter, true
}
