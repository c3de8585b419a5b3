package admin

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

type productRow struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	UnitPrice       string `json:"unit_price"`
	InventoryStatus string `json:"inventory_status"`
	CollectionTitle string `json:"collection_title"`
}

func newProductRow(p *models.Product) productRow {
	return productRow{
		ID:              p.ID,
		Title:           p.Title,
		UnitPrice:       p.UnitPrice.StringFixed(models.PriceDecimalPlaces),
		InventoryStatus: p.InventoryStatus(),
		CollectionTitle: p.CollectionTitle,
	}
}

func (h *Handler) listProducts(c *gin.Context) {
	filter, ok := h.productFilter(c)
	if !ok {
		return
	}
	page, ok := api.ParsePageNumber(c)
	if !ok {
		return
	}

	result, err := store.ListProducts(c.Request.Context(), h.db, filter, page, store.DefaultPageSize)
	if err != nil {
		api.RenderError(c, err)
		return
	}

	products := result.Items.([]models.Product)
	rows := make([]productRow, 0, len(products))
	for i := range products {
		rows = append(rows, newProductRow(&products[i]))
	}
	api.RespondPage(c, result, rows)
}

type unitPriceRequest struct {
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"required,money"`
}

// updateUnitPrice is the in-place edit of the price column.
func (h *Handler) updateUnitPrice(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req unitPriceRequest
	if !api.BindJSON(c, &req) {
		return
	}

	product, err := store.UpdateUnitPrice(c.Request.Context(), h.db, id, *req.UnitPrice)
	if err != nil {
		api.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProductRow(product))
}

type selectionRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

type actionResult struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// clearInventory zeroes the inventory of the selected products.
func (h *Handler) clearInventory(c *gin.Context) {
	var req selectionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	updated, err := store.ClearInventory(c.Request.Context(), h.db, req.IDs)
	if err != nil {
		api.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, actionResult{
		Level:   "success",
		Message: fmt.Sprintf("%d products were successfully updated", updated),
	})
}

type tagsRequest struct {
	Tags []int64 `json:"tags" binding:"required"`
}

type tagRequest struct {
	Tag *int64 `json:"tag" binding:"required"`
}

// addProductTag appends one row to the tag inline.
func (h *Handler) addProductTag(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req tagRequest
	if !api.BindJSON(c, &req) {
		return
	}

	item, err := store.TagObject(c.Request.Context(), h.db, *req.Tag, store.ContentTypeProduct, id)
	switch {
	case errors.Is(err, database.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	case errors.Is(err, database.ErrTagNotFound):
		api.InvalidPK(c, "tag", *req.Tag)
		return
	case err != nil:
		api.RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.SerializeTaggedItems([]models.TaggedItem{*item})[0])
}

func (h *Handler) listProductTags(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	if _, err := store.GetProduct(c.Request.Context(), h.db, id); err != nil {
		api.RenderError(c, err)
		return
	}

	items, err := store.GetTagsFor(c.Request.Context(), h.db, store.ContentTypeProduct, id)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SerializeTaggedItems(items))
}

// replaceProductTags saves the tag inline: the submitted ids become the
// product's whole tag set.
func (h *Handler) replaceProductTags(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req tagsRequest
	if !api.BindJSON(c, &req) {
		return
	}

	items, err := store.ReplaceTags(c.Request.Context(), h.db, store.ContentTypeProduct, id, req.Tags)
	switch {
	case errors.Is(err, database.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	case errors.Is(err, database.ErrTagNotFound):
		api.RespondFieldErrors(c, api.FieldErrors{"tags": {"One or more tags do not exist."}})
		return
	case err != nil:
		api.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.SerializeTaggedItems(items))
}

func (h *Handler) autocompleteTags(c *gin.Context) {
	tags, err := store.ListTags(c.Request.Context(), h.db, c.Query("q"))
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

type collectionRow struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ProductsCount int    `json:"products_count"`
	ProductsURL   string `json:"products_url"`
}

func (h *Handler) listCollections(c *gin.Context) {
	ordering := "title"
	if o := c.Query("o"); store.IsCollectionOrdering(o) {
		ordering = o
	}

	collections, err := store.ListCollections(c.Request.Context(), h.db, c.Query("q"), ordering)
	if err != nil {
		api.RenderError(c, err)
		return
	}

	rows := make([]collectionRow, 0, len(collections))
	for _, collection := range collections {
		rows = append(rows, collectionRow{
			ID:            collection.ID,
			Title:         collection.Title,
			ProductsCount: collection.ProductsCount,
			ProductsURL:   changelistURL("products", "collection__id", collection.ID),
		})
	}
	c.JSON(http.StatusOK, rows)
}

// changelistURL links to another admin list filtered by a related id.
func changelistURL(list, param string, id int64) string {
	return "/admin/" + list + "/?" + url.Values{param: {fmt.Sprint(id)}}.Encode()
}
