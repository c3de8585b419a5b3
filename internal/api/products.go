package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/safar/storefront/internal/textutil"
)

func (h *Handler) listProducts(c *gin.Context) {
	filter, ok := parseProductFilter(c)
	if !ok {
		return
	}
	page, ok := ParsePageNumber(c)
	if !ok {
		return
	}

	result, err := store.ListProducts(c.Request.Context(), h.db, filter, page, store.DefaultPageSize)
	if err != nil {
		RenderError(c, err)
		return
	}

	RespondPage(c, result, serializeProducts(result.Items.([]models.Product)))
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if !BindJSON(c, &req) {
		return
	}

	in := store.ProductInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		UnitPrice:    *req.UnitPrice,
		Inventory:    *req.Inventory,
		CollectionID: *req.Collection,
	}
	if in.Slug == "" {
		in.Slug = textutil.Slugify(in.Title)
	}
	if in.Slug == "" {
		respondFieldError(c, "slug", "This field is required.")
		return
	}

	product, err := store.CreateProduct(c.Request.Context(), h.db, in)
	if errors.Is(err, database.ErrCollectionNotFound) {
		InvalidPK(c, "collection", in.CollectionID)
		return
	}
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SerializeProduct(product))
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	product, err := store.GetProduct(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, SerializeProduct(product))
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	existing, err := store.GetProduct(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	var req productRequest
	if !BindJSON(c, &req) {
		return
	}

	in := store.ProductInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		UnitPrice:    *req.UnitPrice,
		Inventory:    *req.Inventory,
		CollectionID: *req.Collection,
	}
	if in.Slug == "" {
		in.Slug = existing.Slug
	}

	h.saveProduct(c, id, in)
}

func (h *Handler) patchProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	existing, err := store.GetProduct(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	var req productPatchRequest
	if !BindJSON(c, &req) {
		return
	}

	in := store.ProductInput{
		Title:        existing.Title,
		Slug:         existing.Slug,
		Description:  existing.Description,
		UnitPrice:    existing.UnitPrice,
		Inventory:    existing.Inventory,
		CollectionID: existing.CollectionID,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Slug != nil {
		in.Slug = *req.Slug
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}
	if req.Inventory != nil {
		in.Inventory = *req.Inventory
	}
	if req.Collection != nil {
		in.CollectionID = *req.Collection
	}

	h.saveProduct(c, id, in)
}

func (h *Handler) saveProduct(c *gin.Context, id int64, in store.ProductInput) {
	product, err := store.UpdateProduct(c.Request.Context(), h.db, id, in)
	if errors.Is(err, database.ErrCollectionNotFound) {
		InvalidPK(c, "collection", in.CollectionID)
		return
	}
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, SerializeProduct(product))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := store.DeleteProduct(c.Request.Context(), h.db, id); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
