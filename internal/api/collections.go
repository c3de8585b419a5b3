package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/store"
)

func (h *Handler) listCollections(c *gin.Context) {
	collections, err := store.ListCollections(c.Request.Context(), h.db, strings.TrimSpace(c.Query("search")), "")
	if err != nil {
		RenderError(c, err)
		return
	}

	out := make([]CollectionResponse, 0, len(collections))
	for i := range collections {
		out = append(out, serializeCollection(&collections[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createCollection(c *gin.Context) {
	var req collectionRequest
	if !BindJSON(c, &req) {
		return
	}

	in := store.CollectionInput{Title: req.Title, FeaturedProductID: req.FeaturedProduct.Value}
	collection, err := store.CreateCollection(c.Request.Context(), h.db, in)
	if err != nil {
		h.renderCollectionError(c, err, in)
		return
	}

	c.JSON(http.StatusCreated, serializeCollection(collection))
}

func (h *Handler) getCollection(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	collection, err := store.GetCollection(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeCollection(collection))
}

func (h *Handler) updateCollection(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	existing, err := store.GetCollection(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	var req collectionRequest
	if !BindJSON(c, &req) {
		return
	}

	// featured_product is optional: leaving it out keeps the current value.
	in := store.CollectionInput{Title: req.Title, FeaturedProductID: existing.FeaturedProductID}
	if req.FeaturedProduct.Set {
		in.FeaturedProductID = req.FeaturedProduct.Value
	}

	h.saveCollection(c, id, in)
}

func (h *Handler) patchCollection(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	existing, err := store.GetCollection(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	var req collectionPatchRequest
	if !BindJSON(c, &req) {
		return
	}

	in := store.CollectionInput{Title: existing.Title, FeaturedProductID: existing.FeaturedProductID}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.FeaturedProduct.Set {
		in.FeaturedProductID = req.FeaturedProduct.Value
	}

	h.saveCollection(c, id, in)
}

func (h *Handler) saveCollection(c *gin.Context, id int64, in store.CollectionInput) {
	collection, err := store.UpdateCollection(c.Request.Context(), h.db, id, in)
	if err != nil {
		h.renderCollectionError(c, err, in)
		return
	}

	c.JSON(http.StatusOK, serializeCollection(collection))
}

// renderCollectionError reports a missing featured product against the field
// rather than as a missing resource.
func (h *Handler) renderCollectionError(c *gin.Context, err error, in store.CollectionInput) {
	if errors.Is(err, database.ErrProductNotFound) && in.FeaturedProductID != nil {
		InvalidPK(c, "featured_product", *in.FeaturedProductID)
		return
	}
	RenderError(c, err)
}

func (h *Handler) deleteCollection(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := store.DeleteCollection(c.Request.Context(), h.db, id); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
