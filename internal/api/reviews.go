package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/store"
)

// Reviews are nested under a product; the product id always comes from the
// route and any product value in the body is ignored.

func (h *Handler) listReviews(c *gin.Context) {
	productID, ok := ParseID(c, "id")
	if !ok {
		return
	}

	reviews, err := store.ListReviews(c.Request.Context(), h.db, productID)
	if err != nil {
		RenderError(c, err)
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, serializeReview(&reviews[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createReview(c *gin.Context) {
	productID, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if !BindJSON(c, &req) {
		return
	}

	review, err := store.CreateReview(c.Request.Context(), h.db, productID, store.ReviewInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializeReview(review))
}

func (h *Handler) reviewIDs(c *gin.Context) (int64, int64, bool) {
	productID, ok := ParseID(c, "id")
	if !ok {
		return 0, 0, false
	}
	id, ok := ParseID(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return productID, id, true
}

func (h *Handler) getReview(c *gin.Context) {
	productID, id, ok := h.reviewIDs(c)
	if !ok {
		return
	}

	review, err := store.GetReview(c.Request.Context(), h.db, productID, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeReview(review))
}

func (h *Handler) updateReview(c *gin.Context) {
	productID, id, ok := h.reviewIDs(c)
	if !ok {
		return
	}

	if _, err := store.GetReview(c.Request.Context(), h.db, productID, id); err != nil {
		RenderError(c, err)
		return
	}

	var req reviewRequest
	if !BindJSON(c, &req) {
		return
	}

	h.saveReview(c, productID, id, store.ReviewInput{Name: req.Name, Description: req.Description})
}

func (h *Handler) patchReview(c *gin.Context) {
	productID, id, ok := h.reviewIDs(c)
	if !ok {
		return
	}

	existing, err := store.GetReview(c.Request.Context(), h.db, productID, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	var req reviewPatchRequest
	if !BindJSON(c, &req) {
		return
	}

	in := store.ReviewInput{Name: existing.Name, Description: existing.Description}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	h.saveReview(c, productID, id, in)
}

func (h *Handler) saveReview(c *gin.Context, productID, id int64, in store.ReviewInput) {
	review, err := store.UpdateReview(c.Request.Context(), h.db, productID, id, in)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeReview(review))
}

func (h *Handler) deleteReview(c *gin.Context) {
	productID, id, ok := h.reviewIDs(c)
	if !ok {
		return
	}

	if err := store.DeleteReview(c.Request.Context(), h.db, productID, id); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
