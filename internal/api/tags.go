package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/store"
)

func (h *Handler) listTags(c *gin.Context) {
	tags, err := store.ListTags(c.Request.Context(), h.db, c.Query("search"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) createTag(c *gin.Context) {
	var req tagRequest
	if !BindJSON(c, &req) {
		return
	}

	tag, err := store.CreateTag(c.Request.Context(), h.db, req.Label)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// listTaggedItems answers ?content_type=app.model&object_id=N.
func (h *Handler) listTaggedItems(c *gin.Context) {
	errs := FieldErrors{}
	contentType := c.Query("content_type")
	if contentType == "" {
		errs.Add("content_type", "This field is required.")
	}
	objectID, err := strconv.ParseInt(c.Query("object_id"), 10, 64)
	if err != nil || objectID < 1 {
		errs.Add("object_id", "Enter a positive whole number.")
	}
	if len(errs) > 0 {
		RespondFieldErrors(c, errs)
		return
	}

	items, err := store.GetTagsFor(c.Request.Context(), h.db, contentType, objectID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, SerializeTaggedItems(items))
}
