package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/store"
)

func (h *Handler) listLikes(c *gin.Context) {
	userID, ok := ParseID(c, "id")
	if !ok {
		return
	}

	likes, err := store.ListLikes(c.Request.Context(), h.db, userID)
	if err != nil {
		RenderError(c, err)
		return
	}

	out := make([]LikedItemResponse, 0, len(likes))
	for i := range likes {
		out = append(out, serializeLike(&likes[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createLike(c *gin.Context) {
	userID, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req likeRequest
	if !BindJSON(c, &req) {
		return
	}

	like, err := store.LikeObject(c.Request.Context(), h.db, userID, req.ContentType, *req.ObjectID)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializeLike(like))
}

func (h *Handler) deleteLike(c *gin.Context) {
	userID, ok := ParseID(c, "id")
	if !ok {
		return
	}
	id, ok := ParseID(c, "like_id")
	if !ok {
		return
	}

	if err := store.DeleteLike(c.Request.Context(), h.db, userID, id); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
