package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/store"
)

func (h *Handler) listUsers(c *gin.Context) {
	page, ok := ParsePageNumber(c)
	if !ok {
		return
	}

	result, err := store.ListUsers(c.Request.Context(), h.db, page, store.DefaultPageSize)
	if err != nil {
		RenderError(c, err)
		return
	}

	RespondPage(c, result, result.Items)
}

func (h *Handler) createUser(c *gin.Context) {
	var req userRequest
	if !BindJSON(c, &req) {
		return
	}

	user, err := store.CreateUser(c.Request.Context(), h.db, store.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	user, err := store.GetUser(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := store.DeleteUser(c.Request.Context(), h.db, id); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
