package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/store"
)

func parseCartID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) createCart(c *gin.Context) {
	var req cartRequest
	if !BindJSON(c, &req) {
		return
	}

	cart, err := store.CreateCart(c.Request.Context(), h.db)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializeCart(cart))
}

func (h *Handler) getCart(c *gin.Context) {
	id, ok := parseCartID(c)
	if !ok {
		return
	}

	cart, err := store.GetCart(c.Request.Context(), h.db, id)
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeCart(cart))
}

func (h *Handler) deleteCart(c *gin.Context) {
	id, ok := parseCartID(c)
	if !ok {
		return
	}

	if err := store.DeleteCart(c.Request.Context(), h.db, id); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) addCartItem(c *gin.Context) {
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}

	var req cartItemRequest
	if !BindJSON(c, &req) {
		return
	}

	item, err := store.AddCartItem(c.Request.Context(), h.db, cartID, *req.Product, *req.Quantity)
	if errors.Is(err, database.ErrProductNotFound) {
		InvalidPK(c, "product", *req.Product)
		return
	}
	if err != nil {
		RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializeCartItem(item))
}

func (h *Handler) deleteCartItem(c *gin.Context) {
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	itemID, ok := ParseID(c, "item_id")
	if !ok {
		return
	}

	if err := store.DeleteCartItem(c.Request.Context(), h.db, cartID, itemID); err != nil {
		RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
