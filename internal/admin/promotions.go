package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/store"
)

type promotionRequest struct {
	Description string   `json:"description" binding:"required,max=255"`
	Discount    *float64 `json:"discount" binding:"required,gte=0"`
}

type productPromotionsRequest struct {
	Promotions []int64 `json:"promotions" binding:"required"`
}

func (h *Handler) listPromotions(c *gin.Context) {
	promotions, err := store.ListPromotions(c.Request.Context(), h.db)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, promotions)
}

func (h *Handler) createPromotion(c *gin.Context) {
	var req promotionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	promotion, err := store.CreatePromotion(c.Request.Context(), h.db, req.Description, *req.Discount)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promotion)
}

func (h *Handler) listProductPromotions(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	if _, err := store.GetProduct(c.Request.Context(), h.db, id); err != nil {
		api.RenderError(c, err)
		return
	}

	promotions, err := store.ListProductPromotions(c.Request.Context(), h.db, id)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, promotions)
}

func (h *Handler) setProductPromotions(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req productPromotionsRequest
	if !api.BindJSON(c, &req) {
		return
	}

	err := store.SetProductPromotions(c.Request.Context(), h.db, id, req.Promotions)
	switch {
	case errors.Is(err, database.ErrPromotionNotFound):
		api.RespondFieldErrors(c, api.FieldErrors{"promotions": {"One or more promotions do not exist."}})
		return
	case err != nil:
		api.RenderError(c, err)
		return
	}

	promotions, err := store.ListProductPromotions(c.Request.Context(), h.db, id)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, promotions)
}
