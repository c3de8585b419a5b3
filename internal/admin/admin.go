// Package admin serves the back-office list views, filters, bulk actions and
// inline forms under /admin.
package admin

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	db  *sql.DB
	now func() time.Time
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	products := r.Group("/products")
	products.GET("/", h.listProducts)
	products.POST("/actions/clear_inventory/", h.clearInventory)
	products.PATCH("/:id/", h.updateUnitPrice)
	products.GET("/:id/tags/", h.listProductTags)
	products.POST("/:id/tags/", h.addProductTag)
	products.PUT("/:id/tags/", h.replaceProductTags)
	products.GET("/:id/promotions/", h.listProductPromotions)
	products.PUT("/:id/promotions/", h.setProductPromotions)

	r.GET("/collections/", h.listCollections)
	r.GET("/tags/", h.autocompleteTags)

	customers := r.Group("/customers")
	customers.GET("/", h.listCustomers)
	customers.POST("/", h.createCustomer)
	customers.PATCH("/:id/", h.updateMembership)
	customers.DELETE("/:id/", h.deleteCustomer)
	customers.GET("/:id/addresses/", h.listAddresses)
	customers.POST("/:id/addresses/", h.createAddress)

	orders := r.Group("/orders")
	orders.GET("/", h.listOrders)
	orders.POST("/", h.createOrder)
	orders.GET("/:id/", h.getOrder)
	orders.PATCH("/:id/", h.updatePaymentStatus)

	r.GET("/promotions/", h.listPromotions)
	r.POST("/promotions/", h.createPromotion)
}
