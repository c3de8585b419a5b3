package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/logger"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine with request id, access log and recovery
// middleware, and JSON bodies for unmatched routes and methods.
func NewEngine(log *zap.Logger) *gin.Engine {
	SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	// A redirect would answer an unsupported method on a detail route
	// before the 405 handler runs.
	engine.RedirectTrailingSlash = false
	engine.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))

	engine.NoRoute(notFound)
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method \"" + c.Request.Method + "\" not allowed."})
	})

	return engine
}

// Handler serves the public storefront API.
type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.health)

	products := r.Group("/products")
	products.GET("/", h.listProducts)
	products.POST("/", h.createProduct)
	products.GET("/:id/", h.getProduct)
	products.PUT("/:id/", h.updateProduct)
	products.PATCH("/:id/", h.patchProduct)
	products.DELETE("/:id/", h.deleteProduct)

	reviews := products.Group("/:id/reviews")
	reviews.GET("/", h.listReviews)
	reviews.POST("/", h.createReview)
	reviews.GET("/:review_id/", h.getReview)
	reviews.PUT("/:review_id/", h.updateReview)
	reviews.PATCH("/:review_id/", h.patchReview)
	reviews.DELETE("/:review_id/", h.deleteReview)

	collections := r.Group("/collections")
	collections.GET("/", h.listCollections)
	collections.POST("/", h.createCollection)
	collections.GET("/:id/", h.getCollection)
	collections.PUT("/:id/", h.updateCollection)
	collections.PATCH("/:id/", h.patchCollection)
	collections.DELETE("/:id/", h.deleteCollection)

	carts := r.Group("/carts")
	carts.POST("/", h.createCart)
	carts.GET("/:id/", h.getCart)
	carts.DELETE("/:id/", h.deleteCart)
	carts.POST("/:id/items/", h.addCartItem)
	carts.DELETE("/:id/items/:item_id/", h.deleteCartItem)

	users := r.Group("/users")
	users.GET("/", h.listUsers)
	users.POST("/", h.createUser)
	users.GET("/:id/", h.getUser)
	users.DELETE("/:id/", h.deleteUser)
	users.GET("/:id/likes/", h.listLikes)
	users.POST("/:id/likes/", h.createLike)
	users.DELETE("/:id/likes/:like_id/", h.deleteLike)

	r.GET("/tags/", h.listTags)
	r.POST("/tags/", h.createTag)
	r.GET("/tagged-items/", h.listTaggedItems)
}

func (h *Handler) health(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		logger.FromGin(c).Warn("Database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
