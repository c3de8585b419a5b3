package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

type orderItemRequest struct {
	Product   *int64           `json:"product" binding:"required"`
	Quantity  *int             `json:"quantity" binding:"required,min=1,max=32767"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,money"`
}

// orderRequest is the order form together with its item inline, which
// accepts between one and ten rows.
type orderRequest struct {
	Customer      *int64               `json:"customer" binding:"required"`
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"omitempty,oneof=P C F"`
	Items         []orderItemRequest   `json:"items" binding:"required,min=1,max=10,dive"`
}

type paymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required,oneof=P C F"`
}

type orderItemResponse struct {
	ID        int64  `json:"id"`
	Product   int64  `json:"product"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type orderResponse struct {
	ID            int64                `json:"id"`
	PlacedAt      time.Time            `json:"placed_at"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Customer      int64                `json:"customer"`
	Items         []orderItemResponse  `json:"items,omitempty"`
	Total         *string              `json:"total,omitempty"`
}

type orderListResponse struct {
	Results    []orderResponse `json:"results"`
	NextCursor *string         `json:"next_cursor"`
	HasMore    bool            `json:"has_more"`
}

func newOrderResponse(order *models.Order, withItems bool) orderResponse {
	resp := orderResponse{
		ID:            order.ID,
		PlacedAt:      order.PlacedAt,
		PaymentStatus: order.PaymentStatus,
		Customer:      order.CustomerID,
	}
	if !withItems {
		return resp
	}

	resp.Items = make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:        item.ID,
			Product:   item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(models.PriceDecimalPlaces),
		})
	}
	total := order.Total().StringFixed(models.PriceDecimalPlaces)
	resp.Total = &total
	return resp
}

func (h *Handler) listOrders(c *gin.Context) {
	errs := api.FieldErrors{}

	var customerID int64
	if raw := c.Query("customer__id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			errs.Add("customer__id", "Enter a whole number.")
		}
		customerID = id
	}

	cursor := c.Query("cursor")
	if _, err := store.DecodeCursor(cursor); err != nil {
		errs.Add("cursor", "Invalid cursor.")
	}

	if len(errs) > 0 {
		api.RespondFieldErrors(c, errs)
		return
	}

	result, err := store.ListOrdersCursor(c.Request.Context(), h.db, customerID, cursor, store.DefaultPageSize)
	if err != nil {
		api.RenderError(c, err)
		return
	}

	orders := result.Items.([]models.Order)
	resp := orderListResponse{
		Results: make([]orderResponse, 0, len(orders)),
		HasMore: result.HasMore,
	}
	for i := range orders {
		resp.Results = append(resp.Results, newOrderResponse(&orders[i], false))
	}
	if result.NextCursor != "" {
		resp.NextCursor = &result.NextCursor
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := store.GetOrder(c.Request.Context(), h.db, id)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}

// createOrder places the order and its items atomically.
func (h *Handler) createOrder(c *gin.Context) {
	var req orderRequest
	if !api.BindJSON(c, &req) {
		return
	}

	placeReq := store.PlaceOrderRequest{
		CustomerID:    *req.Customer,
		PaymentStatus: req.PaymentStatus,
		Items:         make([]store.OrderItemRequest, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		placeReq.Items = append(placeReq.Items, store.OrderItemRequest{
			ProductID: *item.Product,
			Quantity:  *item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := store.PlaceOrder(c.Request.Context(), h.db, placeReq)
	switch {
	case errors.Is(err, database.ErrCustomerNotFound):
		api.InvalidPK(c, "customer", *req.Customer)
		return
	case errors.Is(err, database.ErrProductNotFound):
		api.RespondFieldErrors(c, api.FieldErrors{"items": {"One or more products do not exist."}})
		return
	case err != nil:
		api.RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order, true))
}

func (h *Handler) updatePaymentStatus(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req paymentStatusRequest
	if !api.BindJSON(c, &req) {
		return
	}

	order, err := store.UpdatePaymentStatus(c.Request.Context(), h.db, id, req.PaymentStatus)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}
