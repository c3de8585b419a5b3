package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

const birthDateLayout = "2006-01-02"

type customerRow struct {
	ID          int64             `json:"id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Membership  models.Membership `json:"membership"`
	OrdersCount int               `json:"orders_count"`
	OrdersURL   string            `json:"orders_url"`
}

type customerResponse struct {
	ID         int64             `json:"id"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	BirthDate  *string           `json:"birth_date"`
	Membership models.Membership `json:"membership"`
}

func newCustomerResponse(customer *models.Customer) customerResponse {
	resp := customerResponse{
		ID:         customer.ID,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Membership: customer.Membership,
	}
	if customer.BirthDate != nil {
		date := customer.BirthDate.Format(birthDateLayout)
		resp.BirthDate = &date
	}
	return resp
}

type customerRequest struct {
	FirstName  string            `json:"first_name" binding:"required,max=255"`
	LastName   string            `json:"last_name" binding:"required,max=255"`
	Email      string            `json:"email" binding:"required,email,max=254"`
	Phone      string            `json:"phone" binding:"required,max=255"`
	BirthDate  *string           `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Membership models.Membership `json:"membership" binding:"omitempty,oneof=B S G"`
}

type membershipRequest struct {
	Membership models.Membership `json:"membership" binding:"required,oneof=B S G"`
}

type addressRequest struct {
	Street string `json:"street" binding:"required,max=255"`
	City   string `json:"city" binding:"required,max=255"`
}

func (h *Handler) listCustomers(c *gin.Context) {
	page, ok := api.ParsePageNumber(c)
	if !ok {
		return
	}

	ordering := c.Query("o")
	if !store.IsCustomerOrdering(ordering) {
		ordering = ""
	}

	result, err := store.ListCustomers(c.Request.Context(), h.db,
		strings.TrimSpace(c.Query("q")), ordering, page, store.DefaultPageSize)
	if err != nil {
		api.RenderError(c, err)
		return
	}

	customers := result.Items.([]store.CustomerSummary)
	rows := make([]customerRow, 0, len(customers))
	for _, customer := range customers {
		rows = append(rows, customerRow{
			ID:          customer.ID,
			FirstName:   customer.FirstName,
			LastName:    customer.LastName,
			Membership:  customer.Membership,
			OrdersCount: customer.OrdersCount,
			OrdersURL:   changelistURL("orders", "customer__id", customer.ID),
		})
	}
	api.RespondPage(c, result, rows)
}

func (h *Handler) createCustomer(c *gin.Context) {
	var req customerRequest
	if !api.BindJSON(c, &req) {
		return
	}

	in := store.CustomerInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Membership: req.Membership,
	}
	if req.BirthDate != nil {
		// Format was checked by the datetime rule.
		birthDate, _ := time.Parse(birthDateLayout, *req.BirthDate)
		in.BirthDate = &birthDate
	}

	customer, err := store.CreateCustomer(c.Request.Context(), h.db, in)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCustomerResponse(customer))
}

// updateMembership is the in-place edit of the membership column.
func (h *Handler) updateMembership(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req membershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	customer, err := store.UpdateMembership(c.Request.Context(), h.db, id, req.Membership)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	if err := store.DeleteCustomer(c.Request.Context(), h.db, id); err != nil {
		api.RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listAddresses(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	if _, err := store.GetCustomer(c.Request.Context(), h.db, id); err != nil {
		api.RenderError(c, err)
		return
	}

	addresses, err := store.ListAddresses(c.Request.Context(), h.db, id)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) createAddress(c *gin.Context) {
	id, ok := api.ParseID(c, "id")
	if !ok {
		return
	}

	var req addressRequest
	if !api.BindJSON(c, &req) {
		return
	}

	address, err := store.CreateAddress(c.Request.Context(), h.db, id, req.Street, req.City)
	if err != nil {
		api.RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}
