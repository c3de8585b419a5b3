package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/logger"
	"github.com/safar/storefront/internal/store"
	"go.uber.org/zap"
)

// Messages returned when a delete is refused by referential policy.
const (
	ProductInUseMessage       = "Product cannot be deleted because it is associated with an order item."
	CollectionNotEmptyMessage = "Collection cannot be deleted because it includes one or more products."
	CustomerHasOrdersMessage  = "Customer cannot be deleted because they have one or more orders."
)

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

// RespondFieldErrors writes a 400 with the per-field message map.
func RespondFieldErrors(c *gin.Context, errs FieldErrors) {
	c.JSON(http.StatusBadRequest, errs)
}

func respondFieldError(c *gin.Context, field, message string) {
	RespondFieldErrors(c, FieldErrors{field: {message}})
}

// InvalidPK reports a related id that does not resolve to a row.
func InvalidPK(c *gin.Context, field string, id int64) {
	respondFieldError(c, field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}

// BindJSON decodes and validates the request body into obj. On failure the
// 400 response has been written and false is returned.
func BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		// An empty body is an empty object: report the missing fields.
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		errs := FieldErrors{}
		for _, e := range validationErrs {
			errs.Add(fieldKey(e), validationMessage(e))
		}
		RespondFieldErrors(c, errs)
	case errors.As(err, &typeErr):
		respondFieldError(c, typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		respondFieldError(c, field, "This field is not allowed.")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
	}
	return false
}

// RenderError maps store errors to responses. Anything unrecognized is
// logged and reported as a 500 without details.
func RenderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCollectionNotFound),
		errors.Is(err, database.ErrPromotionNotFound),
		errors.Is(err, database.ErrCustomerNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrCartNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrReviewNotFound),
		errors.Is(err, database.ErrTagNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrLikedItemNotFound):
		notFound(c)
	case errors.Is(err, database.ErrProductInUse):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": ProductInUseMessage})
	case errors.Is(err, database.ErrCollectionNotEmpty):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": CollectionNotEmptyMessage})
	case errors.Is(err, database.ErrCustomerHasOrders):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": CustomerHasOrdersMessage})
	case errors.Is(err, database.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, FieldErrors{"email": {"customer with this email already exists."}})
	case errors.Is(err, database.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, FieldErrors{"username": {"A user with that username already exists."}})
	case errors.Is(err, database.ErrUnknownContentType):
		respondFieldError(c, "content_type", "Unknown content type.")
	case errors.Is(err, database.ErrObjectNotFound):
		respondFieldError(c, "object_id", "Object does not exist.")
	case errors.Is(err, database.ErrInvalidChoice):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid choice."})
	case errors.Is(err, database.ErrCartQuantityExceeded):
		respondFieldError(c, "quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", store.MaxCartItemQuantity))
	case errors.Is(err, database.ErrEmptyOrder):
		respondFieldError(c, "items", "Ensure this field has at least 1 elements.")
	default:
		logger.FromGin(c).Error("Request failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
	}
}
