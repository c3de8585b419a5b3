package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeRestrictViolation   = "23001"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
	codeLockNotAvailable    = "55P03"
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerialization:
			return ErrorClassSerialization
		case codeDeadlock:
			return ErrorClassDeadlock
		case codeLockNotAvailable:
			return ErrorClassTransient
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// IsForeignKeyViolation reports a missing referenced row on insert/update,
// or a referencing row that blocks a delete.
func IsForeignKeyViolation(err error) bool {
	code := pqCode(err)
	return code == codeForeignKeyViolation || code == codeRestrictViolation
}

func IsUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func IsCheckViolation(err error) bool {
	code := pqCode(err)
	return code == codeCheckViolation || code == codeNotNullViolation
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrPromotionNotFound    = errors.New("promotion not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrTagNotFound          = errors.New("tag not found")
	ErrLikedItemNotFound    = errors.New("liked item not found")
	ErrUnknownContentType   = errors.New("unknown content type")
	ErrObjectNotFound       = errors.New("referenced object not found")
	ErrProductInUse         = errors.New("product is referenced by an order item")
	ErrCollectionNotEmpty   = errors.New("collection includes one or more products")
	ErrCustomerHasOrders    = errors.New("customer has one or more orders")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrEmptyOrder           = errors.New("order requires at least one item")
	ErrInvalidChoice        = errors.New("value is not an allowed choice")
	ErrCartQuantityExceeded = errors.New("cart item quantity exceeds the limit")
)
