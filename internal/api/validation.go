package api

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/textutil"
	"github.com/shopspring/decimal"
)

var setupOnce sync.Once

// SetupValidator configures gin's binding: unknown JSON fields are rejected,
// errors are reported under JSON field names, decimals validate as strings,
// and the money and slug rules are registered.
func SetupValidator() {
	setupOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})

		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && models.PriceFits(d)
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return textutil.ValidSlug(fl.Field().String())
		})
	})
}

// validationMessage phrases a rule failure the way the REST clients of this
// API already expect.
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if e.Kind() == reflect.String {
			if e.Param() == "1" {
				return "This field may not be blank."
			}
			return "Ensure this field has at least " + e.Param() + " characters."
		}
		if e.Kind() == reflect.Slice {
			return "Ensure this field has at least " + e.Param() + " elements."
		}
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "max":
		if e.Kind() == reflect.String {
			return "Ensure this field has no more than " + e.Param() + " characters."
		}
		if e.Kind() == reflect.Slice {
			return "Ensure this field has no more than " + e.Param() + " elements."
		}
		return "Ensure this value is less than or equal to " + e.Param() + "."
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "gt":
		return "Ensure this value is greater than " + e.Param() + "."
	case "oneof":
		return "\"" + strings.TrimSpace(stringValue(e)) + "\" is not a valid choice."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "money":
		return "Ensure that there are no more than 6 digits in total and no more than 2 decimal places."
	case "slug":
		return "Enter a valid \"slug\" consisting of letters, numbers, underscores or hyphens."
	default:
		return "Invalid value."
	}
}

func stringValue(e validator.FieldError) string {
	v := reflect.ValueOf(e.Value())
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}

// fieldKey drops the root struct name from the namespace, so nested errors
// read "items[0].quantity".
func fieldKey(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}
