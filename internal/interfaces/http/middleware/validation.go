package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// moneyScale is the fractional precision of the decimal(18,4) amount columns
const moneyScale = 4

var setupOnce sync.Once

// SetupValidator registers the request validation extensions on gin's
// validator once per process: JSON field names in errors, decimal.Decimal
// comparison, and the "money" tag (non-negative, at most four decimal places).
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("money", validMoney)
	})
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// decimalValue exposes a decimal to numeric tags like gt=0 as a float64
func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return d.InexactFloat64()
}

func validMoney(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	d := decimal.NewFromFloat(fl.Field().Float())
	return d.Sign() >= 0 && -d.Exponent() <= moneyScale
}

// FormatValidationErrors converts a binding error into the error envelope.
// Anything that is not a field validation failure is a malformed body.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Malformed request body", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 for a binding failure
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

var fixedMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Invalid UUID format",
	"money":    "Must be a non-negative amount with at most 4 decimal places",
	"dive":     "Invalid item",
}

var boundMessages = map[string]string{
	"oneof": "Must be one of: ",
	"gt":    "Must be greater than ",
	"gte":   "Must be greater than or equal to ",
	"lt":    "Must be less than ",
	"lte":   "Must be less than or equal to ",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	if prefix, ok := boundMessages[fe.Tag()]; ok {
		return prefix + fe.Param()
	}

	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice:
		unit = " items"
	}
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.Slice {
			return "Must contain at least " + fe.Param() + unit
		}
		return "Must be at least " + fe.Param() + unit
	case "max":
		if fe.Kind() == reflect.Slice {
			return "Must contain at most " + fe.Param() + unit
		}
		return "Must be at most " + fe.Param() + unit
	}
	return "Invalid value"
}
