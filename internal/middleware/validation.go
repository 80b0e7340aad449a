package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// RegisterValidators installs the custom binding rules on gin's validator and
// makes field errors report the form/json field name instead of the Go name.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return validation.RegisterRules(v)
}

// AbortWithBindingError answers a request whose body could not be bound
func AbortWithBindingError(c *gin.Context, err error) {
	AbortWithError(c, http.StatusBadRequest, BindingErrorDetail(err))
}

// BindingErrorDetail converts a binding error to an error detail. Rule
// failures are listed per field; anything else is a malformed body.
func BindingErrorDetail(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format").
			WithDetails(err.Error())
	}

	fields := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, dto.FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
	}

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fields[0].Message).WithDetails(fields)
	if len(fields) == 1 {
		detail.WithField(fields[0].Field)
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "docid":
		return e.Field() + " must not be blank or contain slashes"
	case "isodate":
		return e.Field() + " must be a date in YYYY-MM-DD format"
	case "decimal", "numeric":
		return e.Field() + " must be a number"
	case "year":
		return e.Field() + " must be a four digit year"
	case "phone":
		return e.Field() + " must be a phone number"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
