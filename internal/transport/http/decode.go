package httptransport

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes the JSON body into T and runs its validate tags.
// Field failures are reported as a validation error with one detail per field.
func decodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate request")
		}
		verr := dErrors.New(dErrors.CodeValidation, "request validation failed")
		for _, fe := range fieldErrs {
			verr = verr.WithDetail(fe.Field(), fe.Tag())
		}
		return nil, verr
	}
	return &req, nil
}
