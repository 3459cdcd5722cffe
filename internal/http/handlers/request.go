package handlers

import (
	"encoding/json"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/pkg/errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return apperr.Validation("request body is too large", nil)
		}
		return apperr.Validation("malformed json body", map[string]string{"body": err.Error()})
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Wrap(err, apperr.CodeInternal, "validation failed")
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		message := fieldErr.Tag()
		if fieldErr.Param() != "" {
			message += "=" + fieldErr.Param()
		}
		fields[fieldName(fieldErr.Namespace())] = message
	}
	return apperr.Validation("invalid request", fields)
}

// fieldName strips the struct name from a namespace like "cycleRequest.name".
func fieldName(namespace string) string {
	_, name, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return name
}

func principalFrom(r *http.Request) security.Principal {
	principal, _ := security.PrincipalFromContext(r.Context())
	return principal
}

func queryBool(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && value
}
