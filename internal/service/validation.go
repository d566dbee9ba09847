package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"blackboxscan/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report form field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct returns the first failing field as a *models.ValidationError.
// messages maps form field names to user-facing text.
func validateStruct(s any, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	field := fieldErrs[0].Field()
	msg, ok := messages[field]
	if !ok {
		msg = field + " is required"
	}
	return &models.ValidationError{Field: field, Message: msg}
}

func trimmed(s string) string { return strings.TrimSpace(s) }
