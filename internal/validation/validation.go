package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			errMsgs := make([]string, 0, len(ve))
			for _, e := range ve {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed validation: %s", e.Field(), e.Tag()))
			}
			return errors.New(strings.Join(errMsgs, "; "))
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// ValidateVar validates a single value against a tag expression,
// e.g. ValidateVar(rating, "min=1,max=5").
func ValidateVar(value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("value failed validation: %s", ve[0].Tag())
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
