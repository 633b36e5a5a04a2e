package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to
// echo.Echo.Validator. Field names in messages are the JSON names.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "url":
		return field + " must be a valid url"
	case "e164":
		return field + " must be an international phone number"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
