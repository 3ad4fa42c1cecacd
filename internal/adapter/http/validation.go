package http

import (
	"reflect"
	"regexp"
	"strings"

	"cta-backend/internal/domain/inspection"
	"cta-backend/internal/domain/user"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// letters, digits, dashes and inner spaces; 1 to 20 chars once trimmed
var rePlate = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9 -]{0,18}[A-Za-z0-9])?$`)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names in FieldError.Field
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return rePlate.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := inspection.ParseCategory(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := user.ParseRole(fl.Field().String())
		return ok
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "plate":
			out = append(out, FieldError{Field: field, Message: "must be 1-20 letters, digits, spaces or dashes"})
		case "category":
			out = append(out, FieldError{Field: field, Message: "must be one of VL, PL, TAXI"})
		case "role":
			out = append(out, FieldError{Field: field, Message: "must be one of technician, supervisor, admin, superadmin"})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must be a date formatted YYYY-MM-DD"})
		case "email":
			out = append(out, FieldError{Field: field, Message: "must be a valid email address"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must be at least " + e.Param() + " characters"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
