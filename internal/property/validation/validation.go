package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const MinYear = 1900

// MaxYearAhead is how far past the current year a construction year may be.
const MaxYearAhead = 5

var phonePattern = regexp.MustCompile(`^(\+34|0034|34)?[ -]*(6|7)[ -]*([0-9][ -]*){8}$`)

// ValidationError carries one message per offending field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidPropertyData
}

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return &Validator{v: v, now: time.Now}
}

// WithClock returns a copy of the validator that reads the current year from now.
func (val *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{v: val.v, now: now}
}

// Property checks a create or update payload. The construction year must
// fall between 1900 and five years from now.
func (val *Validator) Property(in domain.PropertyInput) error {
	fields := val.collect(in)
	maxYear := val.now().Year() + MaxYearAhead
	if in.Year < MinYear || in.Year > maxYear {
		fields["year"] = fmt.Sprintf("year must be between %d and %d", MinYear, maxYear)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (val *Validator) Contact(msg domain.ContactMessage) error {
	if fields := val.collect(msg); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (val *Validator) collect(s any) map[string]string {
	fields := map[string]string{}
	err := val.v.Struct(s)
	if err == nil {
		return fields
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["_"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return fe.Field() + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return "email is not a valid address"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "phone":
		return "phone is not a valid phone number"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// IsValidPhone accepts Spanish mobile numbers with an optional +34/0034/34
// prefix and free spacing or dashes.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}
