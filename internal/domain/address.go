package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const DefaultCountry = "India"

// ShippingAddress is a value object constructed at checkout time and embedded
// into the order at placement. Line2 and Country are optional, Country is
// defaulted.
type ShippingAddress struct {
	FullName   string `json:"full_name" validate:"notblank"`
	Phone      string `json:"phone" validate:"notblank"`
	Line1      string `json:"line1" validate:"notblank"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state" validate:"notblank"`
	PostalCode string `json:"postal_code" validate:"notblank"`
	Country    string `json:"country,omitempty"`
}

// ValidationError reports which required address fields are empty or
// whitespace-only.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}

var validate = newAddressValidator()

func newAddressValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json names, they are what the UI knows.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Whitespace-only strings count as empty.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Validate returns nil for a complete address and *ValidationError listing the
// missing required fields otherwise.
func (a ShippingAddress) Validate() error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate.Struct: %w", err)
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	sort.Strings(missing)

	return &ValidationError{MissingFields: missing}
}

// WithDefaults returns a copy with the country filled in when absent.
func (a ShippingAddress) WithDefaults() ShippingAddress {
	if strings.TrimSpace(a.Country) == "" {
		a.Country = DefaultCountry
	}
	return a
}
