package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v-23-69/coinkart/internal/domain"
)

func completeAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:   "Asha Verma",
		Phone:      "+919876543210",
		Line1:      "12 MG Road",
		Line2:      "Flat 4B",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "India",
	}
}

func TestShippingAddress_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*domain.ShippingAddress)
		wantMissing []string
	}{
		{
			name:   "complete address",
			mutate: func(a *domain.ShippingAddress) {},
		},
		{
			name:   "optional fields empty",
			mutate: func(a *domain.ShippingAddress) { a.Line2, a.Country = "", "" },
		},
		{
			name:        "missing city",
			mutate:      func(a *domain.ShippingAddress) { a.City = "" },
			wantMissing: []string{"city"},
		},
		{
			name:        "whitespace-only counts as missing",
			mutate:      func(a *domain.ShippingAddress) { a.PostalCode = "   " },
			wantMissing: []string{"postal_code"},
		},
		{
			name: "missing fields sorted by json name",
			mutate: func(a *domain.ShippingAddress) {
				a.Phone, a.FullName, a.Line1 = "", "", ""
			},
			wantMissing: []string{"full_name", "line1", "phone"},
		},
		{
			name:        "empty address",
			mutate:      func(a *domain.ShippingAddress) { *a = domain.ShippingAddress{} },
			wantMissing: []string{"city", "full_name", "line1", "phone", "postal_code", "state"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := completeAddress()
			tt.mutate(&addr)

			err := addr.Validate()
			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}

			var valErr *domain.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.wantMissing, valErr.MissingFields)
		})
	}
}

func TestShippingAddress_WithDefaults(t *testing.T) {
	addr := completeAddress()
	addr.Country = ""

	got := addr.WithDefaults()
	assert.Equal(t, domain.DefaultCountry, got.Country)

	// An explicit country is kept.
	addr.Country = "Nepal"
	assert.Equal(t, "Nepal", addr.WithDefaults().Country)
}

func TestShippingAddress_ValidationErrorMessage(t *testing.T) {
	err := (domain.ShippingAddress{}).WithDefaults().Validate()

	var valErr *domain.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Error(), "missing required fields")
	assert.Contains(t, valErr.Error(), "city")
}
