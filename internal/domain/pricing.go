package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pricing policy for the marketplace checkout. Tax is rounded half-up to the
// nearest whole currency unit. Orders at or above the free-shipping threshold
// ship for free, everything below pays the flat fee.
var (
	taxRate               = decimal.NewFromFloat(0.18)
	freeShippingThreshold = decimal.NewFromInt(5000)
	flatShippingFee       = decimal.NewFromInt(99)
)

// Subtotal sums unit price times quantity over all items. An empty cart has a
// zero INR subtotal. Items priced in different currencies do not sum, they
// fail with ErrCurrencyMismatch.
func Subtotal(items []CartItem) (Money, error) {
	if len(items) == 0 {
		return ZeroINR(), nil
	}

	total := items[0].UnitPrice.MulQuantity(items[0].Quantity)
	for _, item := range items[1:] {
		sum, err := total.Add(item.UnitPrice.MulQuantity(item.Quantity))
		if err != nil {
			return Money{}, fmt.Errorf("item %s: %w", item.ListingID, err)
		}
		total = sum
	}

	return total, nil
}

func Tax(subtotal Money) Money {
	return Money{
		Amount:   subtotal.Amount.Mul(taxRate).Round(0),
		Currency: subtotal.Currency,
	}
}

func ShippingFee(subtotal Money) Money {
	if subtotal.Amount.GreaterThanOrEqual(freeShippingThreshold) {
		return Money{Amount: decimal.Zero, Currency: subtotal.Currency}
	}

	return Money{Amount: flatShippingFee, Currency: subtotal.Currency}
}

// OrderTotal is the single authoritative total formula:
// subtotal + tax + shipping fee. Cart and checkout views must both use it.
func OrderTotal(items []CartItem) (Money, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return Money{}, err
	}

	total := subtotal.Amount.
		Add(Tax(subtotal).Amount).
		Add(ShippingFee(subtotal).Amount)

	return Money{Amount: total, Currency: subtotal.Currency}, nil
}
