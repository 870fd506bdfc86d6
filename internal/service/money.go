package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxChargeCents is the largest amount a single charge may carry, and matches
// the numeric(10,2) ceiling of a listing price.
const MaxChargeCents int64 = 9_999_999_999

// ToMinorUnits converts a price to cents, rounding half away from zero. Callers
// must bound the price first; see chargeableCents.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// chargeableCents converts price to cents and rejects amounts that round to
// zero or exceed MaxChargeCents.
func chargeableCents(price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	cents := price.Shift(2).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(MaxChargeCents)) {
		return 0, fmt.Errorf("%w: price exceeds the maximum charge", ErrValidation)
	}
	amount := cents.IntPart()
	if amount <= 0 {
		return 0, fmt.Errorf("%w: price rounds to zero", ErrValidation)
	}
	return amount, nil
}
