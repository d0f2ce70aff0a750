package lifecycle

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	dErrors "rwa-ledger/pkg/domain-errors"
)

// Checked arithmetic for aggregate capacity fields. Handlers run these on
// copies of the aggregate before any write, so a failed check leaves every
// store untouched.

// Add returns a+b, failing with CapacityExceeded on overflow.
func Add(a, b uint64) (uint64, error) {
	if b > math.MaxUint64-a {
		return 0, dErrors.New(dErrors.CodeCapacityExceeded, "capacity overflow")
	}
	return a + b, nil
}

// Sub returns a-b, failing with CapacityExceeded when the result would be
// negative.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, dErrors.New(dErrors.CodeCapacityExceeded,
			fmt.Sprintf("cannot subtract %d from %d", b, a))
	}
	return a - b, nil
}

// Move shifts amount from an "available" capacity field to a
// "removed/retired/extracted" one, preserving their sum. This is the
// conservation rule in one place: available shrinks by exactly what removed
// grows, or nothing changes.
func Move(available, removed *uint64, amount uint64) error {
	newAvailable, err := Sub(*available, amount)
	if err != nil {
		return err
	}
	newRemoved, err := Add(*removed, amount)
	if err != nil {
		return err
	}
	*available, *removed = newAvailable, newRemoved
	return nil
}

// Issue grows an "issued" capacity field and its "available" counterpart by
// the same amount, the mirror of Move for supply-creating transitions.
func Issue(issued, available *uint64, amount uint64) error {
	newIssued, err := Add(*issued, amount)
	if err != nil {
		return err
	}
	newAvailable, err := Add(*available, amount)
	if err != nil {
		return err
	}
	*issued, *available = newIssued, newAvailable
	return nil
}

// SubDecimal returns a-b for monetary capacity fields, failing with
// CapacityExceeded when the result would be negative.
func SubDecimal(a, b decimal.Decimal) (decimal.Decimal, error) {
	result := a.Sub(b)
	if result.Sign() < 0 {
		return decimal.Decimal{}, dErrors.New(dErrors.CodeCapacityExceeded,
			fmt.Sprintf("cannot subtract %s from %s", b, a))
	}
	return result, nil
}

// UnitsDecimal converts a unit count into an exact decimal for price and
// interest arithmetic.
func UnitsDecimal(units uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), 0)
}

// TruncateUnits floors a decimal token quantity to whole units, matching the
// integer truncation of unit-times-rate products in the original ledger.
// Negative or oversized quantities fail with CapacityExceeded.
func TruncateUnits(d decimal.Decimal) (uint64, error) {
	truncated := d.Truncate(0)
	if truncated.Sign() < 0 {
		return 0, dErrors.New(dErrors.CodeCapacityExceeded, "negative unit quantity")
	}
	bi := truncated.BigInt()
	if !bi.IsUint64() {
		return 0, dErrors.New(dErrors.CodeCapacityExceeded, "unit quantity overflows uint64")
	}
	return bi.Uint64(), nil
}
