// Package numeric holds the fixed-point conversions shared by balance
// producers. All arithmetic is exact; nothing here goes through float64.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatUnits scales a raw integer amount down by 10^decimals and renders a
// fixed (non-exponential) decimal string with no trailing zeros.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromBigInt(raw, int32(-decimals)).String()
}

// ValidateBalance checks that a balance string parses as a non-negative
// decimal. Callers drop malformed values instead of publishing them.
func ValidateBalance(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("malformed balance %q: %w", value, err)
	}
	if d.IsNegative() {
		return fmt.Errorf("negative balance %q", value)
	}
	return nil
}
