// Package units converts between the contract's integer base units and the
// decimal display units shown to users (1 display unit = 10^18 base units).
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vietddude/artbid/internal/core/domain"
)

// Decimals is the base-unit scale exponent.
const Decimals = 18

// maxBits bounds base-unit amounts to the contract's uint256 range.
const maxBits = 256

// ToBaseUnits scales a display amount to base units. The result must be a
// non-negative integer representable as uint256.
func ToBaseUnits(display decimal.Decimal) (*big.Int, error) {
	if display.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount %s", domain.ErrConversion, display)
	}

	scaled := display.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf(
			"%w: %s has more than %d decimal places",
			domain.ErrConversion,
			display,
			Decimals,
		)
	}

	base := scaled.BigInt()
	if base.BitLen() > maxBits {
		return nil, fmt.Errorf("%w: %s is out of range", domain.ErrConversion, display)
	}
	return base, nil
}

// ToDisplayUnits scales base units down to a display amount.
func ToDisplayUnits(base *big.Int) decimal.Decimal {
	if base == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(base, -Decimals)
}

// ParseDisplay parses user input such as "0.5" into a display amount.
func ParseDisplay(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", domain.ErrConversion)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domain.ErrConversion, s)
	}
	return d, nil
}

// ParseBaseUnits parses display text straight into base units.
func ParseBaseUnits(s string) (*big.Int, error) {
	d, err := ParseDisplay(s)
	if err != nil {
		return nil, err
	}
	return ToBaseUnits(d)
}

// FormatDisplay renders base units as display text, e.g. 1500000000000000000 -> "1.5".
func FormatDisplay(base *big.Int) string {
	return ToDisplayUnits(base).String()
}
