// Package money holds the amount rules shared by the donation flow: parsing
// client input, bounds, and conversion to gateway minor units.
package money

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotNumeric   = errors.New("amount is not numeric")
	ErrNotPositive  = errors.New("amount must be positive")
	ErrSubMinorUnit = errors.New("amount has more precision than the currency allows")
	ErrOutOfRange   = errors.New("amount is outside the allowed range")
	ErrCurrency     = errors.New("unsupported currency")
)

// exponents lists the minor-unit exponent per ISO 4217 code we accept.
var exponents = map[string]int32{
	"INR": 2,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
}

func Exponent(currency string) (int32, error) {
	exp, ok := exponents[strings.ToUpper(currency)]
	if !ok {
		return 0, ErrCurrency
	}
	return exp, nil
}

// Input limits for client amounts. Comparing decimals rescales them to a
// common exponent, so an unbounded exponent costs unbounded CPU.
const (
	maxInputLen = 32
	maxExponent = 18
)

// ParseJSON accepts a JSON number or a quoted numeric string. null, empty
// input, booleans and non-numeric strings are rejected, and so is anything
// longer than maxInputLen or with an exponent outside ±maxExponent.
func ParseJSON(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxInputLen+2 {
		return decimal.Decimal{}, ErrOutOfRange
	}
	if s == "" || s == "null" {
		return decimal.Decimal{}, ErrNotNumeric
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Decimal{}, ErrNotNumeric
		}
		s = strings.TrimSpace(str)
	}
	if len(s) > maxInputLen {
		return decimal.Decimal{}, ErrOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrNotNumeric
	}
	if !exponentInRange(d) {
		return decimal.Decimal{}, ErrOutOfRange
	}
	return d, nil
}

func exponentInRange(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -maxExponent && e <= maxExponent
}

// Bounds is the inclusive range of transactable amounts in major units.
type Bounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (b Bounds) Check(amount decimal.Decimal) error {
	if !exponentInRange(amount) {
		return ErrOutOfRange
	}
	if !amount.IsPositive() {
		return ErrNotPositive
	}
	if amount.LessThan(b.Min) || amount.GreaterThan(b.Max) {
		return ErrOutOfRange
	}
	return nil
}

// ToMinor converts a major-unit amount to an integer count of minor units.
// Amounts that would need rounding are rejected rather than rounded.
func ToMinor(amount decimal.Decimal, currency string) (int64, error) {
	exp, err := Exponent(currency)
	if err != nil {
		return 0, err
	}
	scaled := amount.Shift(exp)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrSubMinorUnit
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, ErrOutOfRange
	}
	return scaled.IntPart(), nil
}

// FromMinor is the inverse of ToMinor.
func FromMinor(minor int64, currency string) decimal.Decimal {
	exp, err := Exponent(currency)
	if err != nil {
		exp = 2
	}
	return decimal.New(minor, -exp)
}
