// Package money holds the fixed-point value types used for stakes, odds and
// commission rates. Arithmetic keeps full precision; figures are rounded once,
// half away from zero, when they are persisted or returned to a client.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	CurrencyPlaces int32 = 2
	OddsPlaces     int32 = 2
	RatePlaces     int32 = 4
)

var (
	// MinOdds is the lowest decimal price a bookmaker or exchange can offer.
	MinOdds = decimal.RequireFromString("1.01")
	// MaxCommission is the highest exchange commission accepted as plausible.
	MaxCommission = decimal.RequireFromString("0.1")

	hundred = decimal.NewFromInt(100)
)

// ValidationError is returned for malformed monetary or odds input.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	// Stage is the progress stage at the time of rejection, if any.
	Stage string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	if e.Stage != "" {
		msg += fmt.Sprintf(" (stage %s)", e.Stage)
	}
	return msg
}

// Amount is a currency value.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// NewAmount wraps a decimal without rounding it.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// ParseAmount parses a decimal string. field names the input for error reporting.
func ParseAmount(field, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &ValidationError{Field: field, Value: s, Reason: "not a decimal number"}
	}
	return Amount{d: d}, nil
}

// RequireAmount parses s and panics on malformed input. Intended for constants and tests.
func RequireAmount(s string) Amount {
	return Amount{d: decimal.RequireFromString(s)}
}

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Mul multiplies by a rational factor such as odds or a ratio.
func (a Amount) Mul(f decimal.Decimal) Amount { return Amount{d: a.d.Mul(f)} }

func (a Amount) Div(f decimal.Decimal) Amount { return Amount{d: a.d.Div(f)} }

func (a Amount) Neg() Amount { return Amount{d: a.d.Neg()} }

func (a Amount) Abs() Amount { return Amount{d: a.d.Abs()} }

// Round returns the amount rounded to currency precision.
func (a Amount) Round() Amount { return Amount{d: a.d.Round(CurrencyPlaces)} }

func (a Amount) IsZero() bool     { return a.d.IsZero() }
func (a Amount) IsPositive() bool { return a.d.IsPositive() }
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

// Equal compares at currency precision.
func (a Amount) Equal(b Amount) bool { return a.Round().d.Equal(b.Round().d) }

func (a Amount) LessThan(b Amount) bool    { return a.d.LessThan(b.d) }
func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }

// Percent returns a as a percentage of b, unrounded. b must be non-zero.
func (a Amount) Percent(b Amount) decimal.Decimal {
	return a.d.Div(b.d).Mul(hundred)
}

func (a Amount) Float64() float64 {
	f, _ := a.Round().d.Float64()
	return f
}

func (a Amount) String() string { return a.d.StringFixed(CurrencyPlaces) }

// MarshalJSON writes the rounded amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.d.UnmarshalJSON(b)
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(value interface{}) error {
	return a.d.Scan(value)
}

// SumAmounts adds amounts without intermediate rounding.
func SumAmounts(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// RequirePositive rejects zero and negative amounts.
func RequirePositive(field string, a Amount) error {
	if !a.IsPositive() {
		return &ValidationError{Field: field, Value: a.d.String(), Reason: "must be greater than zero"}
	}
	return nil
}
