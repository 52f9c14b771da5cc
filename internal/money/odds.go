package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Odds is a decimal price, for example 2.50.
type Odds struct {
	d decimal.Decimal
}

func NewOdds(d decimal.Decimal) Odds {
	return Odds{d: d}
}

// ParseOdds reads a decimal price. Prices finer than OddsPlaces are
// rejected: the stored price is what later settlements work from.
func ParseOdds(field, s string) (Odds, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Odds{}, &ValidationError{Field: field, Value: s, Reason: "not a decimal number"}
	}
	return checkOddsPlaces(field, d)
}

func checkOddsPlaces(field string, d decimal.Decimal) (Odds, error) {
	if !d.Round(OddsPlaces).Equal(d) {
		return Odds{}, &ValidationError{
			Field:  field,
			Value:  d.String(),
			Reason: fmt.Sprintf("must have at most %d decimal places", OddsPlaces),
		}
	}
	return Odds{d: d}, nil
}

// RequireOdds parses s and panics on malformed input. Intended for constants and tests.
func RequireOdds(s string) Odds {
	return Odds{d: decimal.RequireFromString(s)}
}

func (o Odds) Decimal() decimal.Decimal { return o.d }

// NetReturn is the winnings per unit staked, excluding the stake.
func (o Odds) NetReturn() decimal.Decimal { return o.d.Sub(decimal.NewFromInt(1)) }

func (o Odds) Cmp(other Odds) int { return o.d.Cmp(other.d) }

func (o Odds) LessThan(other Odds) bool { return o.d.LessThan(other.d) }

func (o Odds) IsZero() bool { return o.d.IsZero() }

func (o Odds) String() string { return o.d.StringFixed(OddsPlaces) }

func (o Odds) MarshalJSON() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Odds) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	parsed, err := checkOddsPlaces("odds", d)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func (o Odds) Value() (driver.Value, error) {
	return o.d.Round(OddsPlaces).StringFixed(OddsPlaces), nil
}

func (o *Odds) Scan(value interface{}) error {
	return o.d.Scan(value)
}

// ValidateOdds rejects prices below 1.01, which includes evens-or-worse 1.00.
func ValidateOdds(field string, o Odds) error {
	if o.d.LessThan(MinOdds) {
		return &ValidationError{Field: field, Value: o.d.String(), Reason: "must be at least " + MinOdds.String()}
	}
	return nil
}

// Rate is an exchange commission expressed as a fraction of net winnings.
type Rate struct {
	d decimal.Decimal
}

func NewRate(d decimal.Decimal) Rate {
	return Rate{d: d}
}

func ParseRate(field, s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, &ValidationError{Field: field, Value: s, Reason: "not a decimal number"}
	}
	return Rate{d: d}, nil
}

func RequireRate(s string) Rate {
	return Rate{d: decimal.RequireFromString(s)}
}

func (r Rate) Decimal() decimal.Decimal { return r.d }

// Retained is the share of net winnings kept after commission.
func (r Rate) Retained() decimal.Decimal { return decimal.NewFromInt(1).Sub(r.d) }

func (r Rate) String() string { return r.d.String() }

func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.d.String()), nil
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	return r.d.UnmarshalJSON(b)
}

func (r Rate) Value() (driver.Value, error) {
	return r.d.Round(RatePlaces).String(), nil
}

func (r *Rate) Scan(value interface{}) error {
	return r.d.Scan(value)
}

// ValidateCommission rejects commission outside [0, 0.1].
func ValidateCommission(field string, r Rate) error {
	if r.d.IsNegative() || r.d.GreaterThan(MaxCommission) {
		return &ValidationError{Field: field, Value: r.d.String(), Reason: "must be between 0 and " + MaxCommission.String()}
	}
	return nil
}
