package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is a wrapper around apd.Decimal that keeps cash and prices exact
// and gives the domain layer clean arithmetic methods.
type Decimal struct {
	apd.Decimal
}

// DefaultContext is used for arithmetic operations.
var DefaultContext = apd.BaseContext.WithPrecision(20)

// displayContext is wider than DefaultContext so quantizing a large value
// to cents never runs out of digits.
var displayContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(40)
	ctx.Rounding = apd.RoundHalfEven
	return ctx
}()

// exactContext is used where a rounded result would silently lose money.
var exactContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(40)
	ctx.Traps |= apd.Inexact
	return ctx
}()

// Zero constant for convenience
var Zero = NewDecimalFromInt(0)

// NewDecimalFromInt creates a Decimal from an int64
func NewDecimalFromInt(v int64) Decimal {
	d := Decimal{}
	d.SetInt64(v)
	return d
}

// NewDecimalFromString creates a Decimal from a string
func NewDecimalFromString(v string) (Decimal, error) {
	d := Decimal{}
	_, _, err := d.SetString(v)
	if err != nil {
		return d, fmt.Errorf("invalid decimal string %s: %w", v, err)
	}
	if !d.IsFinite() {
		return d, fmt.Errorf("invalid decimal string %s: not a finite number", v)
	}
	return d, nil
}

// NewDecimalFromFloat creates a Decimal from the shortest decimal
// representation of v.
func NewDecimalFromFloat(v float64) (Decimal, error) {
	d := Decimal{}
	if _, err := d.SetFloat64(v); err != nil {
		return d, fmt.Errorf("invalid decimal float %v: %w", v, err)
	}
	if !d.IsFinite() {
		return d, fmt.Errorf("invalid decimal float %v: not a finite number", v)
	}
	return d, nil
}

// MustDecimal parses v and panics on failure. Only for constants.
func MustDecimal(v string) Decimal {
	d, err := NewDecimalFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

// String implements the fmt.Stringer interface.
func (d Decimal) String() string {
	return d.Decimal.String()
}

// Arithmetic Helpers

func (d Decimal) Add(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Add(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("add operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) Sub(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Sub(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("sub operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) Mul(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Mul(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("mul operation failed: %w", err)
	}
	return res, nil
}

// AddExact is Add that fails instead of rounding.
func (d Decimal) AddExact(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := exactContext.Add(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return Decimal{}, fmt.Errorf("add %s to %s: %w", other, d, err)
	}
	return res, nil
}

// SubExact is Sub that fails instead of rounding.
func (d Decimal) SubExact(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := exactContext.Sub(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return Decimal{}, fmt.Errorf("subtract %s from %s: %w", other, d, err)
	}
	return res, nil
}

// MulInt multiplies d by an integer quantity.
func (d Decimal) MulInt(n int64) (Decimal, error) {
	return d.Mul(NewDecimalFromInt(n))
}

func (d Decimal) IsZero() bool {
	return d.Decimal.IsZero()
}

// IsFinite reports whether d is a number, not NaN or an infinity.
func (d Decimal) IsFinite() bool {
	return d.Form == apd.Finite
}

func (d Decimal) IsNegative() bool {
	return d.Decimal.Sign() < 0
}

func (d Decimal) IsPositive() bool {
	return d.Decimal.Sign() > 0
}

func (d Decimal) Equal(other Decimal) bool {
	return d.Decimal.Cmp(&other.Decimal) == 0
}

func (d Decimal) Cmp(other Decimal) int {
	return d.Decimal.Cmp(&other.Decimal)
}

// Max returns the larger of d and other.
func (d Decimal) Max(other Decimal) Decimal {
	if d.Cmp(other) < 0 {
		return other
	}
	return d
}

// Float64 returns the nearest float64, for logs and approximate checks.
func (d Decimal) Float64() float64 {
	f, _ := d.Decimal.Float64()
	return f
}

// MarshalJSON implements the json.Marshaler interface.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	// Remove quotes if present
	s := string(data)
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NewDecimalFromString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Round rounds the decimal to the specified number of places using
// round-half-even. Only display code should call it.
func (d Decimal) Round(places int32) (Decimal, error) {
	res := Decimal{}
	if _, err := displayContext.Quantize(&res.Decimal, &d.Decimal, -places); err != nil {
		return res, fmt.Errorf("quantize operation failed: %w", err)
	}
	return res, nil
}

// MinorUnits returns d rounded to places and expressed as an integer count
// of 10^-places units, e.g. cents for places=2.
func (d Decimal) MinorUnits(places int32) (int64, error) {
	rounded, err := d.Round(places)
	if err != nil {
		return 0, err
	}
	if !rounded.Coeff.IsInt64() {
		return 0, fmt.Errorf("decimal %s overflows int64 minor units", d)
	}
	units := rounded.Coeff.Int64()
	if rounded.Negative {
		units = -units
	}
	return units, nil
}
