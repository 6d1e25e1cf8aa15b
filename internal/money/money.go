package money

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance for monetary equality checks. Two amounts within
// one cent of each other are considered equal everywhere in the system.
const Epsilon = 0.01

// Money is a signed monetary amount tagged with a currency code.
// Amounts in different currencies are never combined.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// New creates a Money rounded to two decimal places.
func New(amount float64, currency string) Money {
	return Money{Amount: Round2(amount), Currency: currency}
}

// Round2 rounds a value to 2 decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Floor2 truncates a value down to 2 decimal places.
func Floor2(value float64) float64 {
	return math.Floor(value*100) / 100
}

// Equal reports whether two amounts are equal within Epsilon.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// IsZero reports whether an amount is negligible (below Epsilon).
func IsZero(amount float64) bool {
	return math.Abs(amount) < Epsilon
}

// ValidCurrency reports whether code is a 3-letter uppercase currency code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Add returns m + other. Panics are avoided; mismatched currencies
// return an error since the system never mixes currencies implicitly.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{Amount: Round2(m.Amount + other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s", other.Currency, m.Currency)
	}
	return Money{Amount: Round2(m.Amount - other.Amount), Currency: m.Currency}, nil
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	return Money{Amount: math.Abs(m.Amount), Currency: m.Currency}
}

// Equal reports whether two Money values have the same currency and
// amounts within Epsilon of each other.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && Equal(m.Amount, other.Amount)
}

// IsZero reports whether the amount is below Epsilon in magnitude.
func (m Money) IsZero() bool {
	return IsZero(m.Amount)
}

// String formats as "12.34 USD".
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}
