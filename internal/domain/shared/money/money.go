package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept on output amounts.
const Places = 2

var (
	ErrInvalidCurrency = errors.New("money: invalid currency code")
	ErrInvalidAmount   = errors.New("money: invalid decimal amount")
)

// Money is a decimal amount tagged with an ISO 4217 currency code.
// Amounts are never held in binary floating point.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// New constructs Money validating the currency code. The code is upper-cased.
func New(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return Money{}, ErrInvalidCurrency
		}
	}
	return Money{Amount: amount, Currency: code}, nil
}

// Parse reads a decimal string such as "315" or "94.50".
func Parse(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// Round rounds half away from zero to Places fractional digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders the amount rounded with exactly Places fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

func (m Money) Rounded() Money {
	return Money{Amount: Round(m.Amount), Currency: m.Currency}
}

// String renders "<amount> <currency>" with fixed precision.
func (m Money) String() string {
	return Format(m.Amount) + " " + m.Currency
}
