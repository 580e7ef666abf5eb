package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// BaseCurrency is the currency every price and booking total is stored in.
const BaseCurrency = "USD"

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrAmountOverflow   = errors.New("money: amount out of range")
)

// Money keeps amounts in integer minor units (cents) to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(currency)
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor. It wraps on
// overflow; totals use MultiplyChecked.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// MultiplyChecked is Multiply that fails with ErrAmountOverflow instead of
// wrapping around int64.
func (m Money) MultiplyChecked(times int64) (Money, error) {
	a := m.Amount
	if a == 0 || times == 0 {
		return Money{Currency: m.Currency}, nil
	}
	if (a == -1 && times == math.MinInt64) || (times == -1 && a == math.MinInt64) {
		return Money{}, fmt.Errorf("%w: %d x %d", ErrAmountOverflow, a, times)
	}
	product := a * times
	if product/times != a {
		return Money{}, fmt.Errorf("%w: %d x %d", ErrAmountOverflow, a, times)
	}
	return Money{Amount: product, Currency: m.Currency}, nil
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Decimal renders the amount in major units with two fraction digits, e.g. "800.00".
func (m Money) Decimal() string {
	// uint64 negation keeps math.MinInt64 representable.
	amount := uint64(m.Amount)
	sign := ""
	if m.Amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

func (m Money) String() string {
	return m.Currency + " " + m.Decimal()
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
