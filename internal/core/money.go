// Money parsing and handling. Amounts are stored as centavos (int64) so no
// arithmetic ever touches floating point; floats exist only at the display
// and JSON boundary.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in centavos.
type Money struct {
	Cents int64
}

// Validate rejects zero and negative amounts. Every user-entered amount in
// this domain is strictly positive.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Reais returns the amount as a float64 for display and JSON encoding.
// Use Cents for all calculations.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount the Brazilian way: "R$ 1234,56".
func (m Money) String() string {
	return fmt.Sprintf("R$ %d,%02d", m.Cents/100, m.Cents%100)
}

// ParseDecimalToCents converts a decimal string to centavos with half-up
// rounding on the third decimal place. Both comma and dot separators are
// accepted. Only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// CentsFromReais converts a float amount received over JSON to centavos with
// half-up rounding. Negative input maps to zero cents, which Validate rejects.
func CentsFromReais(v float64) Money {
	if v <= 0 {
		return Money{}
	}
	return Money{Cents: int64(v*100 + 0.5)}
}

// PerInstallment divides a total into n equal installments, rounding the
// result half-up to the cent. This runs exactly once, at creation; the
// per-installment amount stays fixed even when totals are edited later.
func PerInstallment(total Money, n int) (Money, error) {
	if n <= 0 {
		return Money{}, ErrInvalidInstallments
	}
	return Money{Cents: (2*total.Cents + int64(n)) / (2 * int64(n))}, nil
}
