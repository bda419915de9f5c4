// Package mortgage implements the deterministic finance tool used by the agent.
package mortgage

import (
	"fmt"
	"math"
	"strconv"
)

// Assignment thresholds for numbers extracted from a query.
const (
	// PrincipalFloor: numbers strictly above it are read as the loan amount.
	PrincipalFloor = 100
	// TermCeiling: numbers strictly between 0 and it are read as the term in years.
	TermCeiling = 100
)

// Defaults are the terms used when a query does not override them.
type Defaults struct {
	Principal  int64
	Years      int64
	AnnualRate float64 // percent, e.g. 3.5
}

// StandardDefaults returns 200000 over 20 years at 3.5%.
func StandardDefaults() Defaults {
	return Defaults{Principal: 200000, Years: 20, AnnualRate: 3.5}
}

// Terms are the resolved loan parameters.
type Terms struct {
	Principal  int64
	Years      int64
	AnnualRate float64
}

// Resolve applies every number in order with last-write-wins semantics:
// n > 100 overwrites the principal, 0 < n < 100 overwrites the term,
// 0 and 100 are ignored.
func Resolve(numbers []int64, d Defaults) Terms {
	t := Terms{Principal: d.Principal, Years: d.Years, AnnualRate: d.AnnualRate}
	for _, n := range numbers {
		switch {
		case n > PrincipalFloor:
			t.Principal = n
		case n > 0 && n < TermCeiling:
			t.Years = n
		}
	}
	return t
}

// MonthlyPayment returns the amortized monthly installment.
// A zero rate degrades to principal / months. A non-positive term means the
// whole principal is due at once.
func (t Terms) MonthlyPayment() float64 {
	n := float64(t.Years * 12)
	principal := float64(t.Principal)
	if n <= 0 {
		return principal
	}
	r := (t.AnnualRate / 100) / 12
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * (r * growth) / (growth - 1)
}

// Describe renders the tool response shown to the user.
func (t Terms) Describe() string {
	return fmt.Sprintf(
		"Mortgage calculation: for %d€ over %d years (rate %s%%), the monthly payment is %.2f€/month.",
		t.Principal, t.Years, FormatRate(t.AnnualRate), t.MonthlyPayment(),
	)
}

// FormatRate prints a rate without trailing zeros (3.5 -> "3.5", 4 -> "4").
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
