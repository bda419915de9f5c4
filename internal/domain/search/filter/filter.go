// Package filter describes attribute pre-filters applied before vector ranking.
package filter

// Expression is a conjunction of numeric range conditions.
type Expression struct {
	must []Condition
}

// PriceAtMost is the hard budget filter: price <= ceiling.
func PriceAtMost(ceiling float64) Expression {
	return Expression{must: []Condition{{key: "price", rangeExpr: Range{lte: &ceiling}}}}
}

// Must returns the conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Condition is a numeric range on one field.
type Condition struct {
	key       string
	rangeExpr Range
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Range returns the numeric range expression.
func (c Condition) Range() Range { return c.rangeExpr }

// Range is an inclusive upper bound on a numeric field.
type Range struct {
	lte *float64
}

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
