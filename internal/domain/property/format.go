package property

import (
	"fmt"
	"strconv"
)

// FormatPrice prints a price without trailing zeros (250000 -> "250000").
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// Summary renders the single-candidate search answer.
func (p *Property) Summary() string {
	return fmt.Sprintf("Found: %s at %s€. %s", p.address, FormatPrice(p.price), p.description)
}
