// Package numeric pulls integer tokens out of free text.
package numeric

import (
	"errors"
	"math"
	"strconv"
)

// Extract returns every maximal run of ASCII digits in text, parsed as base-10,
// in order of appearance. Duplicates are kept. Runs that overflow int64 saturate
// at math.MaxInt64.
func Extract(text string) []int64 {
	var out []int64
	start := -1
	for i := 0; i <= len(text); i++ {
		if i < len(text) && isDigit(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, parseRun(text[start:i]))
			start = -1
		}
	}
	return out
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseRun(run string) int64 {
	n, err := strconv.ParseInt(run, 10, 64)
	if err != nil {
		// Only ErrRange is possible for a pure digit run.
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt64
		}
		return 0
	}
	return n
}
