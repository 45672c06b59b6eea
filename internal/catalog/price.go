package catalog

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice converts a currency-formatted price such as "$1,200.00" to a
// float by dropping every character that is not a digit or a decimal point.
// Anything after a second decimal point is ignored. Prices that contain no
// digits return NaN.
func ParsePrice(price string) float64 {
	var b strings.Builder
	b.Grow(len(price))
	dot := false
	for _, r := range price {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if dot {
				return parseCleaned(b.String())
			}
			dot = true
			b.WriteRune(r)
		}
	}
	return parseCleaned(b.String())
}

func parseCleaned(s string) float64 {
	if s == "" || s == "." {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
