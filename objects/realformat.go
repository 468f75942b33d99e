package objects

import (
	"math"
	"strconv"
	"strings"
)

// formatReal renders f as a PDF real number: rounded to 4 fractional
// digits, no exponent notation, no trailing "." or trailing zeros beyond
// what the value needs, and no "-0".
//
// Grounded on model/writeutils.go FmtFloat, which rounds via math.Pow10
// and strips trailing zeros the same way; adapted to the spec's 4-digit
// precision instead of the teacher's 5.
func formatReal(f float64) string {
	const precision = 4
	scale := math.Pow10(precision)
	rounded := math.Round(f*scale) / scale
	if rounded == 0 {
		rounded = 0 // normalize -0 to 0
	}

	s := strconv.FormatFloat(rounded, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}
