// Package format renders KPI values the way the PCP reports print them: Brazilian Real
// amounts with "." thousands and "," decimals.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BRL formats x as "R$ 1.234.567,89" with dec decimals. Rounding is half-to-even on the
// exact binary value, so ties such as 2500.5 print as "R$ 2.500" and negatives that round to
// zero keep their sign. Undefined values print as "R$ 0".
func BRL(x float64, dec int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "R$ 0"
	}
	s := strconv.FormatFloat(x, 'f', dec, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return "R$ " + b.String()
}

// Pct formats a percentage with dec decimals. Undefined values print as 0.
func Pct(x float64, dec int) string {
	if math.IsNaN(x) {
		x = 0
	}
	return fmt.Sprintf("%.*f%%", dec, x)
}

// Days formats a lead time.
func Days(x float64) string { return fmt.Sprintf("%.2f", x) }

// Ratio formats an effectiveness multiplier.
func Ratio(x float64) string { return fmt.Sprintf("%.2fx", x) }

// SignedDays formats a lead-time delta with an explicit sign.
func SignedDays(d float64) string { return fmt.Sprintf("%+.2f", d) }

// SignedRatio formats an effectiveness delta.
func SignedRatio(d float64) string { return fmt.Sprintf("%+.2fx", d) }

// PointsDelta formats a percentage delta in percentage points.
func PointsDelta(d float64) string { return fmt.Sprintf("%+.1fpp", d) }
