// Package format holds the pure display-string helpers consumed by the
// tooltip and indicator layers: fixed-precision prices, thousands grouping,
// folding of long zero runs in small decimals and big-number abbreviation.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

var foldDigits = []rune("₀₁₂₃₄₅₆₇₈₉")

// Precision renders v with exactly precision fraction digits. Negative
// precision falls back to plain formatting.
func Precision(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Thousands inserts sep between every integer-digit group of three. The
// fractional part is left untouched. Empty sep returns s unchanged.
func Thousands(s, sep string) string {
	if sep == "" || s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	intPart := s
	frac := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

// FoldDecimal compresses a run of zeros directly after the decimal point
// into a subscript count when the run is longer than threshold, so
// "0.0000012" folds to "0.0₅12". A threshold below one disables folding.
func FoldDecimal(s string, threshold int) string {
	if threshold < 1 {
		return s
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	frac := s[dot+1:]
	zeros := 0
	for zeros < len(frac) && frac[zeros] == '0' {
		zeros++
	}
	if zeros <= threshold || zeros == len(frac) {
		return s
	}
	var sub strings.Builder
	for _, d := range strconv.Itoa(zeros) {
		sub.WriteRune(foldDigits[d-'0'])
	}
	return s[:dot+1] + "0" + sub.String() + frac[zeros:]
}

// BigNumber abbreviates large magnitudes with K/M/B suffixes, used for
// volume legends.
func BigNumber(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.3fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.3fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.3fK", v/1e3)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
