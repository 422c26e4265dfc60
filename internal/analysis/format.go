package analysis

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// fixed2 renders two decimals; negative zero prints as 0.00.
func fixed2(v float64) string {
	if v == 0 {
		v = 0
	}
	return fmt.Sprintf("%.2f", v)
}

// signedPositive prefixes strictly positive values with "+".
func signedPositive(v float64) string {
	if v > 0 {
		return "+" + fixed2(v)
	}
	return fixed2(v)
}

// signedNonNegative prefixes zero and positive values with "+".
func signedNonNegative(v float64) string {
	if v >= 0 {
		return "+" + fixed2(v)
	}
	return fixed2(v)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
