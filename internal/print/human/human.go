// Package human provides types that parse and print values the way a person
// writes them: durations, sizes, times, and paths.
//
// The types are used in the tracecraft configuration, where values such as
// timeouts are written as:
//
//	replay:
//	  stopTimeout: 10s
//	  retryInterval: 5ms
//
// and in the outputs of the inspection commands, where sizes and times are
// printed as 96.0 KiB or 2h ago.
package human

import (
	"strconv"
	"strings"
	"unicode"
)

// splitNumber separates the leading decimal number of s from the unit that
// follows it, with spaces trimmed from both.
func splitNumber(s string) (number, unit string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '-' && r != '+'
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// ftoa formats v with three significant digits, dropping trailing zeros.
func ftoa(v float64) string {
	prec := 0
	switch a := v; {
	case a < 0:
		return "-" + ftoa(-v)
	case a < 10:
		prec = 2
	case a < 100:
		prec = 1
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
