package tree

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// digitRun matches any Unicode decimal digits, fullwidth and
// Arabic-Indic included.
var digitRun = regexp.MustCompile(`\p{Nd}+`)

// Text returns the canonical string form of v.
//
// Strings come back verbatim, numbers as their source literal, booleans
// as "true"/"false", and arrays and objects as compact JSON. A missing
// or null value is absent.
func Text(v Value) (string, bool) {
	switch val := v.(type) {
	case nil, Null:
		return "", false
	case String:
		return string(val), true
	case Number:
		return string(val), true
	case Bool:
		return strconv.FormatBool(bool(val)), true
	default:
		b, err := Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// ExtractInt pulls the first run of decimal digits out of v's text form
// and parses it. "Tagesordnungspunkt 7" gives 7, "12b" gives 12, and
// "N/A" is absent. A run too long for int64 is absent as well.
func ExtractInt(v Value) (int64, bool) {
	s, ok := Text(v)
	if !ok {
		return 0, false
	}
	run := digitRun.FindString(s)
	if run == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(asciiDigits(run), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// asciiDigits rewrites a run of Unicode decimal digits as ASCII. Every
// Nd block is a contiguous 0-9 sequence, so a digit's value is its
// distance from the start of its block.
func asciiDigits(run string) string {
	var b strings.Builder
	for _, r := range run {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		k := 0
		for unicode.Is(unicode.Nd, r-rune(k)-1) {
			k++
		}
		b.WriteByte(byte('0' + k%10))
	}
	return b.String()
}

// Int returns v as an exact integer: an integral number literal, or a
// string that holds one. Anything else is absent.
func Int(v Value) (int64, bool) {
	switch val := v.(type) {
	case Number:
		return parseIntegral(string(val))
	case String:
		return parseIntegral(strings.TrimSpace(string(val)))
	default:
		return 0, false
	}
}

func parseIntegral(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
