package dataset

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens are cell values treated as absent in addition to the empty string.
var missingTokens = map[string]struct{}{
	"nan":  {},
	"null": {},
	"none": {},
	"na":   {},
	"n/a":  {},
	"-":    {},
}

// Present reports whether v holds a value. Missing numeric cells are NaN.
func Present(v float64) bool { return !math.IsNaN(v) }

// parseCell converts a raw cell into a float, returning NaN for missing or
// unparseable values. Decimal and thousands separators are auto-detected per
// value, so "1.234,5" and "1,234.5" both read as 1234.5.
func parseCell(s string) float64 {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return math.NaN()
	}
	if _, ok := missingTokens[strings.ToLower(raw)]; ok {
		return math.NaN()
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		dec = ','
	case cpos >= 0 && dpos < 0:
		dec = ','
	}
	// A repeated separator groups thousands, so the decimal is the other one.
	if strings.Count(raw, string(dec)) > 1 {
		if dec == ',' {
			dec = '.'
		} else {
			dec = ','
		}
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}
