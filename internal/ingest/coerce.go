package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericPattern accepts plain decimals and scientific notation. Hex floats,
// thousands separators, and words like "NaN" or "Inf" are rejected.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseIntOrDefault converts a CSV cell to an integer.
//
// Surrounding whitespace is ignored. Integers parse exactly; other numeric
// text is parsed as a float and truncated toward zero ("3.7" -> 3,
// "-3.7" -> -3, "3.7e10" -> 37000000000). Empty or non-numeric text, and
// values outside the int64 range, yield def.
func ParseIntOrDefault(text string, def int64) int64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return def
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	if !numericPattern.MatchString(s) {
		return def
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}

	f = math.Trunc(f)
	if f < -(1<<63) || f >= 1<<63 {
		return def
	}
	return int64(f)
}
