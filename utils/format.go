package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders a value in shortest round-trip form, switching to exponent
// notation outside [1e-4, 1e16). Integral values keep a trailing ".0".
func FormatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	abs := math.Abs(x)
	if x != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(x, 'e', -1, 64)
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseFloatDefault parses a decimal string, returning def and ok=false when it can't
func ParseFloatDefault(s string, def float64) (x float64, ok bool) {
	var err error
	if x, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return def, false
	}
	return x, true
}
