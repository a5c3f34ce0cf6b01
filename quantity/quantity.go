// Package quantity converts material property strings such as "210000 MPa" into the
// t/mm/s/K unit system the solver input is written in.
package quantity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// dim holds the exponents of length, mass, time and temperature
type dim [4]int

type unit struct {
	factor float64 // to SI
	dim    dim
}

var (
	length      = dim{1, 0, 0, 0}
	mass        = dim{0, 1, 0, 0}
	tim         = dim{0, 0, 1, 0}
	temperature = dim{0, 0, 0, 1}
	force       = dim{1, 1, -2, 0}
	pressure    = dim{-1, 1, -2, 0}
	energy      = dim{2, 1, -2, 0}
	power       = dim{2, 1, -3, 0}
)

var units = map[string]unit{
	"m": {1, length}, "mm": {1e-3, length}, "cm": {1e-2, length},
	"km": {1e3, length}, "µm": {1e-6, length}, "μm": {1e-6, length}, "um": {1e-6, length},
	"kg": {1, mass}, "g": {1e-3, mass}, "t": {1e3, mass},
	"s": {1, tim}, "ms": {1e-3, tim}, "min": {60, tim}, "h": {3600, tim},
	"K": {1, temperature},
	"N": {1, force}, "kN": {1e3, force}, "MN": {1e6, force}, "mN": {1e-3, force},
	"Pa": {1, pressure}, "kPa": {1e3, pressure}, "MPa": {1e6, pressure}, "GPa": {1e9, pressure},
	"J": {1, energy}, "kJ": {1e3, energy}, "mJ": {1e-3, energy},
	"W": {1, power}, "kW": {1e3, power}, "mW": {1e-3, power},
}

var numberRE = regexp.MustCompile(`^\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*(.*?)\s*$`)

// Quantity is a parsed magnitude with its (possibly empty) unit expression
type Quantity struct {
	Value float64
	Unit  string
}

// Parse splits a string like "7900 kg/m^3" into value and unit and checks the unit is known
func Parse(s string) (q Quantity, err error) {
	m := numberRE.FindStringSubmatch(s)
	if m == nil {
		return q, fmt.Errorf("invalid quantity %q", s)
	}
	if q.Value, err = strconv.ParseFloat(m[1], 64); err != nil {
		return q, fmt.Errorf("invalid quantity %q: %v", s, err)
	}
	q.Unit = m[2]
	if _, err = parseUnit(q.Unit); err != nil {
		return q, fmt.Errorf("invalid quantity %q: %v", s, err)
	}
	return
}

// In converts the quantity to the target unit expression
func (q Quantity) In(target string) (float64, error) {
	from, err := parseUnit(q.Unit)
	if err != nil {
		return 0, err
	}
	to, err := parseUnit(target)
	if err != nil {
		return 0, err
	}
	if from.dim != to.dim {
		return 0, fmt.Errorf("cannot convert %q to %q", q.Unit, target)
	}
	return q.Value * from.factor / to.factor, nil
}

func (q Quantity) String() string {
	if q.Unit == "" {
		return strconv.FormatFloat(q.Value, 'g', -1, 64)
	}
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit
}

// Convert parses s and converts it to the target unit in one step
func Convert(s, target string) (float64, error) {
	q, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return q.In(target)
}

// parseUnit reads expressions like "kg/m^3", "W/m/K" or "N*mm": the first factor group is
// the numerator, every "/" starts a denominator factor.
func parseUnit(expr string) (u unit, err error) {
	u.factor = 1
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return
	}
	for i, group := range strings.Split(expr, "/") {
		sign := 1
		if i > 0 {
			sign = -1
		}
		for _, tok := range strings.FieldsFunc(group, func(r rune) bool { return r == '*' || r == '·' || r == ' ' }) {
			name, exp := tok, 1
			if k := strings.Index(tok, "^"); k >= 0 {
				name = tok[:k]
				if exp, err = strconv.Atoi(tok[k+1:]); err != nil {
					return u, fmt.Errorf("invalid exponent in %q", tok)
				}
			}
			base, ok := units[name]
			if !ok {
				return u, fmt.Errorf("unknown unit %q", name)
			}
			e := sign * exp
			u.factor *= math.Pow(base.factor, float64(e))
			for j := range u.dim {
				u.dim[j] += e * base.dim[j]
			}
		}
	}
	return
}
