package results

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

type Stat struct {
	Name     string
	Min, Max float64
}

func (s Stat) String() string {
	return fmt.Sprintf("%-22s min %14.6e  max %14.6e", s.Name, s.Min, s.Max)
}

// Stats is the min/max table of one result record, in the order the channels were added
type Stats []Stat

func (st *Stats) add(name string, x []float64) {
	if len(x) == 0 {
		return
	}
	*st = append(*st, Stat{Name: name, Min: floats.Min(x), Max: floats.Max(x)})
}

// Get finds a channel by name
func (st Stats) Get(name string) (Stat, bool) {
	for _, s := range st {
		if s.Name == name {
			return s, true
		}
	}
	return Stat{}, false
}

func (r *Record) fillStats() {
	var x, y, z []float64
	for _, d := range r.Displacement {
		x = append(x, d.X)
		y = append(y, d.Y)
		z = append(z, d.Z)
	}
	r.Stats = nil
	r.Stats.add("DisplacementX", x)
	r.Stats.add("DisplacementY", y)
	r.Stats.add("DisplacementZ", z)
	r.Stats.add("DisplacementLength", r.DisplacementLengths)
	r.Stats.add("VonMises", r.VonMises)
	r.Stats.add("PrincipalMax", r.PrincipalMax)
	r.Stats.add("PrincipalMed", r.PrincipalMed)
	r.Stats.add("PrincipalMin", r.PrincipalMin)
	r.Stats.add("MaxShear", r.MaxShear)
}
