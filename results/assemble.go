// Package results turns parsed AVS result sets into named mechanical result records with
// derived channels and statistics.
package results

import (
	"fmt"
	"math"

	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/avsucd"
	"github.com/notargets/gofistr/logging"
	"github.com/notargets/gofistr/metrics"
	"github.com/notargets/gofistr/types"
	"github.com/notargets/gofistr/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

type Options struct {
	// Prefix of the record names, e.g. FrontISTR_static_
	Prefix string
	// Reinforced adds principal stress directions and max shear, regardless of Materials
	Reinforced bool
	// Materials of the analysed model, a reinforced one adds the same channels
	Materials []analysis.Material
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

func (o Options) reinforced() bool {
	if o.Reinforced {
		return true
	}
	for _, m := range o.Materials {
		if m.Reinforced {
			return true
		}
	}
	return false
}

// Record is one mechanical result, channels are indexed like NodeNumbers
type Record struct {
	Name   string
	Number float64
	Time   float64

	NodeNumbers         []int
	Displacement        []r3.Vec
	DisplacementLengths []float64
	VonMises            []float64
	PrincipalMax        []float64
	PrincipalMed        []float64
	PrincipalMin        []float64

	// Reinforced material channels, principal directions scaled by the principal values
	PS1Vector, PS2Vector, PS3Vector []r3.Vec
	MaxShear                        []float64

	Stats Stats
}

func (r *Record) Empty() bool {
	return len(r.NodeNumbers) == 0
}

// Name returns the record name of a result set: mode results by mode number, several
// increments by their time rounded to two decimals
func Name(prefix string, set *avsucd.ResultSet, increments int) string {
	switch {
	case set.Number > 0:
		return fmt.Sprintf("%sMode%d_Results", prefix, int(set.Number))
	case increments > 1:
		return fmt.Sprintf("%sTime%s_Results", prefix, utils.FormatFloat(math.Round(set.Time*100)/100))
	}
	return prefix + "Results"
}

func emptyName(prefix string) string {
	if prefix == "" {
		return "Results"
	}
	return prefix + "_Results"
}

// Assemble builds one record per non empty result set. A result with no node results at
// all still yields one empty record, with a warning.
func Assemble(res *avsucd.Result, opts Options) (recs []Record, warnings types.Warnings, err error) {
	logger := logging.OrNop(opts.Logger).With(zap.String("file", res.Path))
	defer opts.Metrics.Time("assemble")()

	// The surface mesh is compact already, every later increment reuses its numbering
	nodeNumbers := res.Mesh.NodeIDs
	reinforced := opts.reinforced()
	for i := range res.Sets {
		set := &res.Sets[i]
		if set.Empty() {
			continue
		}
		rec := Record{
			Name:        Name(opts.Prefix, set, len(res.Sets)),
			Number:      set.Number,
			Time:        set.Time,
			NodeNumbers: nodeNumbers,
		}
		if err = rec.fill(set, reinforced); err != nil {
			return nil, warnings, fmt.Errorf("%s: %w", rec.Name, err)
		}
		rec.fillStats()
		recs = append(recs, rec)
		logger.Debug("result record assembled", zap.String("name", rec.Name), zap.Int("nodes", len(nodeNumbers)))
	}
	if len(recs) == 0 {
		msg := warnings.Add("%s: nodes but no results, only the mesh is available", res.Path)
		logger.Warn(msg)
		recs = append(recs, Record{Name: emptyName(opts.Prefix), Number: math.NaN(), Time: math.NaN()})
	}
	opts.Metrics.RecordResultSets(len(recs))
	opts.Metrics.RecordWarnings("assemble", len(warnings))
	return recs, warnings, nil
}

func (r *Record) fill(set *avsucd.ResultSet, reinforced bool) error {
	n := len(r.NodeNumbers)
	r.Displacement = make([]r3.Vec, n)
	r.DisplacementLengths = make([]float64, n)
	r.VonMises = make([]float64, n)
	r.PrincipalMax = make([]float64, n)
	r.PrincipalMed = make([]float64, n)
	r.PrincipalMin = make([]float64, n)
	if reinforced {
		r.PS1Vector = make([]r3.Vec, n)
		r.PS2Vector = make([]r3.Vec, n)
		r.PS3Vector = make([]r3.Vec, n)
		r.MaxShear = make([]float64, n)
	}
	for i, nid := range r.NodeNumbers {
		d, ok := set.Displacement[nid]
		if !ok {
			return fmt.Errorf("node %d has no displacement", nid)
		}
		r.Displacement[i] = d
		r.DisplacementLengths[i] = r3.Norm(d)

		s, ok := set.Stress[nid]
		if !ok {
			return fmt.Errorf("node %d has no stress", nid)
		}
		if set.Mises != nil {
			r.VonMises[i] = set.Mises[nid]
		} else {
			r.VonMises[i] = VonMises(s)
		}

		var (
			p    [3]float64
			dirs [3]r3.Vec
			err  error
		)
		computed := set.Principal == nil || reinforced
		if computed {
			if p, dirs, err = Principal(s); err != nil {
				return fmt.Errorf("node %d: %w", nid, err)
			}
		}
		if set.Principal != nil {
			p = set.Principal[nid]
		}
		r.PrincipalMax[i], r.PrincipalMed[i], r.PrincipalMin[i] = p[0], p[1], p[2]
		if reinforced {
			r.PS1Vector[i] = r3.Scale(p[0], dirs[0])
			r.PS2Vector[i] = r3.Scale(p[1], dirs[1])
			r.PS3Vector[i] = r3.Scale(p[2], dirs[2])
			r.MaxShear[i] = MaxShear(p)
		}
	}
	return nil
}
