package elset

import (
	"errors"
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/gofistr/utils"
	"gonum.org/v1/gonum/mat"
)

var ErrElementCountMismatch = errors.New("element sets do not cover every element exactly once")

// Reconcile checks that the records of class cover each element of the class exactly once.
// Coverage is the column sum of the record by element incidence matrix.
func (b *Builder) Reconcile(recs []Record, class utils.ElementClass) error {
	ids := b.classIDs[class]
	var rows []Record
	for _, rec := range recs {
		if rec.Class == class {
			rows = append(rows, rec)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: no element set for %d %s", ErrElementCountMismatch, len(ids), class)
	}
	col := make(map[int]int, len(ids))
	for j, id := range ids {
		col[id] = j
	}
	incidence := sparse.NewDOK(len(rows), len(ids))
	for i, rec := range rows {
		if rec.All {
			for j := range ids {
				incidence.Set(i, j, 1)
			}
			continue
		}
		for _, id := range rec.Elements {
			j, ok := col[id]
			if !ok {
				return fmt.Errorf("%w: element %d of set %s is not in %s", ErrElementCountMismatch, id, rec.Name, class)
			}
			incidence.Set(i, j, 1)
		}
	}
	ones := make([]float64, len(rows))
	for i := range ones {
		ones[i] = 1
	}
	var cover mat.VecDense
	cover.MulVec(incidence.ToCSR().T(), mat.NewVecDense(len(rows), ones))
	var missing, shared int
	for j := range ids {
		switch c := cover.AtVec(j); {
		case c < 0.5:
			missing++
		case c > 1.5:
			shared++
		}
	}
	if missing != 0 || shared != 0 {
		return fmt.Errorf("%w: %s has %d uncovered and %d multiply covered elements",
			ErrElementCountMismatch, class, missing, shared)
	}
	return nil
}
