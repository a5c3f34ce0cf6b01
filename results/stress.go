package results

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stress components are ordered xx, yy, zz, xy, yz, zx

func VonMises(s [6]float64) float64 {
	dxy, dyz, dzx := s[0]-s[1], s[1]-s[2], s[2]-s[0]
	return math.Sqrt(0.5*(dxy*dxy+dyz*dyz+dzx*dzx) + 3*(s[3]*s[3]+s[4]*s[4]+s[5]*s[5]))
}

func tensor(s [6]float64) *mat.SymDense {
	return mat.NewSymDense(3, []float64{
		s[0], s[3], s[5],
		s[3], s[1], s[4],
		s[5], s[4], s[2],
	})
}

/*
Principal returns the principal stresses in descending order with their unit directions.
EigenSym returns ascending eigenvalues with the eigenvectors as columns.
*/
func Principal(s [6]float64) (values [3]float64, dirs [3]r3.Vec, err error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(tensor(s), true); !ok {
		return values, dirs, fmt.Errorf("eigenvalue decomposition of stress %v failed", s)
	}
	ev := eig.Values(nil)
	vecs := mat.NewDense(3, 3, nil)
	eig.VectorsTo(vecs)
	for i := 0; i < 3; i++ {
		k := 2 - i
		values[i] = ev[k]
		dirs[i] = r3.Vec{X: vecs.At(0, k), Y: vecs.At(1, k), Z: vecs.At(2, k)}
	}
	return
}

// MaxShear is half the spread of the principal stresses
func MaxShear(p [3]float64) float64 {
	return (p[0] - p[2]) / 2
}
