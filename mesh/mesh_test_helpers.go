package mesh

import (
	"github.com/notargets/gofistr/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Small meshes shared by the tests of several packages

// NewTwoTetMesh returns two linear tetrahedra sharing the face (2,3,4)
func NewTwoTetMesh() *Mesh {
	m := NewMesh()
	coords := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
	}
	for i, x := range coords {
		mustNot(m.AddNode(i+1, x))
	}
	mustNot(m.AddElement(1, utils.Tet, []int{1, 2, 3, 4}))
	mustNot(m.AddElement(2, utils.Tet, []int{2, 3, 4, 5}))
	return m
}

// NewHexMesh returns a row of n unit hexahedra along x, ids starting at 1
func NewHexMesh(n int) *Mesh {
	m := NewMesh()
	nid := func(i, j, k int) int { return 1 + i + (n+1)*(j+2*k) }
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i <= n; i++ {
				mustNot(m.AddNode(nid(i, j, k), r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}))
			}
		}
	}
	for i := 0; i < n; i++ {
		mustNot(m.AddElement(i+1, utils.Hex, []int{
			nid(i, 0, 0), nid(i+1, 0, 0), nid(i+1, 1, 0), nid(i, 1, 0),
			nid(i, 0, 1), nid(i+1, 0, 1), nid(i+1, 1, 1), nid(i, 1, 1),
		}))
	}
	return m
}

// NewShellStripMesh returns a row of n unit quad shells in the z=0 plane
func NewShellStripMesh(n int) *Mesh {
	m := NewMesh()
	for j := 0; j < 2; j++ {
		for i := 0; i <= n; i++ {
			mustNot(m.AddNode(1+i+j*(n+1), r3.Vec{X: float64(i), Y: float64(j)}))
		}
	}
	for i := 0; i < n; i++ {
		mustNot(m.AddElement(i+1, utils.Quad, []int{1 + i, 2 + i, 2 + i + (n + 1), 1 + i + (n + 1)}))
	}
	return m
}

func mustNot(err error) {
	if err != nil {
		panic(err)
	}
}
