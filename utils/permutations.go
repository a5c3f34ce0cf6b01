package utils

/*
Node ordering tables between the host mesh numbering and the numbering the solver uses.
Each table is stored as host[i] = target[perm[i]], the same direction the solver's native
mesh files are read in. Writing applies the inverse.
*/
var fistrPermutations = map[ElementType][]int{
	Line:      {0, 1},
	Line3:     {0, 2, 1},
	Triangle:  {0, 2, 1},
	Triangle6: {0, 2, 1, 4, 3, 5},
	Quad:      {0, 3, 2, 1},
	Quad8:     {0, 3, 2, 1, 7, 6, 5, 4},
	Tet:       {1, 0, 2, 3},
	Tet10:     {1, 0, 2, 3, 6, 5, 4, 8, 7, 9},
	Prism:     {4, 5, 3, 1, 2, 0},
	Prism15:   {4, 5, 3, 1, 2, 0, 9, 10, 11, 6, 7, 8, 13, 14, 12},
	Hex:       {5, 6, 7, 4, 1, 2, 3, 0},
	Hex20:     {5, 6, 7, 4, 1, 2, 3, 0, 13, 14, 15, 12, 9, 10, 11, 8, 17, 18, 19, 16},
}

// AVS-UCD visualization output uses its own corner order for tetrahedra
var avsPermutations = map[ElementType][]int{
	Tet:   {1, 0, 3, 2},
	Tet10: {1, 0, 3, 2, 4, 6, 9, 7, 5, 8},
}

// Permutation returns the host[i] = target[p[i]] table for the element type
func (e ElementType) Permutation() []int {
	return fistrPermutations[e]
}

// Reorder converts a host ordered node tuple into the solver's node order
func Reorder(e ElementType, host []int) (target []int) {
	perm := fistrPermutations[e]
	target = make([]int, len(host))
	for i, p := range perm {
		target[p] = host[i]
	}
	return
}

// ToHost converts a solver ordered node tuple into the host node order
func ToHost(e ElementType, target []int) (host []int) {
	return permute(fistrPermutations[e], target)
}

// AvsToHost converts an AVS-UCD tet/tet2 node tuple into the host node order
func AvsToHost(e ElementType, avs []int) (host []int) {
	return permute(avsPermutations[e], avs)
}

func permute(perm, src []int) (dst []int) {
	dst = make([]int, len(perm))
	for i, p := range perm {
		dst[i] = src[p]
	}
	return
}

// Triangular faces of host ordered tetrahedra, corners first then midside nodes
var (
	tetFaces = [4][3]int{
		{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0},
	}
	tet10Faces = [4][6]int{
		{0, 1, 2, 4, 5, 6},
		{0, 3, 1, 7, 8, 4},
		{1, 3, 2, 8, 9, 5},
		{2, 3, 0, 9, 7, 6},
	}
)

// GetTetFaces returns the four boundary triangles of a host ordered Tet or Tet10.
// Tet10 faces are returned as 6-node triangles, Tet faces as 3-node triangles.
func GetTetFaces(elemType ElementType, vertices []int) (faces [][]int) {
	switch elemType {
	case Tet:
		faces = make([][]int, 4)
		for i, f := range tetFaces {
			faces[i] = []int{vertices[f[0]], vertices[f[1]], vertices[f[2]]}
		}
	case Tet10:
		faces = make([][]int, 4)
		for i, f := range tet10Faces {
			face := make([]int, 6)
			for j, k := range f {
				face[j] = vertices[k]
			}
			faces[i] = face
		}
	}
	return
}
