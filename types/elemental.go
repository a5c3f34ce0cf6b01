package types

import "fmt"

/*
FaceKey identifies a triangular face by its three corner node ids in ascending order.
A face shared by two tetrahedra is visited with different corner orders from each side,
both produce the same key.
*/
type FaceKey [3]int

func NewFaceKey(verts [3]int) (key FaceKey) {
	a, b, c := verts[0], verts[1], verts[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	key = FaceKey{a, b, c}
	return
}

// NewFaceKeyFromSlice keys a face by its first three (corner) nodes
func NewFaceKeyFromSlice(face []int) FaceKey {
	if len(face) < 3 {
		panic(fmt.Errorf("face needs at least three corner nodes, have %d", len(face)))
	}
	return NewFaceKey([3]int{face[0], face[1], face[2]})
}

func (fk FaceKey) GetVertices() [3]int {
	return [3]int(fk)
}

func (fk FaceKey) String() string {
	return fmt.Sprintf("(%d,%d,%d)", fk[0], fk[1], fk[2])
}
