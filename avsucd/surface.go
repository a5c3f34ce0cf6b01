package avsucd

import (
	"fmt"

	"github.com/notargets/gofistr/types"
	"github.com/notargets/gofistr/utils"
)

// Renumbering maps original AVS ids onto the dense ids of the extracted surface mesh
type Renumbering struct {
	// Original node id -> compact id, compact ids run 1..N in node block order
	Nodes map[int]int
	// Original[c-1] is the original id of compact node c
	Original []int
	// Surface face id -> compact element id, tri6 faces first
	Elements map[int]int
}

// Compact returns the compact id of an original node
func (r *Renumbering) Compact(nid int) (c int, ok bool) {
	c, ok = r.Nodes[nid]
	return
}

// tet is a host ordered tetrahedron read from the element block
type tet struct {
	id    int
	etype utils.ElementType
	nodes []int
}

// face is a boundary triangle, corners first then midside nodes
type face struct {
	id    int
	etype utils.ElementType
	nodes []int
}

type faceCount struct {
	nodes []int
	seen  int
}

// boundaryFaces hashes the faces of all tets of one type, a face visited exactly once lies
// on the boundary. Faces are returned in first visit order.
func boundaryFaces(tets []tet, etype utils.ElementType) (faces [][]int) {
	var (
		table = make(map[types.FaceKey]*faceCount)
		order []types.FaceKey
	)
	for _, t := range tets {
		if t.etype != etype {
			continue
		}
		for _, f := range utils.GetTetFaces(etype, t.nodes) {
			key := types.NewFaceKeyFromSlice(f)
			fc, ok := table[key]
			if !ok {
				fc = &faceCount{nodes: f}
				table[key] = fc
				order = append(order, key)
			}
			fc.seen++
		}
	}
	for _, key := range order {
		if fc := table[key]; fc.seen == 1 {
			faces = append(faces, fc.nodes)
		}
	}
	return
}

// extractSurface returns the tri6 boundary faces of the tet10 elements followed by the tri3
// faces of the tet4 elements, numbered from 1 in that order
func extractSurface(tets []tet) (faces []face) {
	id := 0
	for _, pair := range []struct{ solid, surface utils.ElementType }{
		{utils.Tet10, utils.Triangle6},
		{utils.Tet, utils.Triangle},
	} {
		for _, nodes := range boundaryFaces(tets, pair.solid) {
			id++
			faces = append(faces, face{id: id, etype: pair.surface, nodes: nodes})
		}
	}
	return
}

// renumber keeps the nodes used by the surface, in node block order, and numbers nodes and
// faces densely from 1. A face naming a node absent from the node block is an error.
func renumber(nodeOrder []int, faces []face) (rn Renumbering, err error) {
	used := make(map[int]bool)
	for _, f := range faces {
		for _, n := range f.nodes {
			used[n] = true
		}
	}
	rn.Nodes = make(map[int]int, len(used))
	for _, nid := range nodeOrder {
		if used[nid] {
			rn.Original = append(rn.Original, nid)
			rn.Nodes[nid] = len(rn.Original)
		}
	}
	if len(rn.Nodes) != len(used) {
		for n := range used {
			if _, ok := rn.Nodes[n]; !ok {
				return rn, fmt.Errorf("surface face references unknown node %d", n)
			}
		}
	}
	rn.Elements = make(map[int]int, len(faces))
	for _, f := range faces {
		if f.etype == utils.Triangle6 {
			rn.Elements[f.id] = len(rn.Elements) + 1
		}
	}
	for _, f := range faces {
		if f.etype == utils.Triangle {
			rn.Elements[f.id] = len(rn.Elements) + 1
		}
	}
	return
}
