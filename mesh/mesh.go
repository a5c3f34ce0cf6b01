package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/gofistr/types"
	"github.com/notargets/gofistr/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Element is an ordered node tuple in host numbering plus its topology
type Element struct {
	ID    int
	Type  utils.ElementType
	Nodes []int
}

// ElementGroup is a named set of element ids read from a mesh file
type ElementGroup struct {
	Name     string
	Elements []int
}

// Mesh keeps nodes and elements keyed by their (possibly sparse) ids, in insertion order
type Mesh struct {
	// Geometry
	NodeIDs []int
	Nodes   map[int]r3.Vec

	// Element data
	ElementIDs []int
	Elements   map[int]*Element

	ElementGroups map[string]*ElementGroup
	Warnings      types.Warnings
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		Nodes:         make(map[int]r3.Vec),
		Elements:      make(map[int]*Element),
		ElementGroups: make(map[string]*ElementGroup),
	}
}

func (m *Mesh) NumNodes() int    { return len(m.NodeIDs) }
func (m *Mesh) NumElements() int { return len(m.ElementIDs) }

// AddNode inserts a node, duplicate ids are an error
func (m *Mesh) AddNode(id int, x r3.Vec) error {
	if id <= 0 {
		return fmt.Errorf("node id must be positive, have %d", id)
	}
	if _, ok := m.Nodes[id]; ok {
		return fmt.Errorf("duplicate node id %d", id)
	}
	m.NodeIDs = append(m.NodeIDs, id)
	m.Nodes[id] = x
	return nil
}

// AddElement inserts an element in host node order
func (m *Mesh) AddElement(id int, et utils.ElementType, nodes []int) error {
	if id <= 0 {
		return fmt.Errorf("element id must be positive, have %d", id)
	}
	if _, ok := m.Elements[id]; ok {
		return fmt.Errorf("duplicate element id %d", id)
	}
	if len(nodes) != et.GetNumNodes() {
		return fmt.Errorf("element %d of type %s expects %d nodes, got %d",
			id, et, et.GetNumNodes(), len(nodes))
	}
	m.ElementIDs = append(m.ElementIDs, id)
	m.Elements[id] = &Element{ID: id, Type: et, Nodes: append([]int(nil), nodes...)}
	return nil
}

// AddElementGroup appends element ids to a named group, creating it if needed
func (m *Mesh) AddElementGroup(name string, elements ...int) {
	g, ok := m.ElementGroups[name]
	if !ok {
		g = &ElementGroup{Name: name}
		m.ElementGroups[name] = g
	}
	g.Elements = append(g.Elements, elements...)
}

// Validate checks that every element node exists and that arity matches the topology
func (m *Mesh) Validate() error {
	if len(m.NodeIDs) == 0 {
		return fmt.Errorf("mesh has no nodes")
	}
	for _, eid := range m.ElementIDs {
		el := m.Elements[eid]
		if len(el.Nodes) != el.Type.GetNumNodes() {
			return fmt.Errorf("element %d of type %s has %d nodes, expected %d",
				eid, el.Type, len(el.Nodes), el.Type.GetNumNodes())
		}
		for _, nid := range el.Nodes {
			if _, ok := m.Nodes[nid]; !ok {
				return fmt.Errorf("element %d references missing node %d", eid, nid)
			}
		}
	}
	for name, g := range m.ElementGroups {
		for _, eid := range g.Elements {
			if _, ok := m.Elements[eid]; !ok {
				return fmt.Errorf("element group %s references missing element %d", name, eid)
			}
		}
	}
	return nil
}

// HasClass reports whether any element belongs to the class
func (m *Mesh) HasClass(class utils.ElementClass) bool {
	for _, eid := range m.ElementIDs {
		if m.Elements[eid].Type.Class() == class {
			return true
		}
	}
	return false
}

// HighestClass returns the highest dimension element class present in the mesh
func (m *Mesh) HighestClass() (class utils.ElementClass, ok bool) {
	for _, eid := range m.ElementIDs {
		c := m.Elements[eid].Type.Class()
		if !ok || c > class {
			class, ok = c, true
		}
	}
	return
}

// ElementsOfClass returns the ids of all elements of a class, in insertion order
func (m *Mesh) ElementsOfClass(class utils.ElementClass) (ids []int) {
	for _, eid := range m.ElementIDs {
		if m.Elements[eid].Type.Class() == class {
			ids = append(ids, eid)
		}
	}
	return
}

// NodesOfElements returns the sorted unique node ids used by the listed elements
func (m *Mesh) NodesOfElements(eids []int) (nids []int) {
	seen := make(map[int]bool)
	for _, eid := range eids {
		el, ok := m.Elements[eid]
		if !ok {
			continue
		}
		for _, nid := range el.Nodes {
			if !seen[nid] {
				seen[nid] = true
				nids = append(nids, nid)
			}
		}
	}
	sort.Ints(nids)
	return
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Nodes: %d\n", m.NumNodes())
	fmt.Printf("  Elements: %d\n", m.NumElements())

	typeCounts := make(map[utils.ElementType]int)
	for _, eid := range m.ElementIDs {
		typeCounts[m.Elements[eid].Type]++
	}
	fmt.Printf("  Element types:\n")
	for _, et := range utils.AllElementTypes {
		if count := typeCounts[et]; count > 0 {
			fmt.Printf("    %s: %d\n", et, count)
		}
	}
	names := make([]string, 0, len(m.ElementGroups))
	for name := range m.ElementGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  Group %s: %d elements\n", name, len(m.ElementGroups[name].Elements))
	}
}
