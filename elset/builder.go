// Package elset partitions the elements of an analysis into the material and section
// element sets the solver input refers to.
package elset

import (
	"fmt"
	"sort"

	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

type SectionKind uint8

const (
	SolidSection SectionKind = iota
	ShellSection
	BeamSection
	FluidSection
)

// Record is one element set. When All is set the record covers every element of Class
// and Elements is nil.
type Record struct {
	Name     string
	Class    utils.ElementClass
	All      bool
	Elements []int
	Material *analysis.Material
	Section  SectionKind
	Shell    *analysis.ShellThickness
	Beam     *analysis.BeamSection
	Fluid    *analysis.FluidSection
	Normal   *r3.Vec
}

type Builder struct {
	model *analysis.Model
	msh   *mesh.Mesh
	// element ids per class, sorted
	classIDs map[utils.ElementClass][]int
}

func NewBuilder(m *analysis.Model) *Builder {
	b := &Builder{
		model:    m,
		msh:      m.Mesh,
		classIDs: make(map[utils.ElementClass][]int),
	}
	for _, class := range []utils.ElementClass{utils.Edges, utils.Faces, utils.Volumes} {
		ids := append([]int{}, m.Mesh.ElementsOfClass(class)...)
		sort.Ints(ids)
		b.classIDs[class] = ids
	}
	return b
}

// Build returns the records in solid, shell, beam, fluid order
func (b *Builder) Build() (recs []Record, err error) {
	m := b.model
	if len(m.Materials) == 0 {
		return nil, fmt.Errorf("no material to build element sets for")
	}
	single := len(m.Materials) == 1
	matGroups := make([]Group, len(m.Materials))
	for i, material := range m.Materials {
		matGroups[i] = Group{Long: material.Name, Short: fmt.Sprintf("M%d", i), Elements: material.Elements}
		if single {
			matGroups[i] = Group{Long: material.Name, Short: "M0"}
		}
	}
	var add []Record
	if b.msh.HasClass(utils.Volumes) {
		if add, err = b.solids(matGroups); err != nil {
			return
		}
		recs = append(recs, add...)
	}
	if len(m.Shells) != 0 {
		if add, err = b.shells(matGroups); err != nil {
			return
		}
		recs = append(recs, add...)
	}
	if len(m.Beams) != 0 {
		if add, err = b.beams(matGroups); err != nil {
			return
		}
		recs = append(recs, add...)
	}
	if len(m.Fluids) != 0 {
		if add, err = b.fluids(matGroups); err != nil {
			return
		}
		recs = append(recs, add...)
	}
	return
}

func (b *Builder) solids(mats []Group) (recs []Record, err error) {
	solid := Group{Long: "Solid", Short: "Solid"}
	for i, mg := range mats {
		var name string
		if name, err = StandardName(mg, solid); err != nil {
			return
		}
		rec := Record{Name: name, Class: utils.Volumes, Material: &b.model.Materials[i], Section: SolidSection}
		if mg.Elements == nil {
			rec.All = true
		} else if rec.Elements = b.intersect(utils.Volumes, mg.Elements); len(rec.Elements) == 0 {
			continue
		}
		recs = append(recs, rec)
	}
	return
}

func (b *Builder) shells(mats []Group) (recs []Record, err error) {
	shells := b.model.Shells
	for j := range shells {
		sg := Group{Long: shells[j].Name, Short: fmt.Sprintf("S%d", j), Elements: shells[j].Elements}
		if len(shells) == 1 {
			sg = Group{Long: shells[j].Name, Short: "S0"}
		}
		for i, mg := range mats {
			var name string
			if name, err = StandardName(mg, sg); err != nil {
				return
			}
			rec := Record{Name: name, Class: utils.Faces, Material: &b.model.Materials[i],
				Section: ShellSection, Shell: &shells[j]}
			if mg.Elements == nil && sg.Elements == nil {
				rec.All = true
			} else if rec.Elements = b.intersect(utils.Faces, mg.Elements, sg.Elements); len(rec.Elements) == 0 {
				continue
			}
			recs = append(recs, rec)
		}
	}
	return
}

func (b *Builder) beams(mats []Group) (recs []Record, err error) {
	beams := b.model.Beams
	rot, dirs := b.beamDirections()
	for j := range beams {
		bg := Group{Short: fmt.Sprintf("B%d", j), Elements: beams[j].Elements}
		if len(beams) == 1 {
			bg = Group{Short: "B0"}
		}
		for i, mg := range mats {
			for k, dir := range dirs {
				var name string
				if name, err = ShortName(mg, bg, rot, Group{Short: fmt.Sprintf("D%d", k)}); err != nil {
					return
				}
				normal := dir.Normal
				rec := Record{Name: name, Class: utils.Edges, Material: &b.model.Materials[i],
					Section: BeamSection, Beam: &beams[j], Normal: &normal}
				// Directions always split the beams, so every beam record is explicit
				if rec.Elements = b.intersect(utils.Edges, mg.Elements, bg.Elements, dir.Elements); len(rec.Elements) == 0 {
					continue
				}
				recs = append(recs, rec)
			}
		}
	}
	return
}

// beamDirections uses the first rotation, without one every beam shares the global z normal
func (b *Builder) beamDirections() (rot Group, dirs []analysis.BeamDirection) {
	rot = Group{Short: "R0"}
	if len(b.model.BeamRotations) != 0 && len(b.model.BeamRotations[0].Directions) != 0 {
		return rot, b.model.BeamRotations[0].Directions
	}
	return rot, []analysis.BeamDirection{{Normal: r3.Vec{Z: 1}, Elements: b.classIDs[utils.Edges]}}
}

func (b *Builder) fluids(mats []Group) (recs []Record, err error) {
	fluids := b.model.Fluids
	for j := range fluids {
		fg := Group{Short: fmt.Sprintf("F%d", j), Elements: fluids[j].Elements}
		if len(fluids) == 1 {
			fg = Group{Short: "F0"}
		}
		for i, mg := range mats {
			var name string
			if name, err = ShortName(mg, fg); err != nil {
				return
			}
			rec := Record{Name: name, Class: utils.Edges, Material: &b.model.Materials[i],
				Section: FluidSection, Fluid: &fluids[j]}
			if mg.Elements == nil && fg.Elements == nil {
				rec.All = true
			} else if rec.Elements = b.intersect(utils.Edges, mg.Elements, fg.Elements); len(rec.Elements) == 0 {
				continue
			}
			recs = append(recs, rec)
		}
	}
	return
}

// intersect returns the sorted element ids of class present in every non nil set
func (b *Builder) intersect(class utils.ElementClass, sets ...[]int) (ids []int) {
	count := make(map[int]int)
	var need int
	for _, set := range sets {
		if set == nil {
			continue
		}
		need++
		seen := make(map[int]bool, len(set))
		for _, id := range set {
			if !seen[id] {
				seen[id] = true
				count[id]++
			}
		}
	}
	for _, id := range b.classIDs[class] {
		if count[id] == need {
			ids = append(ids, id)
		}
	}
	return
}
