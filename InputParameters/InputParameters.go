package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/mesh/readers"
	"github.com/notargets/gofistr/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Selection names elements directly or through element groups of the mesh file.
// An empty selection means every element.
type Selection struct {
	Elements      []int    `json:"Elements,omitempty"`
	ElementGroups []string `json:"ElementGroups,omitempty"`
}

type MaterialSpec struct {
	Name         string `json:"Name"`
	Label        string `json:"Label,omitempty"`
	MaterialName string `json:"MaterialName,omitempty"`
	Category     string `json:"Category,omitempty"`
	// Quantity strings like "210000 MPa", plain numbers for dimensionless values
	Properties map[string]interface{} `json:"Properties"`
	Reinforced bool                   `json:"Reinforced,omitempty"`
	Selection
}

type NonlinearSpec struct {
	Name               string                 `json:"Name"`
	LinearBaseMaterial string                 `json:"LinearBaseMaterial"`
	Model              string                 `json:"Model"`
	YieldPoints        []string               `json:"YieldPoints,omitempty"`
	Hyperelastic       *analysis.Hyperelastic `json:"Hyperelastic,omitempty"`
	Viscoelastic       *analysis.Viscoelastic `json:"Viscoelastic,omitempty"`
	Creep              *analysis.Creep        `json:"Creep,omitempty"`
}

type ShellSpec struct {
	Name      string `json:"Name"`
	Thickness string `json:"Thickness"`
	Selection
}

type BeamSpec struct {
	Name          string `json:"Name"`
	SectionType   string `json:"SectionType"`
	RectHeight    string `json:"RectHeight,omitempty"`
	RectWidth     string `json:"RectWidth,omitempty"`
	CircDiameter  string `json:"CircDiameter,omitempty"`
	PipeDiameter  string `json:"PipeDiameter,omitempty"`
	PipeThickness string `json:"PipeThickness,omitempty"`
	Selection
}

type DirectionSpec struct {
	Normal []float64 `json:"Normal"`
	Selection
}

type RotationSpec struct {
	Name       string          `json:"Name"`
	Directions []DirectionSpec `json:"Directions"`
}

type FluidSpec struct {
	Name string `json:"Name"`
	Selection
}

// ConstraintSpec carries the union of all constraint parameters, Type picks the ones used.
// Nodes are given directly or as the nodes of the selected elements.
type ConstraintSpec struct {
	Type  string   `json:"Type"`
	Name  string   `json:"Name"`
	Nodes []int    `json:"Nodes,omitempty"`
	Faces [][2]int `json:"Faces,omitempty"`
	Selection

	Direction []float64 `json:"Direction,omitempty"`
	Force     string    `json:"Force,omitempty"`
	Pressure  string    `json:"Pressure,omitempty"`
	Reversed  bool      `json:"Reversed,omitempty"`
	Gravity   []float64 `json:"Gravity,omitempty"`
	// Keys X, Y, Z, RotX, RotY, RotZ; values "fixed", "free" or a prescribed value
	Displacement map[string]interface{} `json:"Displacement,omitempty"`

	TemperatureType string  `json:"TemperatureType,omitempty"`
	Temperature     float64 `json:"Temperature,omitempty"`
	CFlux           float64 `json:"CFlux,omitempty"`
	HeatFluxType    string  `json:"HeatFluxType,omitempty"`
	AmbientTemp     float64 `json:"AmbientTemp,omitempty"`
	FilmCoef        float64 `json:"FilmCoef,omitempty"`
	DFlux           float64 `json:"DFlux,omitempty"`
}

// Deck is one analysis read from a YAML input file
type Deck struct {
	Title string `json:"Title"`
	Name  string `json:"Name"`
	// Mesh file, relative to the deck
	Mesh string `json:"Mesh"`
	// Overrides on top of the solver defaults, see analysis.SolverConfig
	Solver             map[string]interface{} `json:"Solver,omitempty"`
	Materials          []MaterialSpec         `json:"Materials"`
	NonlinearMaterials []NonlinearSpec        `json:"NonlinearMaterials,omitempty"`
	Shells             []ShellSpec            `json:"Shells,omitempty"`
	Beams              []BeamSpec             `json:"Beams,omitempty"`
	BeamRotations      []RotationSpec         `json:"BeamRotations,omitempty"`
	Fluids             []FluidSpec            `json:"Fluids,omitempty"`
	Constraints        []ConstraintSpec       `json:"Constraints,omitempty"`
}

func (d *Deck) Parse(data []byte) error {
	return yaml.Unmarshal(data, d)
}

func ReadDeck(filename string) (d *Deck, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	d = &Deck{}
	if err = d.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func (d *Deck) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", d.Title)
	fmt.Printf("[%s]\t\t\t= Name\n", d.Name)
	fmt.Printf("[%s]\t\t= Mesh\n", d.Mesh)
	keys := make([]string, 0, len(d.Solver))
	for k := range d.Solver {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Solver[%s] = %v\n", key, d.Solver[key])
	}
	for _, m := range d.Materials {
		fmt.Printf("Material[%s] = %v\n", m.Name, m.Properties)
	}
	for _, c := range d.Constraints {
		fmt.Printf("Constraint[%s] = %s\n", c.Name, c.Type)
	}
}

// Keys are matched lower case, config layers like viper fold them
var thresholdKeys = map[string]bool{
	"matrixsolverresidual":   true,
	"minimumtimeincrement":   true,
	"newtonconvergeresidual": true,
}

// SolverConfig applies the deck's overrides to base
func (d *Deck) SolverConfig(base analysis.SolverConfig) (sc analysis.SolverConfig, err error) {
	sc = base
	if len(d.Solver) == 0 {
		return
	}
	overrides := make(map[string]interface{}, len(d.Solver))
	for k, v := range d.Solver {
		// Thresholds are kept as text, "1.0e-8" and 1.0e-8 are both accepted
		if x, ok := v.(float64); ok && thresholdKeys[strings.ToLower(k)] {
			v = strconv.FormatFloat(x, 'g', -1, 64)
		}
		overrides[k] = v
	}
	var data []byte
	if data, err = yaml.Marshal(overrides); err != nil {
		return
	}
	if err = yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("solver section: %w", err)
	}
	return
}

// ToModel reads the mesh and builds the analysis, dir is the directory of the deck file
func (d *Deck) ToModel(dir string, base analysis.SolverConfig) (m *analysis.Model, err error) {
	if d.Mesh == "" {
		return nil, analysis.ErrNoMesh
	}
	meshFile := d.Mesh
	if !filepath.IsAbs(meshFile) {
		meshFile = filepath.Join(dir, meshFile)
	}
	var msh *mesh.Mesh
	if msh, err = readers.ReadMeshFile(meshFile); err != nil {
		return nil, err
	}
	name := d.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(meshFile), filepath.Ext(meshFile))
	}
	m = analysis.NewModel(name, msh)
	if m.Solver, err = d.SolverConfig(base); err != nil {
		return nil, err
	}
	b := &builder{msh: msh}
	for _, ms := range d.Materials {
		category := analysis.Category(ms.Category)
		if category == "" {
			category = analysis.Solid
		}
		m.Materials = append(m.Materials, analysis.Material{
			Name:         ms.Name,
			Label:        ms.Label,
			MaterialName: ms.MaterialName,
			Category:     category,
			Properties:   properties(ms.Properties),
			Elements:     b.elements(ms.Selection),
			Reinforced:   ms.Reinforced,
		})
	}
	for _, ns := range d.NonlinearMaterials {
		m.NonlinearMaterials = append(m.NonlinearMaterials, ns.material())
	}
	for _, s := range d.Shells {
		m.Shells = append(m.Shells, analysis.ShellThickness{Name: s.Name, Thickness: s.Thickness,
			Elements: b.elements(s.Selection)})
	}
	for _, s := range d.Beams {
		m.Beams = append(m.Beams, analysis.BeamSection{
			Name:          s.Name,
			SectionType:   analysis.BeamSectionType(s.SectionType),
			RectHeight:    s.RectHeight,
			RectWidth:     s.RectWidth,
			CircDiameter:  s.CircDiameter,
			PipeDiameter:  s.PipeDiameter,
			PipeThickness: s.PipeThickness,
			Elements:      b.elements(s.Selection),
		})
	}
	for _, rs := range d.BeamRotations {
		rot := analysis.BeamRotation{Name: rs.Name}
		for _, ds := range rs.Directions {
			normal := b.vec(rs.Name+" normal", ds.Normal, r3.Vec{Z: 1})
			rot.Directions = append(rot.Directions, analysis.BeamDirection{Normal: normal,
				Elements: b.elements(ds.Selection)})
		}
		m.BeamRotations = append(m.BeamRotations, rot)
	}
	for _, s := range d.Fluids {
		m.Fluids = append(m.Fluids, analysis.FluidSection{Name: s.Name, Elements: b.elements(s.Selection)})
	}
	for _, cs := range d.Constraints {
		c := b.constraint(cs)
		if c != nil {
			m.Constraints = append(m.Constraints, c)
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func properties(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case float64:
			out[k] = strconv.FormatFloat(x, 'g', -1, 64)
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}

func (ns NonlinearSpec) material() analysis.NonlinearMaterial {
	nl := analysis.NonlinearMaterial{
		Name:               ns.Name,
		LinearBaseMaterial: ns.LinearBaseMaterial,
		Model:              analysis.NonlinearModel(ns.Model),
		YieldPoints:        ns.YieldPoints,
		Hyperelastic:       analysis.DefaultHyperelastic(),
		Viscoelastic:       analysis.DefaultViscoelastic(),
		Creep:              analysis.DefaultCreep(),
	}
	if ns.Hyperelastic != nil {
		nl.Hyperelastic = *ns.Hyperelastic
	}
	if ns.Viscoelastic != nil {
		nl.Viscoelastic = *ns.Viscoelastic
	}
	if ns.Creep != nil {
		nl.Creep = *ns.Creep
	}
	return nl
}

// builder resolves selections against the mesh and keeps the first error
type builder struct {
	msh *mesh.Mesh
	err error
}

func (b *builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *builder) elements(sel Selection) (ids []int) {
	seen := make(map[int]bool)
	add := func(eid int) {
		if !seen[eid] {
			seen[eid] = true
			ids = append(ids, eid)
		}
	}
	for _, eid := range sel.Elements {
		add(eid)
	}
	for _, name := range sel.ElementGroups {
		g, ok := b.msh.ElementGroups[name]
		if !ok {
			b.fail("unknown element group %s", name)
			continue
		}
		for _, eid := range g.Elements {
			add(eid)
		}
	}
	return
}

func (b *builder) nodes(cs ConstraintSpec) []int {
	seen := make(map[int]bool)
	var nids []int
	for _, n := range cs.Nodes {
		if !seen[n] {
			seen[n] = true
			nids = append(nids, n)
		}
	}
	if eids := b.elements(cs.Selection); len(eids) != 0 {
		for _, n := range b.msh.NodesOfElements(eids) {
			if !seen[n] {
				seen[n] = true
				nids = append(nids, n)
			}
		}
	}
	sort.Ints(nids)
	for _, n := range nids {
		if _, ok := b.msh.Nodes[n]; !ok {
			b.fail("constraint %s references missing node %d", cs.Name, n)
			break
		}
	}
	return nids
}

func (b *builder) vec(what string, v []float64, def r3.Vec) r3.Vec {
	switch len(v) {
	case 0:
		return def
	case 3:
		return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	b.fail("%s needs 3 components, have %d", what, len(v))
	return def
}

func faces(fs [][2]int) (out []analysis.ElementFace) {
	for _, f := range fs {
		out = append(out, analysis.ElementFace{Element: f[0], Face: f[1]})
	}
	return
}

var axisKeys = [6]string{"X", "Y", "Z", "RotX", "RotY", "RotZ"}

func (b *builder) axes(cs ConstraintSpec) (axes [6]analysis.Axis) {
	for i, key := range axisKeys {
		raw, ok := cs.Displacement[key]
		if !ok || raw == nil {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(raw))
		switch strings.ToLower(v) {
		case "", "free":
			axes[i].Mode = analysis.AxisFree
		case "fixed":
			axes[i].Mode = analysis.AxisFixed
		default:
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				b.fail("constraint %s, %s: invalid displacement %q", cs.Name, key, v)
				continue
			}
			axes[i] = analysis.Axis{Mode: analysis.AxisPrescribed, Value: x}
		}
	}
	return
}

func (b *builder) constraint(cs ConstraintSpec) analysis.Constraint {
	base := analysis.Base{Name: cs.Name}
	if cs.Name == "" {
		b.fail("constraint of type %q without a name", cs.Type)
		return nil
	}
	switch kind := types.NewConstraintKind(cs.Type); kind {
	case types.CK_Fixed:
		return &analysis.Fixed{Base: base, Nodes: b.nodes(cs)}
	case types.CK_Displacement:
		return &analysis.Displacement{Base: base, Nodes: b.nodes(cs), Axes: b.axes(cs)}
	case types.CK_SelfWeight:
		return &analysis.SelfWeight{Base: base, Gravity: b.vec(cs.Name+" gravity", cs.Gravity, r3.Vec{Z: -1})}
	case types.CK_Force:
		return &analysis.Force{Base: base, Direction: b.vec(cs.Name+" direction", cs.Direction, r3.Vec{}),
			Force: cs.Force, Reversed: cs.Reversed, Nodes: b.nodes(cs)}
	case types.CK_Pressure:
		return &analysis.Pressure{Base: base, Pressure: cs.Pressure, Reversed: cs.Reversed, Faces: faces(cs.Faces)}
	case types.CK_Temperature:
		tt := analysis.TemperatureType(cs.TemperatureType)
		if tt == "" {
			tt = analysis.FixedTemperature
		}
		return &analysis.Temperature{Base: base, Type: tt, Temperature: cs.Temperature, CFlux: cs.CFlux,
			Nodes: b.nodes(cs)}
	case types.CK_HeatFlux:
		ht := analysis.HeatFluxType(cs.HeatFluxType)
		if ht == "" {
			ht = analysis.Convection
		}
		return &analysis.HeatFlux{Base: base, Type: ht, AmbientTemp: cs.AmbientTemp, FilmCoef: cs.FilmCoef,
			DFlux: cs.DFlux, Faces: faces(cs.Faces)}
	case types.CK_InitialTemperature:
		return &analysis.InitialTemperature{Base: base, Temperature: cs.Temperature}
	case types.CK_SectionPrint:
		return &analysis.SectionPrint{Base: base, Faces: faces(cs.Faces)}
	case types.CK_None:
		b.fail("constraint %s has unknown type %q", cs.Name, cs.Type)
		return nil
	default:
		return &analysis.Unsupported{Base: base, Type: kind}
	}
}
