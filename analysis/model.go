// Package analysis holds the in-memory description of one solver job: the mesh, the solver
// controls, the materials with their sections and the boundary conditions.
package analysis

import (
	"errors"
	"fmt"

	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/types"
	"github.com/notargets/gofistr/utils"
)

var ErrNoMesh = errors.New("analysis has no mesh")

type Model struct {
	Name               string
	Mesh               *mesh.Mesh
	Solver             SolverConfig
	Materials          []Material
	NonlinearMaterials []NonlinearMaterial
	Shells             []ShellThickness
	Beams              []BeamSection
	BeamRotations      []BeamRotation
	Fluids             []FluidSection
	Constraints        []Constraint
}

func NewModel(name string, msh *mesh.Mesh) *Model {
	return &Model{
		Name:   name,
		Mesh:   msh,
		Solver: DefaultSolverConfig(),
	}
}

// Validate checks the model is complete enough to be written
func (m *Model) Validate() (err error) {
	if m.Mesh == nil || m.Mesh.NumNodes() == 0 {
		return ErrNoMesh
	}
	if err = m.Mesh.Validate(); err != nil {
		return err
	}
	if err = m.Solver.Validate(); err != nil {
		return err
	}
	if len(m.Materials) == 0 {
		return fmt.Errorf("analysis %s has no material", m.Name)
	}
	names := make(map[string]bool, len(m.Materials))
	for _, mat := range m.Materials {
		if mat.Name == "" {
			return fmt.Errorf("material without a name")
		}
		if names[mat.Name] {
			return fmt.Errorf("duplicate material %s", mat.Name)
		}
		names[mat.Name] = true
		if len(mat.Elements) == 0 && len(m.Materials) > 1 {
			return fmt.Errorf("material %s has no elements but is one of %d materials", mat.Name, len(m.Materials))
		}
		for _, eid := range mat.Elements {
			if _, ok := m.Mesh.Elements[eid]; !ok {
				return fmt.Errorf("material %s references missing element %d", mat.Name, eid)
			}
		}
	}
	for _, nl := range m.NonlinearMaterials {
		if !names[nl.LinearBaseMaterial] {
			return fmt.Errorf("nonlinear material %s references missing material %s", nl.Name, nl.LinearBaseMaterial)
		}
	}
	for _, c := range m.Constraints {
		if c.Kind() == types.CK_None {
			return fmt.Errorf("constraint %s has no kind", c.GetName())
		}
	}
	return nil
}

func (m *Model) HasSelfWeight() bool {
	return len(Collect[*SelfWeight](m.Constraints)) != 0
}

// NeedsDensity is true when the mass of the structure enters the analysis
func (m *Model) NeedsDensity() bool {
	return m.Solver.AnalysisType == Frequency ||
		m.HasSelfWeight() ||
		(m.Solver.AnalysisType == ThermoMech && !m.Solver.ThermoMechSteadyState)
}

func (m *Model) HasClass(class utils.ElementClass) bool {
	return m.Mesh != nil && m.Mesh.HasClass(class)
}

// NonlinearFor returns the nonlinear materials extending the named material
func (m *Model) NonlinearFor(name string) (out []NonlinearMaterial) {
	for _, nl := range m.NonlinearMaterials {
		if nl.LinearBaseMaterial == name {
			out = append(out, nl)
		}
	}
	return
}
