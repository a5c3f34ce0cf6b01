package analysis

import (
	"github.com/notargets/gofistr/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Constraint is one boundary condition or load of the model
type Constraint interface {
	Kind() types.ConstraintKind
	GetName() string
}

type Base struct {
	Name string
}

func (b Base) GetName() string { return b.Name }

// ElementFace addresses face Face (counted from 1) of element Element.
// Face 0 and -1 denote the positive and negative side of a shell surface.
type ElementFace struct {
	Element int
	Face    int
}

type Fixed struct {
	Base
	Nodes []int
}

func (*Fixed) Kind() types.ConstraintKind { return types.CK_Fixed }

type AxisMode uint8

const (
	AxisFree AxisMode = iota
	AxisFixed
	AxisPrescribed
)

type Axis struct {
	Mode  AxisMode
	Value float64 // mm or degrees, used with AxisPrescribed
}

type Displacement struct {
	Base
	Nodes []int
	// X, Y, Z translations then rotations about X, Y, Z
	Axes [6]Axis
}

func (*Displacement) Kind() types.ConstraintKind { return types.CK_Displacement }

type SelfWeight struct {
	Base
	Gravity r3.Vec
}

func (*SelfWeight) Kind() types.ConstraintKind { return types.CK_SelfWeight }

// NodeLoadGroup carries per node loads in N computed for one reference shape
type NodeLoadGroup struct {
	Reference string
	Loads     map[int]float64
}

type Force struct {
	Base
	Direction r3.Vec
	Force     string // quantity, e.g. "9000 N"
	Reversed  bool
	Nodes     []int
	// When empty the force is split equally across Nodes
	NodeLoads []NodeLoadGroup
}

func (*Force) Kind() types.ConstraintKind { return types.CK_Force }

type Pressure struct {
	Base
	Pressure string // quantity, e.g. "1 MPa"
	Reversed bool
	Faces    []ElementFace
}

func (*Pressure) Kind() types.ConstraintKind { return types.CK_Pressure }

type TemperatureType string

const (
	FixedTemperature TemperatureType = "Temperature"
	ConcentratedFlux TemperatureType = "CFlux"
)

type Temperature struct {
	Base
	Type        TemperatureType
	Temperature float64 // K
	CFlux       float64 // mW
	Nodes       []int
}

func (*Temperature) Kind() types.ConstraintKind { return types.CK_Temperature }

type HeatFluxType string

const (
	Convection      HeatFluxType = "Convection"
	DistributedFlux HeatFluxType = "DFlux"
)

type HeatFlux struct {
	Base
	Type        HeatFluxType
	AmbientTemp float64 // K
	FilmCoef    float64 // W/m^2/K
	DFlux       float64 // W/m^2
	Faces       []ElementFace
}

func (*HeatFlux) Kind() types.ConstraintKind { return types.CK_HeatFlux }

type InitialTemperature struct {
	Base
	Temperature float64 // K
}

func (*InitialTemperature) Kind() types.ConstraintKind { return types.CK_InitialTemperature }

type SectionPrint struct {
	Base
	Faces []ElementFace
}

func (*SectionPrint) Kind() types.ConstraintKind { return types.CK_SectionPrint }

// Unsupported keeps constraints the solver input has no keyword for, they are reported and skipped
type Unsupported struct {
	Base
	Type types.ConstraintKind
}

func (u *Unsupported) Kind() types.ConstraintKind { return u.Type }

// Collect returns the constraints of concrete type T in model order
func Collect[T Constraint](cs []Constraint) (out []T) {
	for _, c := range cs {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return
}
