package analysis

import (
	"fmt"

	"github.com/notargets/gofistr/quantity"
)

type Category string

const (
	Solid Category = "Solid"
	Fluid Category = "Fluid"
)

// Material property keys, values are quantity strings like "210000 MPa"
const (
	YoungsModulus               = "YoungsModulus"
	PoissonRatio                = "PoissonRatio"
	Density                     = "Density"
	ThermalConductivity         = "ThermalConductivity"
	SpecificHeat                = "SpecificHeat"
	ThermalExpansionCoefficient = "ThermalExpansionCoefficient"
)

// Material is a linear material assigned to a group of elements. An empty Elements
// list means every element, valid only when it is the only material.
type Material struct {
	Name         string
	Label        string
	MaterialName string
	Category     Category
	Properties   map[string]string
	Elements     []int
	Reinforced   bool
}

// Value converts a property to the given unit
func (m *Material) Value(key, unit string) (float64, error) {
	s, ok := m.Properties[key]
	if !ok {
		return 0, fmt.Errorf("material %s has no %s", m.Name, key)
	}
	v, err := quantity.Convert(s, unit)
	if err != nil {
		return 0, fmt.Errorf("material %s, %s: %w", m.Name, key, err)
	}
	return v, nil
}

type NonlinearModel string

const (
	SimpleHardening   NonlinearModel = "simple hardening"
	HyperelasticModel NonlinearModel = "hyperelastic"
	ViscoelasticModel NonlinearModel = "viscoelastic"
	CreepModel        NonlinearModel = "creep"
)

// NonlinearMaterial extends the linear material named by LinearBaseMaterial.
// Exactly one of the model parameter blocks is used, chosen by Model.
type NonlinearMaterial struct {
	Name               string
	LinearBaseMaterial string
	Model              NonlinearModel
	// Simple hardening: "stress, plastic strain" pairs, stress in MPa
	YieldPoints  []string
	Hyperelastic Hyperelastic
	Viscoelastic Viscoelastic
	Creep        Creep
}

type HyperelasticType string

const (
	NeoHooke     HyperelasticType = "NEOHOOKE"
	MooneyRivlin HyperelasticType = "MOONEY-RIVLIN"
	ArrudaBoyce  HyperelasticType = "ARRUDA-BOYCE"
)

type Hyperelastic struct {
	Type   HyperelasticType
	C10    float64
	C01    float64
	Mu     float64
	Lambda float64
	D      float64
}

type Viscoelastic struct {
	ShearRelaxationModulus float64
	RelaxationTime         float64
}

// Creep follows the Norton law with rate coefficient A, stress exponent n and time exponent m
type Creep struct {
	RateCoeff          string
	StressExponent     float64
	TimeExponent       float64
	Temperature        float64
	TemperatureEnabled bool
}

func DefaultHyperelastic() Hyperelastic {
	return Hyperelastic{Type: NeoHooke, C10: 0.1486, C01: 0.4849, Mu: 0.71, Lambda: 1.7029, D: 0.0789}
}

func DefaultViscoelastic() Viscoelastic {
	return Viscoelastic{ShearRelaxationModulus: 0.5, RelaxationTime: 1.0}
}

func DefaultCreep() Creep {
	return Creep{RateCoeff: "1.0e-10", StressExponent: 5.0, TimeExponent: 0.0, Temperature: 300.0}
}
