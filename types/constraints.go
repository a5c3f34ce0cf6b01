package types

import "strings"

type ConstraintKind uint8

const (
	CK_None ConstraintKind = iota
	CK_Fixed
	CK_Displacement
	CK_SelfWeight
	CK_Force
	CK_Pressure
	CK_Temperature
	CK_HeatFlux
	CK_InitialTemperature
	CK_SectionPrint
	// Recognised, never emitted
	CK_Contact
	CK_Tie
	CK_PlaneRotation
	CK_Transform
)

var constraintNames = []string{
	"none", "fixed", "displacement", "selfweight", "force", "pressure",
	"temperature", "heatflux", "initialtemperature", "sectionprint",
	"contact", "tie", "planerotation", "transform",
}

func (ck ConstraintKind) String() string {
	if int(ck) < len(constraintNames) {
		return constraintNames[ck]
	}
	return "invalid"
}

// Supported is false for kinds the writer reports and skips
func (ck ConstraintKind) Supported() bool {
	return ck != CK_None && ck < CK_Contact
}

var ConstraintNameMap = map[string]ConstraintKind{
	"fixed":              CK_Fixed,
	"displacement":       CK_Displacement,
	"selfweight":         CK_SelfWeight,
	"gravity":            CK_SelfWeight,
	"force":              CK_Force,
	"pressure":           CK_Pressure,
	"temperature":        CK_Temperature,
	"heatflux":           CK_HeatFlux,
	"initialtemperature": CK_InitialTemperature,
	"sectionprint":       CK_SectionPrint,
	"contact":            CK_Contact,
	"tie":                CK_Tie,
	"planerotation":      CK_PlaneRotation,
	"transform":          CK_Transform,
}

// NewConstraintKind parses a case and separator insensitive kind label, e.g. "Self-Weight"
func NewConstraintKind(label string) ConstraintKind {
	key := strings.ToLower(label)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if ck, ok := ConstraintNameMap[key]; ok {
		return ck
	}
	return CK_None
}
