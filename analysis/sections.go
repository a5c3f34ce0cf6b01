package analysis

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ShellThickness assigns a thickness to shell elements, an empty Elements list means all shells
type ShellThickness struct {
	Name      string
	Thickness string // quantity, e.g. "2 mm"
	Elements  []int
}

type BeamSectionType string

const (
	Rectangular BeamSectionType = "Rectangular"
	Circular    BeamSectionType = "Circular"
	Pipe        BeamSectionType = "Pipe"
)

type BeamSection struct {
	Name          string
	SectionType   BeamSectionType
	RectHeight    string
	RectWidth     string
	CircDiameter  string
	PipeDiameter  string
	PipeThickness string
	Elements      []int
}

// BeamDirection is the section normal shared by a set of beam elements
type BeamDirection struct {
	Normal   r3.Vec
	Elements []int
}

// BeamRotation splits beam elements by section orientation
type BeamRotation struct {
	Name       string
	Directions []BeamDirection
}

type FluidSection struct {
	Name     string
	Elements []int
}
