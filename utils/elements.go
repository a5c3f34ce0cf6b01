package utils

import "fmt"

// ElementType represents the finite element topologies the translator handles

type ElementType int

const (
	Unknown ElementType = iota
	// 1D elements
	Line
	Line3 // 3-node line (quadratic)
	// 2D elements
	Triangle
	Triangle6 // 6-node triangle (quadratic)
	Quad
	Quad8 // 8-node quad (quadratic)
	// 3D elements
	Tet
	Tet10 // 10-node tetrahedron (quadratic)
	Prism
	Prism15 // 15-node prism (quadratic)
	Hex
	Hex20 // 20-node hexahedron (quadratic)
)

// AllElementTypes lists every supported topology in enum order
var AllElementTypes = []ElementType{
	Line, Line3, Triangle, Triangle6, Quad, Quad8,
	Tet, Tet10, Prism, Prism15, Hex, Hex20,
}

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Line", "Line3",
		"Triangle", "Triangle6", "Quad", "Quad8",
		"Tet", "Tet10", "Prism", "Prism15", "Hex", "Hex20",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Line, Line3:
		return 1
	case Triangle, Triangle6, Quad, Quad8:
		return 2
	case Tet, Tet10, Prism, Prism15, Hex, Hex20:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int {
	switch e {
	case Line:
		return 2
	case Line3, Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Triangle6, Prism:
		return 6
	case Quad8, Hex:
		return 8
	case Tet10:
		return 10
	case Prism15:
		return 15
	case Hex20:
		return 20
	default:
		return 0
	}
}

// IsQuadratic reports whether the element carries midside nodes
func (e ElementType) IsQuadratic() bool {
	switch e {
	case Line3, Triangle6, Quad8, Tet10, Prism15, Hex20:
		return true
	}
	return false
}

// ElementClass groups element types by the element set FrontISTR addresses them through
type ElementClass uint8

const (
	Edges ElementClass = iota
	Faces
	Volumes
)

func (c ElementClass) String() string {
	switch c {
	case Edges:
		return "Eedges"
	case Faces:
		return "Efaces"
	default:
		return "Evolumes"
	}
}

// Class returns the element set class of the element type, based on dimension
func (e ElementType) Class() ElementClass {
	switch e.GetDimension() {
	case 1:
		return Edges
	case 2:
		return Faces
	default:
		return Volumes
	}
}

// AbaqusName returns the ABAQUS element keyword used in *ELEMENT, TYPE=
func (e ElementType) AbaqusName() string {
	switch e {
	case Line:
		return "B31"
	case Line3:
		return "B32"
	case Triangle:
		return "S3"
	case Triangle6:
		return "S6"
	case Quad:
		return "S4"
	case Quad8:
		return "S8"
	case Tet:
		return "C3D4"
	case Tet10:
		return "C3D10"
	case Prism:
		return "C3D6"
	case Prism15:
		return "C3D15"
	case Hex:
		return "C3D8"
	case Hex20:
		return "C3D20"
	}
	return ""
}

var abaqusTypes = map[string]ElementType{
	"B31": Line, "T3D2": Line,
	"B32": Line3, "T3D3": Line3,
	"S3": Triangle, "CPS3": Triangle, "S3R": Triangle,
	"S6": Triangle6, "CPS6": Triangle6,
	"S4": Quad, "CPS4": Quad, "S4R": Quad,
	"S8": Quad8, "CPS8": Quad8, "S8R": Quad8,
	"C3D4":  Tet,
	"C3D10": Tet10,
	"C3D6":  Prism,
	"C3D15": Prism15,
	"C3D8":  Hex, "C3D8R": Hex,
	"C3D20": Hex20, "C3D20R": Hex20,
}

// ParseAbaqusType maps an ABAQUS element keyword onto an element type
func ParseAbaqusType(name string) (ElementType, error) {
	if et, ok := abaqusTypes[name]; ok {
		return et, nil
	}
	return Unknown, fmt.Errorf("unsupported ABAQUS element type: %s", name)
}

// FrontISTR native mesh type codes. Shell and beam variants share node counts
// with the solid/truss codes and map onto the same topology.
var fistrTypes = map[int]ElementType{
	111: Line, 611: Line,
	112: Line3, 612: Line3,
	231: Triangle, 731: Triangle,
	232: Triangle6, 732: Triangle6,
	241: Quad, 741: Quad,
	242: Quad8, 742: Quad8,
	341: Tet,
	342: Tet10,
	351: Prism,
	352: Prism15,
	361: Hex,
	362: Hex20,
}

// ParseFistrType maps a FrontISTR !ELEMENT, TYPE= code onto an element type
func ParseFistrType(code int) (ElementType, error) {
	if et, ok := fistrTypes[code]; ok {
		return et, nil
	}
	return Unknown, fmt.Errorf("unsupported FrontISTR element type: %d", code)
}

// FistrCode returns the solid/truss FrontISTR type code of the element type
func (e ElementType) FistrCode() int {
	switch e {
	case Line:
		return 111
	case Line3:
		return 112
	case Triangle:
		return 231
	case Triangle6:
		return 232
	case Quad:
		return 241
	case Quad8:
		return 242
	case Tet:
		return 341
	case Tet10:
		return 342
	case Prism:
		return 351
	case Prism15:
		return 352
	case Hex:
		return 361
	case Hex20:
		return 362
	}
	return 0
}
