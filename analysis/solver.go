package analysis

import (
	"fmt"
	"strings"
)

type AnalysisType string

const (
	Static     AnalysisType = "static"
	Frequency  AnalysisType = "frequency"
	ThermoMech AnalysisType = "thermomech"
	Check      AnalysisType = "check"
	Heat       AnalysisType = "heat"
	Dynamic    AnalysisType = "dynamic"
	Eigen      AnalysisType = "eigen"
)

// SolutionType returns the !SOLUTION, TYPE= keyword of the analysis
func (a AnalysisType) SolutionType() (string, error) {
	switch a {
	case Static, ThermoMech:
		return "STATIC", nil
	case Heat:
		return "HEAT", nil
	case Eigen, Frequency:
		return "EIGEN", nil
	case Dynamic:
		return "DYNAMIC", nil
	case Check:
		return "ELEMCHECK", nil
	}
	return "", fmt.Errorf("unknown analysis type %q", string(a))
}

// Mechanical loads (selfweight, force, pressure) only apply to these analyses
func (a AnalysisType) HasMechanicalLoads() bool {
	return a == Static || a == ThermoMech
}

type MatrixSolver string

const (
	CG       MatrixSolver = "CG"
	BiCGSTAB MatrixSolver = "BiCGSTAB"
	GMRES    MatrixSolver = "GMRES"
	GPBiCG   MatrixSolver = "GPBiCG"
	MUMPS    MatrixSolver = "MUMPS"
	Direct   MatrixSolver = "DIRECT"
)

// Method returns the !SOLVER, METHOD= value
func (s MatrixSolver) Method() (string, error) {
	switch s {
	case CG, BiCGSTAB, GMRES, GPBiCG, MUMPS:
		return string(s), nil
	case Direct:
		return "DIRECTmkl", nil
	}
	return "", fmt.Errorf("unknown matrix solver %q", string(s))
}

func (s MatrixSolver) Iterative() bool {
	switch s {
	case CG, BiCGSTAB, GMRES, GPBiCG:
		return true
	}
	return false
}

type Preconditioner string

const (
	SSOR Preconditioner = "SSOR"
	DIAG Preconditioner = "DIAG"
	AMG  Preconditioner = "AMG"
	ILU0 Preconditioner = "ILU0"
	ILU1 Preconditioner = "ILU1"
	ILU2 Preconditioner = "ILU2"
)

// Code returns the numeric !SOLVER, PRECOND= value
func (p Preconditioner) Code() (int, error) {
	switch p {
	case SSOR:
		return 1, nil
	case DIAG:
		return 3, nil
	case AMG:
		return 5, nil
	case ILU0:
		return 10, nil
	case ILU1:
		return 11, nil
	case ILU2:
		return 12, nil
	}
	return 0, fmt.Errorf("unknown preconditioner %q", string(p))
}

type OutputFormat string

const (
	AVS       OutputFormat = "AVS"
	VTK       OutputFormat = "VTK"
	BinaryVTK OutputFormat = "BinaryVTK"
)

// OutputType returns the !output_type= value
func (o OutputFormat) OutputType() (string, error) {
	switch o {
	case AVS:
		return "COMPLETE_AVS", nil
	case VTK:
		return "VTK", nil
	case BinaryVTK:
		return "BIN_VTK", nil
	}
	return "", fmt.Errorf("unknown output format %q", string(o))
}

type IncrementType string

const (
	AutoIncrement  IncrementType = "auto"
	FixedIncrement IncrementType = "fixed"
)

// SolverConfig carries the solver control values. Thresholds are kept as strings the way
// users type them, unparsable values fall back to defaults when written.
type SolverConfig struct {
	AnalysisType           AnalysisType   `json:"AnalysisType"`
	Nonlinear              bool           `json:"Nonlinear"`
	NProcess               int            `json:"NProcess"`
	MatrixSolverType       MatrixSolver   `json:"MatrixSolverType"`
	MatrixPrecondType      Preconditioner `json:"MatrixPrecondType"`
	MatrixSolverIterLog    bool           `json:"MatrixSolverIterLog"`
	MatrixSolverTimeLog    bool           `json:"MatrixSolverTimeLog"`
	MatrixSolverNumIter    int            `json:"MatrixSolverNumIter"`
	MatrixSolverResidual   string         `json:"MatrixSolverResidual"`
	OutputFileFormat       OutputFormat   `json:"OutputFileFormat"`
	IncrementType          IncrementType  `json:"IncrementType"`
	TimeEnd                float64        `json:"TimeEnd"`
	InitialTimeIncrement   float64        `json:"InitialTimeIncrement"`
	MinimumTimeIncrement   string         `json:"MinimumTimeIncrement"`
	MaximumTimeIncrement   float64        `json:"MaximumTimeIncrement"`
	NewtonConvergeResidual string         `json:"NewtonConvergeResidual"`
	NewtonMaximumIteration int            `json:"NewtonMaximumIteration"`
	ThermoMechSteadyState  bool           `json:"ThermoMechSteadyState"`
}

// Fallbacks for unparsable threshold strings
const (
	DefaultMatrixSolverResidual   = 1.0e-6
	DefaultNewtonConvergeResidual = 1.0e-6
	DefaultMinimumTimeIncrement   = 1.0e-5
)

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		AnalysisType:           Static,
		NProcess:               4,
		MatrixSolverType:       CG,
		MatrixPrecondType:      AMG,
		MatrixSolverIterLog:    false,
		MatrixSolverTimeLog:    true,
		MatrixSolverNumIter:    5000,
		MatrixSolverResidual:   "1.0e-6",
		OutputFileFormat:       AVS,
		IncrementType:          AutoIncrement,
		TimeEnd:                1.0,
		InitialTimeIncrement:   1.0,
		MinimumTimeIncrement:   "1.0e-4",
		MaximumTimeIncrement:   1.0,
		NewtonConvergeResidual: "1.0e-6",
		NewtonMaximumIteration: 20,
		ThermoMechSteadyState:  true,
	}
}

// Validate checks the enumerations, numeric thresholds are checked when written
func (sc SolverConfig) Validate() error {
	var errs []string
	if _, err := sc.AnalysisType.SolutionType(); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := sc.MatrixSolverType.Method(); err != nil {
		errs = append(errs, err.Error())
	}
	if sc.MatrixSolverType.Iterative() {
		if _, err := sc.MatrixPrecondType.Code(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if _, err := sc.OutputFileFormat.OutputType(); err != nil {
		errs = append(errs, err.Error())
	}
	if sc.IncrementType != AutoIncrement && sc.IncrementType != FixedIncrement {
		errs = append(errs, fmt.Sprintf("unknown increment type %q", string(sc.IncrementType)))
	}
	if sc.NProcess < 1 {
		errs = append(errs, fmt.Sprintf("number of processes must be positive, have %d", sc.NProcess))
	}
	if len(errs) != 0 {
		return fmt.Errorf("invalid solver configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
