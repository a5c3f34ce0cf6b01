package writer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/quantity"
	"github.com/notargets/gofistr/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Gravity magnitude in mm/s^2
const gravity = 9820

func (w *Writer) writeCntHeader() {
	w.cnt.WriteString("#  Control File for FISTR\n")
	fmt.Fprintf(&w.cnt, "## Job %s\n", w.job.ID)
	w.cnt.WriteString("## Analysis Control\n")
	w.cnt.WriteString("!VERSION\n")
	w.cnt.WriteString(" 3\n")
}

// parseThreshold falls back to def with a warning when the user string is not a number
func (w *Writer) parseThreshold(label, value string, def float64) float64 {
	x, ok := utils.ParseFloatDefault(value, def)
	if !ok {
		w.warn("converting %s value %q to float failed, using default value %E", label, value, def)
	}
	return x
}

func (w *Writer) writeGlobalSettings() error {
	solution, err := w.sc.AnalysisType.SolutionType()
	if err != nil {
		return err
	}
	line := "!SOLUTION, TYPE=" + solution
	if w.sc.Nonlinear {
		line += ", NONLINEAR"
	}
	w.cnt.WriteString(line + "\n")

	method, err := w.sc.MatrixSolverType.Method()
	if err != nil {
		return err
	}
	solver := "!SOLVER,METHOD=" + method
	if w.sc.MatrixSolverType.Iterative() {
		precond, err := w.sc.MatrixPrecondType.Code()
		if err != nil {
			return err
		}
		solver += fmt.Sprintf(",PRECOND=%d", precond)
	}
	solver += ",ITERLOG=" + yesNo(w.sc.MatrixSolverIterLog)
	solver += ",TIMELOG=" + yesNo(w.sc.MatrixSolverTimeLog)
	w.cnt.WriteString(solver + "\n")

	fmt.Fprintf(&w.cnt, " %d, 1\n", w.sc.MatrixSolverNumIter)
	residual := w.parseThreshold("matrix solver residual", w.sc.MatrixSolverResidual,
		analysis.DefaultMatrixSolverResidual)
	fmt.Fprintf(&w.cnt, " %E, 1.0, 0.0\n", residual)
	// AMG parameters
	w.cnt.WriteString("3, 1, 1, 2\n")
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func (w *Writer) writeMaterials() (err error) {
	needsDensity := w.model.NeedsDensity()
	thermo := w.sc.AnalysisType == analysis.ThermoMech

	w.section("Materials")
	w.inp.WriteString("** Young's modulus unit is MPa = N/mm2\n")
	w.cnt.WriteString("## Materials\n")
	w.cnt.WriteString("## Young's modulus unit is MPa = N/mm2\n")
	if needsDensity {
		w.inp.WriteString("** Density's unit is t/mm^3\n")
		w.cnt.WriteString("## Density's unit is t/mm^3\n")
	}
	if thermo {
		w.inp.WriteString("** Thermal conductivity unit is kW/mm/K = t*mm/K*s^3\n")
		w.inp.WriteString("** Specific Heat unit is kJ/t/K = mm^2/s^2/K\n")
		w.cnt.WriteString("## Thermal conductivity unit is kW/mm/K = t*mm/K*s^3\n")
		w.cnt.WriteString("## Specific Heat unit is kJ/t/K = mm^2/s^2/K\n")
	}
	for i := range w.model.Materials {
		mat := &w.model.Materials[i]
		label := mat.Label
		if label == "" {
			label = mat.Name
		}
		fmt.Fprintf(&w.inp, "** material name: %s\n** %s\n*MATERIAL, NAME=%s\n", mat.MaterialName, label, mat.Name)
		fmt.Fprintf(&w.cnt, "## material name: %s\n## %s\n!MATERIAL, NAME=%s\n", mat.MaterialName, label, mat.Name)
		solid := mat.Category != analysis.Fluid
		if solid {
			var ym, pr float64
			if ym, err = mat.Value(analysis.YoungsModulus, "MPa"); err != nil {
				return
			}
			if pr, err = mat.Value(analysis.PoissonRatio, ""); err != nil {
				return
			}
			fmt.Fprintf(&w.inp, "*ELASTIC\n%.0f, %.3f\n", ym, pr)
			fmt.Fprintf(&w.cnt, "!ELASTIC\n%.0f, %.3f\n", ym, pr)
		}
		if needsDensity {
			var rho float64
			if rho, err = mat.Value(analysis.Density, "t/mm^3"); err != nil {
				return
			}
			fmt.Fprintf(&w.inp, "*DENSITY\n%.3e\n", rho)
			fmt.Fprintf(&w.cnt, "!DENSITY\n%.3e\n", rho)
		}
		if thermo && solid {
			var tc, tec, sh float64
			if tc, err = mat.Value(analysis.ThermalConductivity, "W/m/K"); err != nil {
				return
			}
			if tec, err = mat.Value(analysis.ThermalExpansionCoefficient, "mm/mm/K"); err != nil {
				return
			}
			if sh, err = mat.Value(analysis.SpecificHeat, "J/kg/K"); err != nil {
				return
			}
			fmt.Fprintf(&w.inp, "*CONDUCTIVITY\n%.3f\n", tc)
			fmt.Fprintf(&w.inp, "*EXPANSION\n%.3e\n", tec)
			fmt.Fprintf(&w.inp, "*SPECIFIC HEAT\n%.3e\n", sh*1e6)
		}
		if w.sc.Nonlinear {
			for _, nl := range w.model.NonlinearFor(mat.Name) {
				w.writeNonlinear(nl)
			}
		}
		w.inp.WriteString("\n")
	}
	return nil
}

func (w *Writer) writeNonlinear(nl analysis.NonlinearMaterial) {
	ff := utils.FormatFloat
	switch nl.Model {
	case analysis.SimpleHardening:
		w.cnt.WriteString("!PLASTIC,YIELD=MISES,HARDEN=MULTILINEAR\n")
		for _, yp := range nl.YieldPoints {
			if yp = strings.TrimSpace(yp); yp != "" {
				w.cnt.WriteString(yp + "\n")
			}
		}
	case analysis.HyperelasticModel:
		h := nl.Hyperelastic
		fmt.Fprintf(&w.cnt, "!HYPERELASTIC, TYPE=%s\n", h.Type)
		switch h.Type {
		case analysis.MooneyRivlin:
			fmt.Fprintf(&w.cnt, "%s, %s, %s\n", ff(h.C10), ff(h.C01), ff(h.D))
		case analysis.ArrudaBoyce:
			fmt.Fprintf(&w.cnt, "%s, %s, %s\n", ff(h.Mu), ff(h.Lambda), ff(h.D))
		default:
			fmt.Fprintf(&w.cnt, "%s, %s\n", ff(h.C10), ff(h.D))
		}
	case analysis.ViscoelasticModel:
		v := nl.Viscoelastic
		fmt.Fprintf(&w.cnt, "!VISCOELASTIC\n%s, %s\n", ff(v.ShearRelaxationModulus), ff(v.RelaxationTime))
	case analysis.CreepModel:
		c := nl.Creep
		a := w.parseThreshold("creep rate coefficient", c.RateCoeff, 1.0e-10)
		w.cnt.WriteString("!CREEP, TYPE=NORTON\n")
		line := fmt.Sprintf("%E, %s, %s", a, ff(c.StressExponent), ff(c.TimeExponent))
		if c.TemperatureEnabled {
			line += ", " + ff(c.Temperature)
		}
		w.cnt.WriteString(line + "\n")
	default:
		w.warn("nonlinear material %s has unknown model %q", nl.Name, string(nl.Model))
	}
}

func (w *Writer) writeInitialTemperature() {
	inits := analysis.Collect[*analysis.InitialTemperature](w.model.Constraints)
	if len(inits) == 0 || w.sc.AnalysisType != analysis.ThermoMech {
		return
	}
	w.hasActiveLoad = true
	w.cnt.WriteString("## Initial temperature constraint\n")
	w.cnt.WriteString("!INITIAL CONDITIONS,TYPE=TEMPERATURE\n")
	for _, it := range inits {
		fmt.Fprintf(&w.cnt, "%s,%s\n", allGroup, utils.FormatFloat(it.Temperature))
	}
}

func (w *Writer) writeFixed() {
	fixed := analysis.Collect[*analysis.Fixed](w.model.Constraints)
	if len(fixed) == 0 {
		return
	}
	w.hasActiveBoundary = true
	w.cnt.WriteString("## Fixed Constraints\n")
	boundary := func(name string, dofs int) {
		w.cnt.WriteString("!BOUNDARY, GRPID=1\n")
		for d := 1; d <= dofs; d++ {
			fmt.Fprintf(&w.cnt, " %s,%d,%d\n", name, d, d)
		}
		w.cnt.WriteString("\n")
	}
	for _, fix := range fixed {
		fmt.Fprintf(&w.cnt, "## %s\n", fix.Name)
		if w.splitFixed() {
			solid, faceEdge := w.splitNodes(fix.Nodes)
			if len(solid) != 0 {
				boundary(fix.Name+"Solid", 3)
			}
			if len(faceEdge) != 0 {
				boundary(fix.Name+"FaceEdge", 6)
			}
			continue
		}
		if w.shellBeams {
			boundary(fix.Name, 6)
		} else {
			boundary(fix.Name, 3)
		}
	}
}

func (w *Writer) writeDisplacement() {
	disps := analysis.Collect[*analysis.Displacement](w.model.Constraints)
	if len(disps) == 0 {
		return
	}
	w.hasActiveBoundary = true
	w.cnt.WriteString("## Displacement constraint applied\n")
	dofs := 3
	if w.shellBeams {
		dofs = 6
	}
	for _, d := range disps {
		fmt.Fprintf(&w.cnt, "## %s\n", d.Name)
		w.cnt.WriteString("!BOUNDARY,GRPID=1\n")
		for i := 0; i < dofs; i++ {
			switch axis := d.Axes[i]; axis.Mode {
			case analysis.AxisFixed:
				fmt.Fprintf(&w.cnt, "%s,%d,%d\n", d.Name, i+1, i+1)
			case analysis.AxisPrescribed:
				fmt.Fprintf(&w.cnt, "%s,%d,%d,%s\n", d.Name, i+1, i+1, utils.FormatFloat(axis.Value))
			}
		}
	}
	w.cnt.WriteString("\n")
}

func (w *Writer) writeSelfWeight() {
	weights := analysis.Collect[*analysis.SelfWeight](w.model.Constraints)
	if len(weights) == 0 || !w.sc.AnalysisType.HasMechanicalLoads() {
		return
	}
	w.hasActiveLoad = true
	w.cnt.WriteString("## Self weight Constraint\n")
	for _, sw := range weights {
		g := sw.Gravity
		if r3.Norm(g) > 0 {
			g = r3.Unit(g)
		}
		fmt.Fprintf(&w.cnt, "## %s\n", sw.Name)
		w.cnt.WriteString("!DLOAD,GRPID=1\n")
		fmt.Fprintf(&w.cnt, " %s,GRAV,%d,%s,%s,%s\n", allGroup, gravity,
			utils.FormatFloat(g.X), utils.FormatFloat(g.Y), utils.FormatFloat(g.Z))
		w.cnt.WriteString("\n")
	}
}

// nodeLoads returns the per node loads of a force, splitting it equally when no table is given
func nodeLoads(f *analysis.Force, total float64) []analysis.NodeLoadGroup {
	if len(f.NodeLoads) != 0 {
		return f.NodeLoads
	}
	group := analysis.NodeLoadGroup{Reference: f.Name, Loads: make(map[int]float64, len(f.Nodes))}
	for _, n := range f.Nodes {
		group.Loads[n] = total / float64(len(f.Nodes))
	}
	return []analysis.NodeLoadGroup{group}
}

func (w *Writer) writeForce() error {
	forces := analysis.Collect[*analysis.Force](w.model.Constraints)
	if len(forces) == 0 || !w.sc.AnalysisType.HasMechanicalLoads() {
		return nil
	}
	w.hasActiveLoad = true
	w.cnt.WriteString("## constraints force node loads\n")
	w.cnt.WriteString("!CLOAD,GRPID=1\n")
	for _, f := range forces {
		fmt.Fprintf(&w.cnt, "## %s\n", f.Name)
		var total float64
		if len(f.NodeLoads) == 0 {
			mag, err := quantity.Convert(f.Force, "N")
			if err != nil {
				return fmt.Errorf("force %s: %w", f.Name, err)
			}
			total = mag
			if len(f.Nodes) == 0 {
				w.warn("force %s has no nodes", f.Name)
			}
		}
		dir := f.Direction
		if r3.Norm(dir) == 0 {
			return fmt.Errorf("force %s has no direction", f.Name)
		}
		dir = r3.Unit(dir)
		if f.Reversed {
			dir = r3.Scale(-1, dir)
		}
		for _, group := range nodeLoads(f, total) {
			fmt.Fprintf(&w.cnt, "## %s\n", group.Reference)
			nodes := make([]int, 0, len(group.Loads))
			for n := range group.Loads {
				nodes = append(nodes, n)
			}
			sort.Ints(nodes)
			for _, n := range nodes {
				load := group.Loads[n]
				for i, c := range []float64{dir.X, dir.Y, dir.Z} {
					if c != 0 {
						fmt.Fprintf(&w.cnt, "%d,%d,%.13E\n", n, i+1, c*load)
					}
				}
			}
			w.cnt.WriteString("\n")
		}
		w.cnt.WriteString("\n")
	}
	return nil
}

func (w *Writer) writePressure() error {
	pressures := analysis.Collect[*analysis.Pressure](w.model.Constraints)
	if len(pressures) == 0 || !w.sc.AnalysisType.HasMechanicalLoads() {
		return nil
	}
	w.hasActiveLoad = true
	w.cnt.WriteString("## constraints pressure element face loads\n")
	for _, p := range pressures {
		value, err := quantity.Convert(p.Pressure, "MPa")
		if err != nil {
			return fmt.Errorf("pressure %s: %w", p.Name, err)
		}
		if p.Reversed {
			value = -value
		}
		fmt.Fprintf(&w.cnt, "## %s\n", p.Name)
		w.cnt.WriteString("!DLOAD,GRPID=1\n")
		for _, f := range p.Faces {
			switch {
			case f.Face > 0:
				fmt.Fprintf(&w.cnt, "%d,P%d,%s\n", f.Element, f.Face, utils.FormatFloat(value))
			case f.Face == 0:
				fmt.Fprintf(&w.cnt, "%d,S,%s\n", f.Element, utils.FormatFloat(value))
			case f.Face == -1:
				fmt.Fprintf(&w.cnt, "%d,S,%s\n", f.Element, utils.FormatFloat(-value))
			default:
				w.warn("pressure %s: element %d has invalid face %d", p.Name, f.Element, f.Face)
			}
		}
	}
	return nil
}

func (w *Writer) writeTemperature() {
	temps := analysis.Collect[*analysis.Temperature](w.model.Constraints)
	if len(temps) == 0 || w.sc.AnalysisType != analysis.ThermoMech {
		return
	}
	w.hasActiveLoad = true
	w.cnt.WriteString("## Fixed temperature constraint applied\n")
	for _, t := range temps {
		fmt.Fprintf(&w.cnt, "## %s\n", t.Name)
		switch t.Type {
		case analysis.ConcentratedFlux:
			if len(t.Nodes) == 0 {
				w.warn("concentrated flux %s has no nodes", t.Name)
				continue
			}
			fmt.Fprintf(&w.cnt, "!CFLUX\n%s,11,%s\n\n", t.Name,
				utils.FormatFloat(t.CFlux/1000/float64(len(t.Nodes))))
		default:
			fmt.Fprintf(&w.cnt, "!TEMPERATURE\n%s,%s\n\n", t.Name, utils.FormatFloat(t.Temperature))
		}
	}
}

func (w *Writer) writeStep() {
	w.cnt.WriteString("### STEP Control ###\n")
	w.cnt.WriteString("!AUTOINC_PARAM, NAME=AP1\n")
	w.cnt.WriteString("0.25, 10, 50, 10, 1\n")
	w.cnt.WriteString("1.25,  3,  3,  2, 2\n")
	w.cnt.WriteString("0.25,  5\n")

	auto := w.sc.IncrementType == analysis.AutoIncrement
	step := "!STEP,"
	if auto {
		step += " INC_TYPE=AUTO"
	} else {
		step += " INC_TYPE=FIXED"
	}
	converge := w.parseThreshold("Newton converge residual", w.sc.NewtonConvergeResidual,
		analysis.DefaultNewtonConvergeResidual)
	step += fmt.Sprintf(", CONVERG=%E", converge)
	step += fmt.Sprintf(", MAXITER=%d", w.sc.NewtonMaximumIteration)
	step += ", SUBSTEPS=10000, AUTOINCPARAM=AP1"
	w.cnt.WriteString(step + "\n")

	if auto {
		minInc := w.parseThreshold("minimum time increment", w.sc.MinimumTimeIncrement,
			analysis.DefaultMinimumTimeIncrement)
		fmt.Fprintf(&w.cnt, " %E, %E, %E, %E\n", w.sc.InitialTimeIncrement, w.sc.TimeEnd,
			minInc, w.sc.MaximumTimeIncrement)
	} else {
		fmt.Fprintf(&w.cnt, " %E, %E\n", w.sc.InitialTimeIncrement, w.sc.TimeEnd)
	}
	if w.hasActiveLoad {
		w.cnt.WriteString("LOAD,1\n")
	}
	if w.hasActiveBoundary {
		w.cnt.WriteString("BOUNDARY,1\n")
	}
}

func (w *Writer) writeOutputs() error {
	outputType, err := w.sc.OutputFileFormat.OutputType()
	if err != nil {
		return err
	}
	w.cnt.WriteString("### OUTPUT Control ###\n")
	w.cnt.WriteString("!WRITE,VISUAL,FREQUENCY=9999\n")
	w.cnt.WriteString("!OUTPUT_VIS\n")
	w.cnt.WriteString("PRINC_NSTRESS,ON\n")
	w.cnt.WriteString("!VISUAL,method=PSR\n")
	w.cnt.WriteString("!surface_num=1\n")
	w.cnt.WriteString("!surface 1\n")
	fmt.Fprintf(&w.cnt, "!output_type=%s\n\n", outputType)
	return nil
}
