package writer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func steel() analysis.Material {
	return analysis.Material{
		Name:         "Steel",
		MaterialName: "Steel-Generic",
		Category:     analysis.Solid,
		Properties: map[string]string{
			analysis.YoungsModulus:               "210000 MPa",
			analysis.PoissonRatio:                "0.3",
			analysis.Density:                     "7900 kg/m^3",
			analysis.ThermalConductivity:         "43 W/m/K",
			analysis.ThermalExpansionCoefficient: "12 um/m/K",
			analysis.SpecificHeat:                "590 J/kg/K",
		},
	}
}

func fixed(name string, nodes ...int) *analysis.Fixed {
	return &analysis.Fixed{Base: analysis.Base{Name: name}, Nodes: nodes}
}

func boxModel(n int) *analysis.Model {
	m := analysis.NewModel("box", mesh.NewHexMesh(n))
	m.Materials = []analysis.Material{steel()}
	return m
}

type output struct {
	inp, cnt, dat, part string
}

func writeModel(t *testing.T, m *analysis.Model, opts ...Option) (*Job, output) {
	t.Helper()
	job, err := Write(t.TempDir(), m, opts...)
	require.NoError(t, err)
	read := func(path string) string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(data)
	}
	return job, output{
		inp:  read(job.MeshFile),
		cnt:  read(job.CntFile),
		dat:  read(job.DatFile),
		part: read(job.PartFile),
	}
}

func TestWriteStatic(t *testing.T) {
	m := boxModel(2)
	m.Constraints = []analysis.Constraint{
		fixed("FemConstraintFixed", 1, 4),
		&analysis.Force{
			Base:      analysis.Base{Name: "FemConstraintForce"},
			Direction: r3.Vec{Z: -2},
			Force:     "10 N",
			Nodes:     []int{3, 6},
		},
	}
	job, out := writeModel(t, m)
	assert.Empty(t, job.Warnings)
	assert.Equal(t, "box", job.Base)
	assert.NotEqual(t, [16]byte{}, [16]byte(job.ID))

	assert.Equal(t, 1, strings.Count(out.cnt, "!SOLUTION"))
	assert.Equal(t, 1, strings.Count(out.cnt, "!STEP,"))
	assert.True(t, strings.HasPrefix(out.cnt, "#  Control File for FISTR\n"))
	assert.Contains(t, out.cnt, "!VERSION\n 3\n!SOLUTION, TYPE=STATIC\n")
	assert.Contains(t, out.cnt, "!SOLVER,METHOD=CG,PRECOND=5,ITERLOG=NO,TIMELOG=YES\n 5000, 1\n 1.000000E-06, 1.0, 0.0\n3, 1, 1, 2\n")
	assert.Contains(t, out.cnt, "## FemConstraintFixed\n!BOUNDARY, GRPID=1\n FemConstraintFixed,1,1\n FemConstraintFixed,2,2\n FemConstraintFixed,3,3\n\n")
	assert.Contains(t, out.cnt, "!CLOAD,GRPID=1\n## FemConstraintForce\n## FemConstraintForce\n3,3,-5.0000000000000E+00\n6,3,-5.0000000000000E+00\n\n")
	assert.Contains(t, out.cnt, "!STEP, INC_TYPE=AUTO, CONVERG=1.000000E-06, MAXITER=20, SUBSTEPS=10000, AUTOINCPARAM=AP1\n 1.000000E+00, 1.000000E+00, 1.000000E-04, 1.000000E+00\nLOAD,1\nBOUNDARY,1\n")
	assert.True(t, strings.HasSuffix(out.cnt, "!output_type=COMPLETE_AVS\n\n"))
	// Static without self weight needs no density
	assert.NotContains(t, out.cnt, "!DENSITY")

	assert.NotContains(t, out.inp, "Eall")
	assert.Contains(t, out.inp, "*NSET,NSET=FemConstraintFixed\n1,\n4,\n")
	assert.Contains(t, out.inp, "*MATERIAL, NAME=Steel\n*ELASTIC\n210000, 0.300\n")
	assert.Contains(t, out.inp, "*SOLID SECTION, ELSET=ALL, MATERIAL=Steel\n")
	assert.NotContains(t, out.inp, "*ELSET,ELSET=SteelSolid")

	assert.Equal(t, "!MESH, NAME=part_in,TYPE=ABAQUS\nbox.inp\n"+
		"!MESH, NAME=part_out,TYPE=HECMW-DIST\nbox.p\n"+
		"!MESH, NAME=fstrMSH, TYPE=HECMW-DIST\nbox.p\n"+
		"!CONTROL, NAME=fstrCNT\nbox.cnt\n"+
		"!RESULT, NAME=fstrRES, IO=OUT\nbox.res\n"+
		"!RESULT, NAME=vis_out, IO=OUT\nbox_vis\n", out.dat)
	assert.Equal(t, "!PARTITION,TYPE=NODE-BASED,METHOD=PMETIS,DOMAIN=4\n", out.part)
	assert.Equal(t, filepath.Join(job.Dir, "box"), job.ResultBase())
}

func TestWriteFixedOnly(t *testing.T) {
	m := boxModel(1)
	m.Constraints = []analysis.Constraint{fixed("Fix", 1, 2)}
	_, out := writeModel(t, m)
	assert.Contains(t, out.cnt, "BOUNDARY,1\n")
	assert.NotContains(t, out.cnt, "LOAD,1")
}

func TestWriteBadResidual(t *testing.T) {
	m := boxModel(1)
	m.Solver.MatrixSolverResidual = "bogus"
	m.Solver.NewtonConvergeResidual = "1.0e-8"
	job, out := writeModel(t, m)
	assert.Contains(t, out.cnt, " 1.000000E-06, 1.0, 0.0\n")
	assert.Contains(t, out.cnt, "CONVERG=1.000000E-08")
	require.Len(t, job.Warnings, 1)
	assert.Contains(t, job.Warnings[0], "bogus")
	// Without loads neither group is activated
	assert.NotContains(t, out.cnt, "LOAD,1")
	assert.NotContains(t, out.cnt, "BOUNDARY,1")
}

func TestWriteSolverVariants(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*analysis.SolverConfig)
		want   []string
	}{
		{"direct", func(sc *analysis.SolverConfig) { sc.MatrixSolverType = analysis.Direct },
			[]string{"!SOLVER,METHOD=DIRECTmkl,ITERLOG=NO,TIMELOG=YES\n"}},
		{"nonlinear eigen", func(sc *analysis.SolverConfig) {
			sc.AnalysisType = analysis.Eigen
			sc.Nonlinear = true
			sc.MatrixPrecondType = analysis.SSOR
			sc.MatrixSolverIterLog = true
		}, []string{"!SOLUTION, TYPE=EIGEN, NONLINEAR\n", "PRECOND=1,ITERLOG=YES"}},
		{"fixed increment", func(sc *analysis.SolverConfig) {
			sc.IncrementType = analysis.FixedIncrement
			sc.TimeEnd = 2
			sc.InitialTimeIncrement = 0.5
		}, []string{"INC_TYPE=FIXED", "AUTOINCPARAM=AP1\n 5.000000E-01, 2.000000E+00\n"}},
		{"vtk", func(sc *analysis.SolverConfig) { sc.OutputFileFormat = analysis.BinaryVTK },
			[]string{"!output_type=BIN_VTK\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := boxModel(1)
			tt.modify(&m.Solver)
			_, out := writeModel(t, m)
			for _, want := range tt.want {
				assert.Contains(t, out.cnt, want)
			}
		})
	}

	m := boxModel(1)
	m.Solver.NProcess = 2
	_, out := writeModel(t, m)
	assert.Equal(t, "!PARTITION,TYPE=NODE-BASED,METHOD=PMETIS,DOMAIN=2\n", out.part)
}

func TestWriteMultipleMaterials(t *testing.T) {
	m := analysis.NewModel("two", mesh.NewHexMesh(3))
	alu := steel()
	alu.Name = "Alu"
	alu.Elements = []int{2, 3}
	st := steel()
	st.Elements = []int{1}
	m.Materials = []analysis.Material{st, alu}
	m.Constraints = []analysis.Constraint{
		&analysis.SelfWeight{Base: analysis.Base{Name: "Gravity"}, Gravity: r3.Vec{Z: -1}},
	}
	met := metrics.New()
	job, out := writeModel(t, m, WithMetrics(met))
	assert.Empty(t, job.Warnings)
	assert.Contains(t, out.inp, "*ELSET,ELSET=SteelSolid\n1,\n")
	assert.Contains(t, out.inp, "*ELSET,ELSET=AluSolid\n2,\n3,\n")
	assert.Contains(t, out.inp, "*SOLID SECTION, ELSET=SteelSolid, MATERIAL=Steel\n")
	assert.Contains(t, out.inp, "*SOLID SECTION, ELSET=AluSolid, MATERIAL=Alu\n")
	assert.Contains(t, out.inp, "*DENSITY\n7.900e-09\n")
	assert.Contains(t, out.cnt, "!DENSITY\n7.900e-09\n")
	assert.Contains(t, out.cnt, "!DLOAD,GRPID=1\n ALL,GRAV,9820,0.0,0.0,-1.0\n\n")
	assert.Contains(t, out.cnt, "LOAD,1\n")
	assert.Equal(t, 2.0, testutil.ToFloat64(met.ElementSets))
	assert.Equal(t, 3.0, testutil.ToFloat64(met.ElementsWritten.WithLabelValues("Evolumes")))
}

func TestWriteElementCountMismatch(t *testing.T) {
	m := analysis.NewModel("gap", mesh.NewHexMesh(3))
	a, b := steel(), steel()
	a.Elements = []int{1}
	b.Name = "Other"
	b.Elements = []int{2}
	m.Materials = []analysis.Material{a, b}
	dir := filepath.Join(t.TempDir(), "out")
	job, err := Write(dir, m)
	assert.Nil(t, job)
	assert.True(t, errors.Is(err, ErrElementCountMismatch))
	assert.NoDirExists(t, dir)
}

func TestWriteValidation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	job, err := Write(dir, analysis.NewModel("empty", mesh.NewMesh()))
	assert.Nil(t, job)
	assert.True(t, errors.Is(err, analysis.ErrNoMesh))

	m := boxModel(1)
	m.Materials[0].Properties = map[string]string{analysis.PoissonRatio: "0.3"}
	job, err = Write(dir, m)
	assert.Nil(t, job)
	assert.Error(t, err)
	assert.NoDirExists(t, dir)
}

func TestWritePressureAndDisplacement(t *testing.T) {
	m := boxModel(2)
	disp := &analysis.Displacement{Base: analysis.Base{Name: "Disp"}, Nodes: []int{1, 2}}
	disp.Axes[0] = analysis.Axis{Mode: analysis.AxisFixed}
	disp.Axes[2] = analysis.Axis{Mode: analysis.AxisPrescribed, Value: 0.5}
	disp.Axes[4] = analysis.Axis{Mode: analysis.AxisFixed}
	m.Constraints = []analysis.Constraint{
		disp,
		&analysis.Pressure{
			Base:     analysis.Base{Name: "Push"},
			Pressure: "1 MPa",
			Faces:    []analysis.ElementFace{{Element: 1, Face: 2}, {Element: 2, Face: 4}},
		},
		&analysis.Pressure{
			Base:     analysis.Base{Name: "Pull"},
			Pressure: "2000 kPa",
			Reversed: true,
			Faces:    []analysis.ElementFace{{Element: 2, Face: 3}},
		},
	}
	_, out := writeModel(t, m)
	assert.Contains(t, out.inp, "*NSET,NSET=Disp\n1,\n2,\n")
	// Rotations are dropped without shells or beams
	assert.Contains(t, out.cnt, "## Disp\n!BOUNDARY,GRPID=1\nDisp,1,1\nDisp,3,3,0.5\n\n")
	assert.Contains(t, out.cnt, "## Push\n!DLOAD,GRPID=1\n1,P2,1.0\n2,P4,1.0\n")
	assert.Contains(t, out.cnt, "## Pull\n!DLOAD,GRPID=1\n2,P3,-2.0\n")
	assert.Contains(t, out.cnt, "LOAD,1\nBOUNDARY,1\n")
}

func TestWriteShellFixed(t *testing.T) {
	m := analysis.NewModel("plate", mesh.NewShellStripMesh(2))
	m.Materials = []analysis.Material{steel()}
	m.Shells = []analysis.ShellThickness{{Name: "Thick", Thickness: "2 mm"}}
	m.Constraints = []analysis.Constraint{fixed("Edge", 1, 4)}
	job, out := writeModel(t, m)
	assert.Contains(t, out.cnt, "!BOUNDARY, GRPID=1\n Edge,1,1\n Edge,2,2\n Edge,3,3\n Edge,4,4\n Edge,5,5\n Edge,6,6\n\n")
	assert.NotContains(t, out.inp, "*SOLID SECTION")
	require.Len(t, job.Warnings, 1)
	assert.Contains(t, job.Warnings[0], "shell sections are not supported")
}

func TestWriteThermoMech(t *testing.T) {
	m := boxModel(1)
	m.Solver.AnalysisType = analysis.ThermoMech
	m.Constraints = []analysis.Constraint{
		&analysis.Temperature{Base: analysis.Base{Name: "Hot"}, Type: analysis.FixedTemperature,
			Temperature: 300, Nodes: []int{1, 2}},
		&analysis.Temperature{Base: analysis.Base{Name: "Flux"}, Type: analysis.ConcentratedFlux,
			CFlux: 4000, Nodes: []int{3, 4}},
		&analysis.InitialTemperature{Base: analysis.Base{Name: "Init"}, Temperature: 290},
		&analysis.HeatFlux{Base: analysis.Base{Name: "Film"}, Type: analysis.Convection,
			AmbientTemp: 300, FilmCoef: 25, Faces: []analysis.ElementFace{{Element: 1, Face: 1}}},
	}
	_, out := writeModel(t, m)
	assert.Contains(t, out.inp, "*CONDUCTIVITY\n43.000\n*EXPANSION\n1.200e-05\n*SPECIFIC HEAT\n5.900e+08\n")
	assert.Contains(t, out.inp, "*NSET,NSET=Hot\n1,\n2,\n")
	assert.Contains(t, out.inp, "*FILM\n1,F1,300.0,0.025\n")
	assert.Contains(t, out.cnt, "!TEMPERATURE\nHot,300.0\n\n")
	assert.Contains(t, out.cnt, "!CFLUX\nFlux,11,2.0\n\n")
	assert.Contains(t, out.cnt, "!INITIAL CONDITIONS,TYPE=TEMPERATURE\nALL,290.0\n")
	assert.Contains(t, out.cnt, "!SOLUTION, TYPE=STATIC\n")
	assert.Contains(t, out.cnt, "LOAD,1\n")
	// Steady state needs no density
	assert.NotContains(t, out.inp, "*DENSITY")
}

func TestWriteNonlinearMaterials(t *testing.T) {
	m := boxModel(1)
	m.Solver.Nonlinear = true
	creep := analysis.DefaultCreep()
	creep.RateCoeff = "bogus"
	m.NonlinearMaterials = []analysis.NonlinearMaterial{
		{Name: "Plastic", LinearBaseMaterial: "Steel", Model: analysis.SimpleHardening,
			YieldPoints: []string{"240.0, 0.0", " ", "270.0, 0.025"}},
		{Name: "Rubber", LinearBaseMaterial: "Steel", Model: analysis.HyperelasticModel,
			Hyperelastic: analysis.DefaultHyperelastic()},
		{Name: "Creep", LinearBaseMaterial: "Steel", Model: analysis.CreepModel, Creep: creep},
	}
	job, out := writeModel(t, m)
	assert.Contains(t, out.cnt, "!PLASTIC,YIELD=MISES,HARDEN=MULTILINEAR\n240.0, 0.0\n270.0, 0.025\n")
	assert.Contains(t, out.cnt, "!HYPERELASTIC, TYPE=NEOHOOKE\n0.1486, 0.0789\n")
	assert.Contains(t, out.cnt, "!CREEP, TYPE=NORTON\n1.000000E-10, 5.0, 0.0\n")
	assert.NotContains(t, out.inp, "!PLASTIC")
	require.Len(t, job.Warnings, 1)
	assert.Contains(t, job.Warnings[0], "creep rate coefficient")
}

func TestStripEallTrailer(t *testing.T) {
	data := []byte("*Node\n1, 0, 0, 0\n\n** Define element set Eall\n*ELSET, ELSET=Eall\nEvolumes\n")
	got, ok := stripEallTrailer(data)
	assert.True(t, ok)
	assert.Equal(t, "*Node\n1, 0, 0, 0\n", string(got))

	data = []byte("*Node\n1, 0, 0, 0\n")
	got, ok = stripEallTrailer(data)
	assert.False(t, ok)
	assert.Equal(t, data, got)
}

func TestFixFloatExpressions(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1,S,1e-05\n", "1,S,1.e-05\n"},
		{"x 2E+03", "x 2.E+03"},
		{"*DENSITY\n7.900e-09\n", "*DENSITY\n7.900e-09\n"},
		{"-3e4", "-3.e4"},
		{"*ELSET,ELSET=Evolumes\n", "*ELSET,ELSET=Evolumes\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(fixFloatExpressions([]byte(tt.in))))
	}
}
