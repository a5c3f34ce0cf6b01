package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gofistr/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const tetMesh = `*NODE
1, 0, 0, 0
2, 1, 0, 0
3, 0, 1, 0
4, 0, 0, 1
5, 1, 1, 1
*ELEMENT, TYPE=C3D4
1, 1, 2, 3, 4
2, 2, 3, 4, 5
*ELSET, ELSET=Root
1
`

const tetDeck = `Title: Two tets
Mesh: tets.inp
Solver:
  MatrixSolverType: BiCGSTAB
Materials:
  - Name: Steel
    Properties:
      YoungsModulus: 210000 MPa
      PoissonRatio: 0.3
Constraints:
  - Type: fixed
    Name: Root
    Nodes: [1, 2, 3]
  - Type: force
    Name: Tip
    Force: 10 N
    Direction: [0, 0, -1]
    Nodes: [5]
`

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestSolverDefaults(t *testing.T) {
	sc, err := solverDefaults()
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultSolverConfig(), sc)

	t.Setenv("GOFISTR_SOLVER_NPROCESS", "2")
	t.Setenv("GOFISTR_SOLVER_MATRIXSOLVERRESIDUAL", "1.0e-8")
	t.Setenv("GOFISTR_SOLVER_MATRIXSOLVERTYPE", "GMRES")
	sc, err = solverDefaults()
	require.NoError(t, err)
	assert.Equal(t, 2, sc.NProcess)
	assert.Equal(t, "1e-08", sc.MatrixSolverResidual)
	assert.Equal(t, analysis.GMRES, sc.MatrixSolverType)
	assert.Equal(t, analysis.Static, sc.AnalysisType)
}

func TestRunWrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tets.inp", tetMesh)
	deck := writeFile(t, dir, "deck.yaml", tetDeck)
	out := filepath.Join(dir, "work")

	job, err := RunWrite(&WriteJob{DeckFile: deck, OutDir: out}, analysis.DefaultSolverConfig())
	require.NoError(t, err)
	assert.Equal(t, "tets", job.Base)
	for _, f := range []string{job.MeshFile, job.CntFile, job.DatFile, job.PartFile} {
		assert.FileExists(t, f)
		assert.Equal(t, out, filepath.Dir(f))
	}
	cnt, err := os.ReadFile(job.CntFile)
	require.NoError(t, err)
	assert.Contains(t, string(cnt), "!SOLUTION, TYPE=STATIC")
	assert.Contains(t, string(cnt), "METHOD=BiCGSTAB")

	// The deck's directory is the default output
	job, err = RunWrite(&WriteJob{DeckFile: deck}, analysis.DefaultSolverConfig())
	require.NoError(t, err)
	assert.Equal(t, dir, job.Dir)

	_, err = RunWrite(&WriteJob{DeckFile: filepath.Join(dir, "missing.yaml")}, analysis.DefaultSolverConfig())
	assert.Error(t, err)
}

// observeLogs routes the command logger into an in memory sink for the test
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	saved := rc.logger
	rc.logger = zap.New(core)
	t.Cleanup(func() { rc.logger = saved })
	return logs
}

func TestWriteWarningsLoggedOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tets.inp", tetMesh)
	deck := writeFile(t, dir, "deck.yaml", tetDeck+"  - Type: contact\n    Name: Touch\n")
	logs := observeLogs(t)

	job, err := RunWrite(&WriteJob{DeckFile: deck}, analysis.DefaultSolverConfig())
	require.NoError(t, err)
	require.Len(t, job.Warnings, 1)
	touch := logs.FilterMessageSnippet("Touch")
	assert.Equal(t, 1, touch.Len())

	var out bytes.Buffer
	printJob(&out, job)
	assert.Contains(t, out.String(), "1 warnings")
	assert.NotContains(t, out.String(), "Touch")
}

// avsStep is a two tet AVS UCD file whose displacements scale with the step
func avsStep(step int) string {
	var b strings.Builder
	b.WriteString("# File generated by FrontISTR\n# AVS UCD\n1\n5 2\n")
	b.WriteString("1 0 0 0\n2 1 0 0\n3 0 1 0\n4 0 0 1\n5 1 1 1\n")
	b.WriteString("1 1 tet 1 2 3 4\n2 1 tet 2 3 4 5\n")
	b.WriteString("9 0\n2 3 6\nDISPLACEMENT, unit_unknown\nNodalSTRESS, unit_unknown\n")
	for id := 1; id <= 5; id++ {
		fmt.Fprintf(&b, "%d 0 0 %d 100 0 0 0 0 0\n", id, step)
	}
	return b.String()
}

func TestRunRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "box_vis_psf.0001.inp", avsStep(1))

	recs, warnings, err := RunRead(&ReadJob{WorkDir: dir, Base: "box", Analysis: analysis.Static})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, recs, 1)
	assert.Equal(t, "FrontISTR_static_Results", recs[0].Name)
	assert.Len(t, recs[0].NodeNumbers, 5)
	st, ok := recs[0].Stats.Get("VonMises")
	require.True(t, ok)
	assert.InDelta(t, 100, st.Max, 1e-9)

	writeFile(t, dir, "box_vis_psf.0002.inp", avsStep(2))
	recs, _, err = RunRead(&ReadJob{WorkDir: dir, Analysis: analysis.Static, TimeIncrement: 0.5})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "FrontISTR_static_Time0.5_Results", recs[0].Name)
	assert.Equal(t, "FrontISTR_static_Time1.0_Results", recs[1].Name)

	recs, _, err = RunRead(&ReadJob{WorkDir: dir, Analysis: analysis.Static, Latest: true})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	st, _ = recs[0].Stats.Get("DisplacementZ")
	assert.InDelta(t, 2, st.Max, 1e-9)

	_, _, err = RunRead(&ReadJob{WorkDir: t.TempDir(), Analysis: analysis.Static})
	assert.Error(t, err)
}

func TestRunReadReinforcedDeck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tets.inp", tetMesh)
	writeFile(t, dir, "box_vis_psf.0001.inp", avsStep(1))
	plain := writeFile(t, dir, "deck.yaml", tetDeck)
	reinforced := writeFile(t, dir, "reinforced.yaml",
		strings.Replace(tetDeck, "  - Name: Steel\n", "  - Name: Concrete\n    Reinforced: true\n", 1))

	t.Run("reinforced material", func(t *testing.T) {
		recs, _, err := RunRead(&ReadJob{WorkDir: dir, Base: "box", Analysis: analysis.Static, DeckFile: reinforced})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Len(t, recs[0].MaxShear, 5)
		assert.Len(t, recs[0].PS1Vector, 5)
		_, ok := recs[0].Stats.Get("MaxShear")
		assert.True(t, ok)

		var out bytes.Buffer
		printRecords(&out, recs, 0)
		assert.Contains(t, out.String(), "MaxShear")
	})
	t.Run("plain material", func(t *testing.T) {
		recs, _, err := RunRead(&ReadJob{WorkDir: dir, Base: "box", Analysis: analysis.Static, DeckFile: plain})
		require.NoError(t, err)
		assert.Nil(t, recs[0].MaxShear)
	})
	t.Run("flag overrides the deck", func(t *testing.T) {
		recs, _, err := RunRead(&ReadJob{WorkDir: dir, Base: "box", Analysis: analysis.Static, DeckFile: plain, Reinforced: true})
		require.NoError(t, err)
		assert.Len(t, recs[0].MaxShear, 5)
	})
	t.Run("missing deck", func(t *testing.T) {
		_, _, err := RunRead(&ReadJob{WorkDir: dir, Base: "box", Analysis: analysis.Static, DeckFile: filepath.Join(dir, "none.yaml")})
		assert.Error(t, err)
	})
}

func TestRunMesh(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tets.inp", tetMesh)
	out := filepath.Join(dir, "copy.inp")
	m, err := RunMesh(in, out, true)
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumNodes())
	assert.Equal(t, 2, m.NumElements())
	assert.Contains(t, m.ElementGroups, "Root")

	again, err := RunMesh(out, "", false)
	require.NoError(t, err)
	assert.Equal(t, m.NodeIDs, again.NodeIDs)

	_, err = RunMesh(filepath.Join(dir, "part.stl"), "", false)
	assert.Error(t, err)
}
