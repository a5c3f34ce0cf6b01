package avsucd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gofistr/metrics"
	"github.com/notargets/gofistr/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const preamble = "# File generated by FrontISTR\n# AVS UCD\n1\n"

var twoTetNodes = []string{
	"1 0.0 0.0 0.0",
	"2 1.0 0.0 0.0",
	"9 5.0 5.0 5.0",
	"3 0.0 1.0 0.0",
	"4 0.0 0.0 1.0",
	"5 1.0 1.0 1.0",
}

var twoTetElements = []string{
	"1 1 tet 1 2 3 4",
	"2 1 tet 2 3 4 5",
	"3 1 hex 1 2 3 4 5 9 9 9",
}

const fullTable = "13 0\n4 3 6 1 3\nDISPLACEMENT, unit_unknown\nNodalSTRESS, unit_unknown\n" +
	"NodalMISES, unit_unknown\nNodalPrincipalSTRESS, unit_unknown\n"

// resultRows gives node n displacement (n, 2n, 3n), stress 11..16 scaled by n, mises 100n
// and principal stresses (3n, 2n, n)
func resultRows(ids ...int) string {
	var b strings.Builder
	for _, id := range ids {
		n := float64(id)
		fmt.Fprintf(&b, "%d %g %g %g", id, n, 2*n, 3*n)
		for k := 11; k <= 16; k++ {
			fmt.Fprintf(&b, " %g", float64(k)*n)
		}
		fmt.Fprintf(&b, " %g %g %g %g\n", 100*n, 3*n, 2*n, n)
	}
	return b.String()
}

func avsText(nodes, elements []string, results string) string {
	return preamble +
		fmt.Sprintf("%d %d\n", len(nodes), len(elements)) +
		strings.Join(nodes, "\n") + "\n" +
		strings.Join(elements, "\n") + "\n" +
		results
}

func writeAvs(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestReadTwoTets(t *testing.T) {
	path := writeAvs(t, t.TempDir(), "job_vis_psf.0001.inp",
		avsText(twoTetNodes, twoTetElements, fullTable+resultRows(1, 2, 9, 3, 4, 5)))
	met := metrics.New()
	res, err := ReadFile(path, ReadOptions{Metrics: met})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	// The shared face is interior, the hex is dropped
	assert.Equal(t, 6, res.Mesh.NumElements())
	for _, eid := range res.Mesh.ElementIDs {
		assert.Equal(t, utils.Triangle, res.Mesh.Elements[eid].Type)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, res.Mesh.ElementIDs)

	// Node 9 is not on the surface and is pruned
	assert.Equal(t, 5, res.Mesh.NumNodes())
	rn := res.Renumbering
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rn.Original)
	_, ok := rn.Compact(9)
	assert.False(t, ok)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, res.Mesh.Nodes[5])

	require.Len(t, res.Sets, 1)
	set := res.Sets[0]
	assert.True(t, math.IsNaN(set.Number))
	assert.True(t, math.IsNaN(set.Time))
	assert.False(t, set.Empty())
	assert.Len(t, set.Displacement, 5)
	assert.Equal(t, r3.Vec{X: 3, Y: 6, Z: 9}, set.Displacement[rn.Nodes[3]])
	assert.Equal(t, [6]float64{22, 24, 26, 28, 32, 30}, set.Stress[rn.Nodes[2]])
	assert.Equal(t, 400.0, set.Mises[rn.Nodes[4]])
	assert.Equal(t, [3]float64{15, 10, 5}, set.Principal[rn.Nodes[5]])
	assert.Equal(t, []string{FieldDisplacement, FieldStress, FieldMises, FieldPrincipalStress}, set.Labels)

	assert.Equal(t, 6.0, testutil.ToFloat64(met.SurfaceFaces.WithLabelValues("tri3")))
	assert.Equal(t, 0.0, testutil.ToFloat64(met.SurfaceFaces.WithLabelValues("tri6")))
	assert.Equal(t, 5.0, testutil.ToFloat64(met.RenumberedNodes))
}

func TestRenumberingBijection(t *testing.T) {
	nodes := []string{"30 0 0 0", "10 1 0 0", "20 0 1 0", "40 0 0 1"}
	path := writeAvs(t, t.TempDir(), "tet.inp", avsText(nodes, []string{"7 1 tet 10 20 30 40"}, "0 0\n"))
	res, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	rn := res.Renumbering
	// Node block order decides the compact ids
	assert.Equal(t, []int{30, 10, 20, 40}, rn.Original)
	for c, nid := range rn.Original {
		assert.Equal(t, c+1, rn.Nodes[nid])
	}
	assert.Len(t, rn.Nodes, len(rn.Original))
	for _, eid := range res.Mesh.ElementIDs {
		for _, n := range res.Mesh.Elements[eid].Nodes {
			assert.True(t, n >= 1 && n <= 4)
		}
	}
}

func TestReadQuadraticAndLinear(t *testing.T) {
	var nodes []string
	for i := 1; i <= 14; i++ {
		nodes = append(nodes, fmt.Sprintf("%d %d 0 0", i, i))
	}
	elements := []string{
		"1 1 tet 11 12 13 14",
		"2 1 tet2 1 2 3 4 5 6 7 8 9 10",
	}
	path := writeAvs(t, t.TempDir(), "mixed.inp", avsText(nodes, elements, "0 0\n"))
	res, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 8, res.Mesh.NumElements())
	for eid := 1; eid <= 4; eid++ {
		el := res.Mesh.Elements[eid]
		assert.Equal(t, utils.Triangle6, el.Type)
		assert.Len(t, el.Nodes, 6)
	}
	for eid := 5; eid <= 8; eid++ {
		assert.Equal(t, utils.Triangle, res.Mesh.Elements[eid].Type)
	}
	assert.Equal(t, 14, res.Mesh.NumNodes())

	// Without node results one empty set is returned with a warning
	require.Len(t, res.Sets, 1)
	assert.True(t, res.Sets[0].Empty())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no node results")
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, err error)
	}{
		{"bad counts", preamble + "five two\n", func(t *testing.T, err error) {
			var he *HeaderError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, 4, he.Line)
		}},
		{"short preamble", "# only\n", func(t *testing.T, err error) {
			var he *HeaderError
			assert.True(t, errors.As(err, &he))
		}},
		{"missing stress", avsText(twoTetNodes, twoTetElements,
			"3 0\n1 3\nDISPLACEMENT, unit_unknown\n"+"1 0 0 0\n2 0 0 0\n9 0 0 0\n3 0 0 0\n4 0 0 0\n5 0 0 0\n"),
			func(t *testing.T, err error) {
				var mf *MissingFieldError
				require.True(t, errors.As(err, &mf))
				assert.Equal(t, FieldStress, mf.Field)
			}},
		{"unknown node", avsText(twoTetNodes[:2], []string{"1 1 tet 1 2 3 99"}, "0 0\n"),
			func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown node")
			}},
		{"widths exceed values", avsText(twoTetNodes, twoTetElements, "3 0\n1 6\nDISPLACEMENT\n"),
			func(t *testing.T, err error) {
				var he *HeaderError
				assert.True(t, errors.As(err, &he))
			}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeAvs(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".inp", tt.text)
			res, err := ReadFile(path, ReadOptions{})
			assert.Nil(t, res)
			tt.check(t, err)
		})
	}

	// An absent file means the solver wrote no results
	_, err := ReadFile(filepath.Join(dir, "absent.inp"), ReadOptions{})
	assert.True(t, errors.Is(err, ErrNoResults))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFindResultFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := FindResultFiles(dir, "job")
	assert.True(t, errors.Is(err, ErrNoResults))
	_, err = FindResultFiles(filepath.Join(dir, "missing"), "job")
	assert.True(t, errors.Is(err, ErrNoResults))

	writeAvs(t, dir, "job.avs", "")
	files, err := FindResultFiles(dir, "job")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "job.avs")}, files)

	for _, name := range []string{"job_vis_psf.0002.inp", "job_vis_psf.0001.inp", "job.cnt"} {
		writeAvs(t, dir, name, "")
	}
	files, err = FindResultFiles(dir, "job")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "job_vis_psf.0001.inp"),
		filepath.Join(dir, "job_vis_psf.0002.inp"),
	}, files)
	latest, err := LatestResultFile(dir, "job")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job_vis_psf.0002.inp"), latest)

	step, ok := stepNumber(latest)
	assert.True(t, ok)
	assert.Equal(t, 2, step)
	_, ok = stepNumber(filepath.Join(dir, "job.avs"))
	assert.False(t, ok)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	text := avsText(twoTetNodes, twoTetElements, fullTable+resultRows(1, 2, 9, 3, 4, 5))
	paths := []string{
		writeAvs(t, dir, "job_vis_psf.0001.inp", text),
		writeAvs(t, dir, "job_vis_psf.0002.inp", text),
	}

	res, err := ReadFiles(paths, ReadOptions{TimeIncrement: 0.5})
	require.NoError(t, err)
	require.Len(t, res.Sets, 2)
	assert.Equal(t, 0.5, res.Sets[0].Time)
	assert.Equal(t, 1.0, res.Sets[1].Time)
	assert.True(t, math.IsNaN(res.Sets[0].Number))

	res, err = ReadFiles(paths, ReadOptions{Eigen: true})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Sets[0].Number)
	assert.Equal(t, 2.0, res.Sets[1].Number)

	other := writeAvs(t, dir, "job_vis_psf.0003.inp",
		avsText(twoTetNodes, twoTetElements[:1], fullTable+resultRows(1, 2, 9, 3, 4, 5)))
	_, err = ReadFiles(append(paths, other), ReadOptions{})
	assert.Error(t, err)

	// Same counts, different node ids
	renamed := []string{twoTetNodes[0], twoTetNodes[1], twoTetNodes[2], twoTetNodes[3], twoTetNodes[4], "6 1.0 1.0 1.0"}
	shifted := writeAvs(t, dir, "job_vis_psf.0004.inp",
		avsText(renamed, []string{"1 1 tet 1 2 3 4", "2 1 tet 2 3 4 6"}, fullTable+resultRows(1, 2, 9, 3, 4, 6)))
	_, err = ReadFiles([]string{paths[0], shifted}, ReadOptions{})
	assert.ErrorContains(t, err, "surface differs")

	_, err = ReadFiles(nil, ReadOptions{})
	assert.True(t, errors.Is(err, ErrNoResults))
}
