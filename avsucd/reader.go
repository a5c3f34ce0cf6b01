// Package avsucd reads the AVS-UCD visualization files the solver writes, extracts the
// boundary surface of the tetrahedral mesh and collects the nodal results on it.
package avsucd

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofistr/logging"
	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/metrics"
	"github.com/notargets/gofistr/types"
	"github.com/notargets/gofistr/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node result field labels
const (
	FieldDisplacement    = "DISPLACEMENT"
	FieldStress          = "NodalSTRESS"
	FieldMises           = "NodalMISES"
	FieldPrincipalStress = "NodalPrincipalSTRESS"
)

// Minimum component counts of the fields the result set is built from
var fieldWidths = map[string]int{
	FieldDisplacement:    3,
	FieldStress:          6,
	FieldMises:           1,
	FieldPrincipalStress: 3,
}

// HeaderError reports a malformed preamble, count or component table line
type HeaderError struct {
	Path string
	Line int
	Msg  string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s:%d: malformed AVS header: %s", e.Path, e.Line, e.Msg)
}

// MissingFieldError reports a required node result field absent from the file
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: node result field %s not found", e.Path, e.Field)
}

type ReadOptions struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Eigen tags each file of a multi file read with its mode number
	Eigen bool
	// TimeIncrement converts step numbers of a multi file read into times, 0 uses the step
	TimeIncrement float64
}

// ResultSet holds the node results of one increment, keyed by compact node id
type ResultSet struct {
	// Mode number and time, NaN when the file carries no tag
	Number float64
	Time   float64

	Displacement map[int]r3.Vec
	// xx, yy, zz, xy, yz, zx
	Stress map[int][6]float64
	// Nil when the file does not carry the field
	Mises     map[int]float64
	Principal map[int][3]float64
	// Every node field of the file by label
	Labels []string
	Fields map[string]map[int][]float64
}

func newResultSet() ResultSet {
	return ResultSet{Number: math.NaN(), Time: math.NaN()}
}

// Empty is true for the placeholder set of a file without node results
func (rs *ResultSet) Empty() bool {
	return len(rs.Displacement) == 0
}

type Result struct {
	Path        string
	Mesh        *mesh.Mesh
	Renumbering Renumbering
	Sets        []ResultSet
	Warnings    types.Warnings
}

// lineReader hands out the lines of a file front to back, tracking line numbers for errors
type lineReader struct {
	path  string
	lines []string
	pos   int
}

func (r *lineReader) next() (line string, ok bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	line = strings.TrimRight(r.lines[r.pos], "\r")
	r.pos++
	return line, true
}

func (r *lineReader) headerError(format string, args ...interface{}) *HeaderError {
	return &HeaderError{Path: r.path, Line: r.pos, Msg: fmt.Sprintf(format, args...)}
}

// ints reads a header line of at least n integers
func (r *lineReader) ints(what string, n int) (vals []int, err error) {
	line, ok := r.next()
	if !ok {
		return nil, r.headerError("missing %s line", what)
	}
	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, r.headerError("%s line %q needs %d values", what, line, n)
	}
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = strconv.Atoi(f); err != nil {
			return nil, r.headerError("%s line %q: %v", what, line, err)
		}
	}
	return vals, nil
}

// ReadFile parses one AVS-UCD file. The whole file is read into memory.
func ReadFile(path string, opts ReadOptions) (res *Result, err error) {
	logger := logging.OrNop(opts.Logger).With(zap.String("file", path))
	defer opts.Metrics.Time("read")()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrNoResults, err)
	}
	if err != nil {
		return nil, err
	}
	if res, err = parse(path, string(data)); err != nil {
		logger.Error("reading results failed", zap.Error(err))
		return nil, err
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	tri3 := len(res.Mesh.ElementsOfClass(utils.Faces))
	tri6 := 0
	for _, eid := range res.Mesh.ElementIDs {
		if res.Mesh.Elements[eid].Type == utils.Triangle6 {
			tri6++
		}
	}
	tri3 -= tri6
	opts.Metrics.RecordSurface(tri3, tri6, res.Mesh.NumNodes())
	opts.Metrics.RecordWarnings("read", len(res.Warnings))
	logger.Info("results read",
		zap.Int("nodes", res.Mesh.NumNodes()),
		zap.Int("tri6", tri6),
		zap.Int("tri3", tri3),
		zap.Int("sets", len(res.Sets)))
	return res, nil
}

func parse(path, data string) (res *Result, err error) {
	r := &lineReader{path: path, lines: strings.Split(data, "\n")}
	for i := 0; i < 3; i++ {
		if _, ok := r.next(); !ok {
			return nil, r.headerError("file ends inside the preamble")
		}
	}
	counts, err := r.ints("node and element count", 2)
	if err != nil {
		return nil, err
	}
	nNodes, nElems := counts[0], counts[1]
	if nNodes <= 0 {
		return nil, r.headerError("no nodes")
	}

	coords := make(map[int]r3.Vec, nNodes)
	nodeOrder := make([]int, 0, nNodes)
	for i := 0; i < nNodes; i++ {
		var (
			nid int
			x   r3.Vec
		)
		if nid, x, err = r.node(); err != nil {
			return nil, err
		}
		if _, dup := coords[nid]; !dup {
			nodeOrder = append(nodeOrder, nid)
		}
		coords[nid] = x
	}

	var tets []tet
	for i := 0; i < nElems; i++ {
		line, ok := r.next()
		if !ok {
			return nil, fmt.Errorf("%s: file ends after %d of %d elements", path, i, nElems)
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s:%d: invalid element line %q", path, r.pos, line)
		}
		var etype utils.ElementType
		switch fields[2] {
		case "tet2":
			etype = utils.Tet10
		case "tet":
			etype = utils.Tet
		default:
			// Only tetrahedral meshes are turned into surfaces
			continue
		}
		n := etype.GetNumNodes()
		if len(fields) < 3+n {
			return nil, fmt.Errorf("%s:%d: %s element needs %d nodes", path, r.pos, fields[2], n)
		}
		vals := make([]int, n+1)
		for j, f := range append(fields[:1:1], fields[3:3+n]...) {
			if vals[j], err = strconv.Atoi(f); err != nil {
				return nil, fmt.Errorf("%s:%d: %v", path, r.pos, err)
			}
		}
		tets = append(tets, tet{id: vals[0], etype: etype, nodes: utils.AvsToHost(etype, vals[1:])})
	}

	faces := extractSurface(tets)
	rn, err := renumber(nodeOrder, faces)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res = &Result{Path: path, Mesh: mesh.NewMesh(), Renumbering: rn}
	for c, nid := range rn.Original {
		if err = res.Mesh.AddNode(c+1, coords[nid]); err != nil {
			return nil, err
		}
	}
	for _, f := range faces {
		nodes := make([]int, len(f.nodes))
		for j, n := range f.nodes {
			nodes[j] = rn.Nodes[n]
		}
		if err = res.Mesh.AddElement(rn.Elements[f.id], f.etype, nodes); err != nil {
			return nil, err
		}
	}

	set, err := r.nodeResults(nNodes, &rn)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		res.Warnings.Add("%s has nodes but no node results, the solver wrote a mesh only "+
			"(check analysis, failed solve or no result output requested)", path)
	}
	res.Sets = []ResultSet{set}
	return res, nil
}

func (r *lineReader) node() (nid int, x r3.Vec, err error) {
	line, ok := r.next()
	if !ok {
		return 0, x, fmt.Errorf("%s: file ends inside the node block", r.path)
	}
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return 0, x, fmt.Errorf("%s:%d: invalid node line %q", r.path, r.pos, line)
	}
	if nid, err = strconv.Atoi(fields[0]); err != nil {
		return 0, x, fmt.Errorf("%s:%d: %v", r.path, r.pos, err)
	}
	var c [3]float64
	for i := range c {
		if c[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
			return 0, x, fmt.Errorf("%s:%d: %v", r.path, r.pos, err)
		}
	}
	return nid, r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// nodeResults reads the component table and the node rows. Rows of nodes outside the
// surface are read and dropped.
func (r *lineReader) nodeResults(nNodes int, rn *Renumbering) (set ResultSet, err error) {
	set = newResultSet()
	counts, err := r.ints("node and element result count", 2)
	if err != nil {
		return
	}
	nNodeRes := counts[0]
	if nNodeRes <= 0 {
		return set, nil
	}
	dofs, err := r.ints("node component", 1)
	if err != nil {
		return
	}
	nDofs := dofs[0]
	if len(dofs) < nDofs+1 {
		return set, r.headerError("%d components declared, %d widths given", nDofs, len(dofs)-1)
	}
	// offsets[j]:offsets[j+1] spans component j of a row
	offsets := make([]int, nDofs+1)
	for j := 0; j < nDofs; j++ {
		offsets[j+1] = offsets[j] + dofs[j+1]
	}
	if offsets[nDofs] > nNodeRes {
		return set, r.headerError("component widths add up to %d, only %d values per node", offsets[nDofs], nNodeRes)
	}

	set.Fields = make(map[string]map[int][]float64, nDofs)
	for j := 0; j < nDofs; j++ {
		line, ok := r.next()
		if !ok {
			return set, r.headerError("missing label of component %d", j+1)
		}
		label := strings.ReplaceAll(strings.Split(line, ",")[0], " ", "")
		set.Labels = append(set.Labels, label)
		set.Fields[label] = make(map[int][]float64, len(rn.Original))
	}

	for i := 0; i < nNodes; i++ {
		line, ok := r.next()
		if !ok {
			return set, fmt.Errorf("%s: file ends after %d of %d node result rows", r.path, i, nNodes)
		}
		fields := strings.Fields(line)
		if len(fields) < nNodeRes+1 {
			return set, fmt.Errorf("%s:%d: node result row needs %d values", r.path, r.pos, nNodeRes)
		}
		nid, err := strconv.Atoi(fields[0])
		if err != nil {
			return set, fmt.Errorf("%s:%d: %v", r.path, r.pos, err)
		}
		c, onSurface := rn.Compact(nid)
		if !onSurface {
			continue
		}
		row := make([]float64, nNodeRes)
		for k := range row {
			if row[k], err = strconv.ParseFloat(fields[k+1], 64); err != nil {
				return set, fmt.Errorf("%s:%d: %v", r.path, r.pos, err)
			}
		}
		for j, label := range set.Labels {
			set.Fields[label][c] = row[offsets[j]:offsets[j+1]]
		}
	}
	return set, set.collect(r.path)
}

// collect fills the typed maps from the raw fields. Displacement and stress are required,
// von Mises and principal stresses are left nil when absent.
func (rs *ResultSet) collect(path string) error {
	for _, label := range []string{FieldDisplacement, FieldStress, FieldMises, FieldPrincipalStress} {
		field, ok := rs.Fields[label]
		if !ok {
			if label == FieldDisplacement || label == FieldStress {
				return &MissingFieldError{Path: path, Field: label}
			}
			continue
		}
		for _, v := range field {
			if len(v) < fieldWidths[label] {
				return fmt.Errorf("%s: field %s has %d components, need %d", path, label, len(v), fieldWidths[label])
			}
			break
		}
	}
	rs.Displacement = make(map[int]r3.Vec, len(rs.Fields[FieldDisplacement]))
	for c, v := range rs.Fields[FieldDisplacement] {
		rs.Displacement[c] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	rs.Stress = make(map[int][6]float64, len(rs.Fields[FieldStress]))
	for c, v := range rs.Fields[FieldStress] {
		// The file stores zx before yz
		rs.Stress[c] = [6]float64{v[0], v[1], v[2], v[3], v[5], v[4]}
	}
	if field, ok := rs.Fields[FieldMises]; ok {
		rs.Mises = make(map[int]float64, len(field))
		for c, v := range field {
			rs.Mises[c] = v[0]
		}
	}
	if field, ok := rs.Fields[FieldPrincipalStress]; ok {
		rs.Principal = make(map[int][3]float64, len(field))
		for c, v := range field {
			rs.Principal[c] = [3]float64{v[0], v[1], v[2]}
		}
	}
	return nil
}
