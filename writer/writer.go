// Package writer translates an analysis.Model into the FrontISTR input files: the ABAQUS
// flavoured mesh (.inp), the analysis control file (.cnt), the case manifest
// (hecmw_ctrl.dat) and the partitioner control (hecmw_part_ctrl.dat).
package writer

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/elset"
	"github.com/notargets/gofistr/logging"
	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/mesh/writers"
	"github.com/notargets/gofistr/metrics"
	"github.com/notargets/gofistr/types"
	"github.com/notargets/gofistr/utils"
	"go.uber.org/zap"
)

// ErrElementCountMismatch is returned when the element sets do not cover the written elements
var ErrElementCountMismatch = elset.ErrElementCountMismatch

// Option configures a write
type Option func(*Writer)

func WithLogger(logger *zap.Logger) Option {
	return func(w *Writer) { w.logger = logging.OrNop(logger) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// Writer holds the state of one translation, it is not reused
type Writer struct {
	model   *analysis.Model
	msh     *mesh.Mesh
	sc      analysis.SolverConfig
	job     *Job
	logger  *zap.Logger
	metrics *metrics.Metrics

	records    []elset.Record
	shellBeams bool
	// Set when the first load or boundary record is written, gate the step trailer
	hasActiveLoad     bool
	hasActiveBoundary bool

	inp, cnt bytes.Buffer
	warnings types.Warnings
}

// Write translates the model into dir. On failure no job is returned and no file is left
// half written: both streams are rendered in memory before anything is created.
func Write(dir string, model *analysis.Model, opts ...Option) (job *Job, err error) {
	if err = model.Validate(); err != nil {
		return nil, err
	}
	w := &Writer{
		model:      model,
		msh:        model.Mesh,
		sc:         model.Solver,
		job:        newJob(dir, model.Name),
		logger:     zap.NewNop(),
		shellBeams: len(model.Shells) != 0 || len(model.Beams) != 0,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("job", w.job.ID.String()), zap.String("base", model.Name))
	defer w.metrics.Time("write")()

	if err = w.render(); err != nil {
		w.logger.Error("writing input failed", zap.Error(err))
		return nil, err
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	files := []struct {
		path string
		data []byte
	}{
		{w.job.MeshFile, fixFloatExpressions(w.inp.Bytes())},
		{w.job.CntFile, w.cnt.Bytes()},
		{w.job.DatFile, w.dat()},
		{w.job.PartFile, w.partDat()},
	}
	for _, f := range files {
		if err = os.WriteFile(f.path, f.data, 0644); err != nil {
			return nil, err
		}
	}
	w.job.Warnings = w.warnings
	w.metrics.RecordWarnings("write", len(w.warnings))
	w.logger.Info("input files written",
		zap.String("mesh", w.job.MeshFile),
		zap.Int("element_sets", len(w.records)),
		zap.Int("warnings", len(w.warnings)))
	return w.job, nil
}

func (w *Writer) warn(format string, args ...interface{}) {
	msg := w.warnings.Add(format, args...)
	w.logger.Warn(msg)
}

func (w *Writer) render() (err error) {
	b := elset.NewBuilder(w.model)
	if w.records, err = b.Build(); err != nil {
		return
	}
	class, _ := w.msh.HighestClass()
	if err = b.Reconcile(w.records, class); err != nil {
		return
	}
	w.metrics.RecordElementSets(len(w.records))
	w.metrics.RecordElements(class.String(), len(w.msh.ElementsOfClass(class)))

	if err = w.writeMesh(); err != nil {
		return
	}
	w.writeCntHeader()
	if err = w.writeGlobalSettings(); err != nil {
		return
	}

	w.writeElementSets()
	w.writeFixedNodeSets()
	w.writeDisplacementNodeSets()
	w.writeSectionPrintSurfaces()
	w.writeTemperatureNodeSets()
	if err = w.writeMaterials(); err != nil {
		return
	}
	w.writeInitialTemperature()
	w.writeSections()
	w.reportUnsupported()

	w.writeFixed()
	w.writeDisplacement()
	w.writeSelfWeight()
	if err = w.writeForce(); err != nil {
		return
	}
	if err = w.writePressure(); err != nil {
		return
	}
	w.writeTemperature()
	w.writeHeatFlux()

	w.writeStep()
	return w.writeOutputs()
}

// writeMesh renders nodes and highest order elements with the generic ABAQUS writer and
// drops its Eall trailer, FrontISTR input defines its own element sets
func (w *Writer) writeMesh() error {
	var generic bytes.Buffer
	if err := writers.WriteAbaqus(&generic, w.msh, true); err != nil {
		return err
	}
	data, ok := stripEallTrailer(generic.Bytes())
	if !ok {
		w.warn("element set trailer marker %q not found, mesh written unchanged", writers.EallMarker)
	}
	w.inp.Write(data)
	return nil
}

// stripEallTrailer cuts the data at the line holding the Eall marker
func stripEallTrailer(data []byte) ([]byte, bool) {
	i := bytes.LastIndex(data, []byte("\n"+writers.EallMarker))
	if i < 0 {
		return data, false
	}
	return data[:i], true
}

// FrontISTR rejects numbers like 1e-05 or 2E+03 without a decimal point
var floatExpression = regexp.MustCompile(`([+\-,\s][0-9]+)([eE])`)

func fixFloatExpressions(data []byte) []byte {
	return floatExpression.ReplaceAll(data, []byte("${1}.${2}"))
}

func (w *Writer) dat() []byte {
	var b bytes.Buffer
	base := w.job.Base
	b.WriteString("!MESH, NAME=part_in,TYPE=ABAQUS\n")
	b.WriteString(base + ".inp\n")
	b.WriteString("!MESH, NAME=part_out,TYPE=HECMW-DIST\n")
	b.WriteString(base + ".p\n")
	b.WriteString("!MESH, NAME=fstrMSH, TYPE=HECMW-DIST\n")
	b.WriteString(base + ".p\n")
	b.WriteString("!CONTROL, NAME=fstrCNT\n")
	b.WriteString(base + ".cnt\n")
	b.WriteString("!RESULT, NAME=fstrRES, IO=OUT\n")
	b.WriteString(base + ".res\n")
	b.WriteString("!RESULT, NAME=vis_out, IO=OUT\n")
	b.WriteString(base + "_vis\n")
	return b.Bytes()
}

func (w *Writer) partDat() []byte {
	return []byte(fmt.Sprintf("!PARTITION,TYPE=NODE-BASED,METHOD=PMETIS,DOMAIN=%d\n", w.sc.NProcess))
}

// section writes the banner that opens every mesh file block
func (w *Writer) section(title string) {
	w.inp.WriteString("\n***********************************************************\n")
	fmt.Fprintf(&w.inp, "** %s\n", title)
}

func (w *Writer) hasVolumes() bool {
	return w.msh.HasClass(utils.Volumes)
}
