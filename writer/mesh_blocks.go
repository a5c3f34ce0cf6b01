package writer

import (
	"fmt"

	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/elset"
	"github.com/notargets/gofistr/utils"
)

// Sentinel element and node group covering everything in FrontISTR
const allGroup = "ALL"

func (w *Writer) writeElementSets() {
	w.section("Element sets for materials and FEM element type (solid, shell, beam)")
	for _, rec := range w.records {
		if rec.All {
			continue
		}
		if rec.Normal != nil {
			fmt.Fprintf(&w.inp, "** normal: %f, %f, %f\n", rec.Normal.X, rec.Normal.Y, rec.Normal.Z)
		}
		fmt.Fprintf(&w.inp, "*ELSET,ELSET=%s\n", rec.Name)
		for _, eid := range rec.Elements {
			fmt.Fprintf(&w.inp, "%d,\n", eid)
		}
	}
}

func (w *Writer) writeNodeSet(name string, nodes []int) {
	fmt.Fprintf(&w.inp, "*NSET,NSET=%s\n", name)
	for _, n := range nodes {
		fmt.Fprintf(&w.inp, "%d,\n", n)
	}
}

// splitNodes separates the nodes used by volume elements from those used by faces and edges,
// a node shared by both lands in both
func (w *Writer) splitNodes(nodes []int) (solid, faceEdge []int) {
	volumeNodes := make(map[int]bool)
	for _, n := range w.msh.NodesOfElements(w.msh.ElementsOfClass(utils.Volumes)) {
		volumeNodes[n] = true
	}
	shellNodes := make(map[int]bool)
	for _, class := range []utils.ElementClass{utils.Faces, utils.Edges} {
		for _, n := range w.msh.NodesOfElements(w.msh.ElementsOfClass(class)) {
			shellNodes[n] = true
		}
	}
	for _, n := range nodes {
		if volumeNodes[n] {
			solid = append(solid, n)
		}
		if shellNodes[n] {
			faceEdge = append(faceEdge, n)
		}
	}
	return
}

// splitFixed is true when fixed node sets are split into Solid and FaceEdge parts
func (w *Writer) splitFixed() bool {
	return w.hasVolumes() && w.shellBeams
}

func (w *Writer) writeFixedNodeSets() {
	fixed := analysis.Collect[*analysis.Fixed](w.model.Constraints)
	if len(fixed) == 0 {
		return
	}
	w.section("constraints fixed node sets")
	for _, fix := range fixed {
		fmt.Fprintf(&w.inp, "** %s\n", fix.Name)
		if w.splitFixed() {
			solid, faceEdge := w.splitNodes(fix.Nodes)
			if len(solid) != 0 {
				w.writeNodeSet(fix.Name+"Solid", solid)
			}
			if len(faceEdge) != 0 {
				w.writeNodeSet(fix.Name+"FaceEdge", faceEdge)
			}
			continue
		}
		w.writeNodeSet(fix.Name, fix.Nodes)
	}
}

func (w *Writer) writeDisplacementNodeSets() {
	disps := analysis.Collect[*analysis.Displacement](w.model.Constraints)
	if len(disps) == 0 {
		return
	}
	w.section("constraints displacement node sets")
	for _, d := range disps {
		fmt.Fprintf(&w.inp, "** %s\n", d.Name)
		w.writeNodeSet(d.Name, d.Nodes)
	}
}

func (w *Writer) writeSectionPrintSurfaces() {
	prints := analysis.Collect[*analysis.SectionPrint](w.model.Constraints)
	if len(prints) == 0 {
		return
	}
	w.section("constraints sectionprint surface sets")
	for i, sp := range prints {
		fmt.Fprintf(&w.inp, "** %s\n", sp.Name)
		fmt.Fprintf(&w.inp, "*SURFACE, NAME=SECTIONFACE%d\n", i+1)
		if len(sp.Faces) == 0 {
			w.warn("section print %s, surface SECTIONFACE%d: no volume element faces", sp.Name, i+1)
			w.inp.WriteString("** Error: empty list\n")
			continue
		}
		for _, f := range sp.Faces {
			fmt.Fprintf(&w.inp, "%d,S%d\n", f.Element, f.Face)
		}
	}
}

func (w *Writer) writeTemperatureNodeSets() {
	temps := analysis.Collect[*analysis.Temperature](w.model.Constraints)
	if len(temps) == 0 || w.sc.AnalysisType != analysis.ThermoMech {
		return
	}
	w.section("constraints temperature node sets")
	for _, t := range temps {
		fmt.Fprintf(&w.inp, "** %s\n", t.Name)
		w.writeNodeSet(t.Name, t.Nodes)
	}
}

// writeSections emits solid sections, shell, beam and fluid sections are reported by
// reportUnsupported and left out
func (w *Writer) writeSections() {
	w.section("Sections")
	for _, rec := range w.records {
		if rec.Section != elset.SolidSection {
			continue
		}
		set := rec.Name
		if rec.All {
			set = allGroup
		}
		fmt.Fprintf(&w.inp, "*SOLID SECTION, ELSET=%s, MATERIAL=%s\n", set, rec.Material.Name)
	}
}

func (w *Writer) reportUnsupported() {
	for _, mat := range w.model.Materials {
		if mat.Category == analysis.Fluid {
			w.warn("fluid material %s is not supported", mat.Name)
		}
	}
	if len(w.model.Fluids) != 0 {
		w.warn("fluid sections are not supported, %d skipped", len(w.model.Fluids))
	}
	if len(w.model.Beams) != 0 {
		w.warn("beam sections are not supported, %d skipped", len(w.model.Beams))
	}
	if len(w.model.Shells) != 0 {
		w.warn("shell sections are not supported, %d skipped", len(w.model.Shells))
	}
	for _, c := range w.model.Constraints {
		if !c.Kind().Supported() {
			w.warn("%s constraint %s is not supported", c.Kind(), c.GetName())
		}
	}
}

func (w *Writer) writeHeatFlux() {
	fluxes := analysis.Collect[*analysis.HeatFlux](w.model.Constraints)
	if len(fluxes) == 0 || w.sc.AnalysisType != analysis.ThermoMech {
		return
	}
	w.section("constraints heatflux element face heatflux")
	for _, hf := range fluxes {
		fmt.Fprintf(&w.inp, "** %s\n", hf.Name)
		switch hf.Type {
		case analysis.Convection:
			w.inp.WriteString("*FILM\n")
			for _, f := range hf.Faces {
				fmt.Fprintf(&w.inp, "%d,F%d,%s,%s\n", f.Element, f.Face,
					utils.FormatFloat(hf.AmbientTemp), utils.FormatFloat(hf.FilmCoef/1000))
			}
		case analysis.DistributedFlux:
			w.inp.WriteString("*DFLUX\n")
			for _, f := range hf.Faces {
				fmt.Fprintf(&w.inp, "%d,S%d,%s\n", f.Element, f.Face, utils.FormatFloat(hf.DFlux/1000))
			}
		default:
			w.warn("heat flux %s has unknown type %q", hf.Name, string(hf.Type))
		}
	}
}
