package writers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/utils"
)

// EallMarker opens the trailer the generic writer appends to define the Eall element set
const EallMarker = "** Define element set Eall"

// ABAQUS data lines hold at most 16 entries, longer element records continue on the next line
const abaqusMaxEntries = 16

// WriteAbaqusFile writes the mesh in ABAQUS .inp form, see WriteAbaqus
func WriteAbaqusFile(filename string, m *mesh.Mesh, highestOnly bool) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(file)
	if err = WriteAbaqus(w, m, highestOnly); err != nil {
		return
	}
	return w.Flush()
}

// WriteAbaqus writes nodes and elements grouped by class into Evolumes/Efaces/Eedges
// element sets, followed by the Eall element set trailer. With highestOnly only the
// highest dimension element class is written.
func WriteAbaqus(w io.Writer, m *mesh.Mesh, highestOnly bool) error {
	highest, ok := m.HighestClass()
	if !ok {
		return fmt.Errorf("mesh has no elements to write")
	}
	var b strings.Builder
	b.WriteString("** written by gofistr inp file writer for FrontISTR meshes\n")
	if highestOnly {
		b.WriteString("** highest dimension mesh elements only.\n")
	} else {
		b.WriteString("** all mesh elements.\n")
	}
	b.WriteString("\n** Nodes\n*Node, NSET=Nall\n")
	for _, nid := range m.NodeIDs {
		x := m.Nodes[nid]
		fmt.Fprintf(&b, "%d, %.13e, %.13e, %.13e\n", nid, x.X, x.Y, x.Z)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	classes := []utils.ElementClass{utils.Volumes, utils.Faces, utils.Edges}
	var written []utils.ElementClass
	for _, class := range classes {
		if highestOnly && class != highest {
			continue
		}
		if !m.HasClass(class) {
			continue
		}
		b.Reset()
		writeClass(&b, m, class)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		written = append(written, class)
	}

	b.Reset()
	fmt.Fprintf(&b, "\n%s\n*ELSET, ELSET=Eall\n", EallMarker)
	for _, class := range written {
		b.WriteString(class.String() + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeClass(b *strings.Builder, m *mesh.Mesh, class utils.ElementClass) {
	labels := map[utils.ElementClass]string{
		utils.Volumes: "Volume", utils.Faces: "Face", utils.Edges: "Edge",
	}
	fmt.Fprintf(b, "\n** %s elements\n", labels[class])
	for _, et := range utils.AllElementTypes {
		if et.Class() != class {
			continue
		}
		header := false
		for _, eid := range m.ElementIDs {
			el := m.Elements[eid]
			if el.Type != et {
				continue
			}
			if !header {
				fmt.Fprintf(b, "*Element, TYPE=%s, ELSET=%s\n", et.AbaqusName(), class)
				header = true
			}
			writeRecord(b, eid, utils.Reorder(et, el.Nodes))
		}
	}
}

func writeRecord(b *strings.Builder, eid int, nodes []int) {
	entries := make([]string, 0, len(nodes)+1)
	entries = append(entries, strconv.Itoa(eid))
	for _, n := range nodes {
		entries = append(entries, strconv.Itoa(n))
	}
	for len(entries) > abaqusMaxEntries {
		b.WriteString(strings.Join(entries[:abaqusMaxEntries], ", ") + ",\n")
		entries = entries[abaqusMaxEntries:]
	}
	b.WriteString(strings.Join(entries, ", ") + "\n")
}
