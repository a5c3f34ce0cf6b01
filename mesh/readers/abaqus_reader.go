package readers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadAbaqus reads the *NODE, *ELEMENT and *ELSET blocks of an ABAQUS .inp file.
// Element nodes are converted to host order, element sets become element groups.
func ReadAbaqus(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msh := mesh.NewMesh()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	const (
		blockNone = iota
		blockNode
		blockElement
		blockElset
	)
	var (
		block    = blockNone
		etype    utils.ElementType
		elset    string
		generate bool
		pending  *pendingElement
		lineNum  int
	)
	finishElement := func() error {
		eid, nodes := pending.entries[0], pending.entries[1:pending.need]
		pending = nil
		if err := msh.AddElement(eid, etype, utils.ToHost(etype, nodes)); err != nil {
			return err
		}
		if elset != "" {
			msh.AddElementGroup(elset, eid)
		}
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "**") {
			continue
		}
		if strings.HasPrefix(line, "*") {
			if pending != nil {
				return nil, fmt.Errorf("line %d: element %d is incomplete", lineNum, pending.entries[0])
			}
			keyword, params := keywordParams(line)
			block = blockNone
			switch keyword {
			case "*NODE":
				block = blockNode
			case "*ELEMENT":
				if etype, err = utils.ParseAbaqusType(strings.ToUpper(params["TYPE"])); err != nil {
					return nil, fmt.Errorf("line %d: %v", lineNum, err)
				}
				elset = params["ELSET"]
				block = blockElement
			case "*ELSET":
				elset = params["ELSET"]
				_, generate = params["GENERATE"]
				if elset == "" {
					return nil, fmt.Errorf("line %d: *ELSET without ELSET name", lineNum)
				}
				block = blockElset
			}
			continue
		}

		fields := splitFields(line)
		switch block {
		case blockNode:
			id, x, err := parseCoords(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			if err = msh.AddNode(id, r3.Vec{X: x[0], Y: x[1], Z: x[2]}); err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
		case blockElement:
			vals, err := parseInts(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			if pending == nil {
				pending = &pendingElement{need: etype.GetNumNodes() + 1}
			}
			if pending.add(vals) {
				if err = finishElement(); err != nil {
					return nil, fmt.Errorf("line %d: %v", lineNum, err)
				}
			}
		case blockElset:
			if err = addElsetLine(msh, elset, fields, generate); err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, fmt.Errorf("unexpected EOF reading element %d", pending.entries[0])
	}
	return msh, nil
}

func addElsetLine(msh *mesh.Mesh, elset string, fields []string, generate bool) error {
	if generate {
		vals, err := parseInts(fields)
		if err != nil {
			return err
		}
		if len(vals) < 2 {
			return fmt.Errorf("GENERATE needs start and end ids")
		}
		step := 1
		if len(vals) > 2 && vals[2] > 0 {
			step = vals[2]
		}
		for id := vals[0]; id <= vals[1]; id += step {
			msh.AddElementGroup(elset, id)
		}
		return nil
	}
	for _, f := range fields {
		if id, err := strconv.Atoi(f); err == nil {
			msh.AddElementGroup(elset, id)
			continue
		}
		// Nested set reference
		g, ok := msh.ElementGroups[f]
		if !ok {
			return fmt.Errorf("unknown element set %s in %s", f, elset)
		}
		msh.AddElementGroup(elset, g.Elements...)
	}
	return nil
}
