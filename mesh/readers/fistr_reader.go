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

// ReadFrontISTR reads nodes, elements and element groups of a FrontISTR native .msh file.
// Reading of the model definition stops at the first !SECTION, material and boundary
// definitions are not read.
func ReadFrontISTR(filename string) (*mesh.Mesh, error) {
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
		blockEgroup
	)
	var (
		block   = blockNone
		etype   utils.ElementType
		egrp    string
		pending *pendingElement
		lineNum int
		seg3    bool
	)

	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!!") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			if pending != nil {
				return nil, fmt.Errorf("line %d: element %d is incomplete", lineNum, pending.entries[0])
			}
			keyword, params := keywordParams(line)
			block = blockNone
			switch keyword {
			case "!NODE":
				block = blockNode
			case "!ELEMENT":
				code, err := strconv.Atoi(params["TYPE"])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid element type %q", lineNum, params["TYPE"])
				}
				if etype, err = utils.ParseFistrType(code); err != nil {
					return nil, fmt.Errorf("line %d: %v", lineNum, err)
				}
				if etype == utils.Line3 {
					seg3 = true
				}
				egrp = params["EGRP"]
				block = blockElement
			case "!EGROUP":
				if egrp = params["EGRP"]; egrp == "" {
					return nil, fmt.Errorf("line %d: !EGROUP without EGRP name", lineNum)
				}
				block = blockEgroup
			case "!SECTION":
				if seg3 {
					msh.Warnings.Add("seg3 (3-node beam element type) is not supported by the solver input, read anyway")
				}
				return msh, nil
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
			if !pending.add(vals) {
				continue
			}
			eid, nodes := pending.entries[0], pending.entries[1:pending.need]
			pending = nil
			if err = msh.AddElement(eid, etype, utils.ToHost(etype, nodes)); err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			if egrp != "" {
				msh.AddElementGroup(egrp, eid)
			}
		case blockEgroup:
			ids, err := parseInts(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			msh.AddElementGroup(egrp, ids...)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, fmt.Errorf("unexpected EOF reading element %d", pending.entries[0])
	}
	if seg3 {
		msh.Warnings.Add("seg3 (3-node beam element type) is not supported by the solver input, read anyway")
	}
	return msh, nil
}
