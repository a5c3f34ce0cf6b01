package readers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/gofistr/mesh"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".msh":
		return ReadFrontISTR(filename)
	case ".inp":
		return ReadAbaqus(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// splitFields splits a comma separated data line, dropping empty trailing fields
func splitFields(line string) (fields []string) {
	for _, f := range strings.Split(line, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return
}

// keywordParams parses "KEY=VALUE" options of a keyword line such as "*Element, TYPE=C3D4"
func keywordParams(line string) (keyword string, params map[string]string) {
	parts := strings.Split(line, ",")
	keyword = strings.ToUpper(strings.TrimSpace(parts[0]))
	params = make(map[string]string)
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		if key == "" {
			continue
		}
		if len(kv) == 2 {
			params[key] = strings.TrimSpace(kv[1])
		} else {
			params[key] = ""
		}
	}
	return
}

func parseInts(fields []string) (vals []int, err error) {
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = strconv.Atoi(f); err != nil {
			return nil, fmt.Errorf("invalid integer %q: %v", f, err)
		}
	}
	return
}

func parseCoords(fields []string) (id int, x [3]float64, err error) {
	if len(fields) < 3 {
		return 0, x, fmt.Errorf("invalid node line: expected id and at least 2 coordinates")
	}
	if id, err = strconv.Atoi(fields[0]); err != nil {
		return 0, x, fmt.Errorf("invalid node id: %v", err)
	}
	for j := 1; j < len(fields) && j <= 3; j++ {
		if x[j-1], err = strconv.ParseFloat(fields[j], 64); err != nil {
			return 0, x, fmt.Errorf("invalid coordinate: %v", err)
		}
	}
	return
}

// pendingElement accumulates an element record that may continue over several lines
type pendingElement struct {
	entries []int
	need    int
}

func (p *pendingElement) add(vals []int) (done bool) {
	p.entries = append(p.entries, vals...)
	return len(p.entries) >= p.need
}
