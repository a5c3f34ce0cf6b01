package avsucd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ErrNoResults is returned when a working directory holds no result file
var ErrNoResults = errors.New("no results found")

// Marker of the surface visualization files in the solver output names
const visMarker = "_vis_psf."

// FindResultFiles lists the surface visualization files in dir in step order, the last one
// being the final step. Without any, <base>.avs is used when present.
func FindResultFiles(dir, base string) (files []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %v", ErrNoResults, dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), visMarker) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) != 0 {
		sort.Strings(files)
		return files, nil
	}
	if base != "" {
		avs := filepath.Join(dir, base+".avs")
		if fi, err := os.Stat(avs); err == nil && !fi.IsDir() {
			return []string{avs}, nil
		}
	}
	return nil, fmt.Errorf("%w at %s", ErrNoResults, dir)
}

// LatestResultFile returns the final step file of FindResultFiles
func LatestResultFile(dir, base string) (string, error) {
	files, err := FindResultFiles(dir, base)
	if err != nil {
		return "", err
	}
	return files[len(files)-1], nil
}

// stepNumber parses the step out of names like job_vis_psf.0012.inp
func stepNumber(path string) (step int, ok bool) {
	name := filepath.Base(path)
	i := strings.Index(name, visMarker)
	if i < 0 {
		return 0, false
	}
	digits := name[i+len(visMarker):]
	if j := strings.IndexByte(digits, '.'); j >= 0 {
		digits = digits[:j]
	}
	step, err := strconv.Atoi(digits)
	return step, err == nil
}

// ReadFiles reads several step files of one job into one result, one set per file. The
// surface mesh comes from the first file, the others must carry the same surface.
func ReadFiles(paths []string, opts ReadOptions) (res *Result, err error) {
	if len(paths) == 0 {
		return nil, ErrNoResults
	}
	for i, path := range paths {
		var r *Result
		if r, err = ReadFile(path, opts); err != nil {
			return nil, err
		}
		sets := r.Sets
		if i == 0 {
			res = r
			res.Sets = nil
		} else {
			if !sameSurface(res, r) {
				return nil, fmt.Errorf("%s: surface differs from %s", path, res.Path)
			}
			res.Warnings = append(res.Warnings, r.Warnings...)
		}
		step, ok := stepNumber(path)
		if !ok {
			res.Warnings.Add("%s: no step number in file name", path)
		}
		for _, set := range sets {
			if ok {
				if opts.Eigen {
					set.Number = float64(step)
				} else if opts.TimeIncrement > 0 {
					set.Time = float64(step) * opts.TimeIncrement
				} else {
					set.Time = float64(step)
				}
			}
			res.Sets = append(res.Sets, set)
		}
	}
	return res, nil
}

// sameSurface compares the original node ids and the compact connectivity of two surfaces
func sameSurface(a, b *Result) bool {
	if !slices.Equal(a.Renumbering.Original, b.Renumbering.Original) ||
		!slices.Equal(a.Mesh.ElementIDs, b.Mesh.ElementIDs) {
		return false
	}
	for _, eid := range a.Mesh.ElementIDs {
		ea, eb := a.Mesh.Elements[eid], b.Mesh.Elements[eid]
		if ea.Type != eb.Type || !slices.Equal(ea.Nodes, eb.Nodes) {
			return false
		}
	}
	return true
}
