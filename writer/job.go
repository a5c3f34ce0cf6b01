package writer

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/notargets/gofistr/avsucd"
	"github.com/notargets/gofistr/types"
)

const (
	DatFileName  = "hecmw_ctrl.dat"
	PartFileName = "hecmw_part_ctrl.dat"
)

// Job describes one written solver case, it replaces any process wide notion of the
// "last written input" and is what the result phase consumes
type Job struct {
	ID       uuid.UUID
	Dir      string
	Base     string
	MeshFile string
	CntFile  string
	DatFile  string
	PartFile string
	Warnings types.Warnings
}

func newJob(dir, base string) *Job {
	return &Job{
		ID:       uuid.New(),
		Dir:      dir,
		Base:     base,
		MeshFile: filepath.Join(dir, base+".inp"),
		CntFile:  filepath.Join(dir, base+".cnt"),
		DatFile:  filepath.Join(dir, DatFileName),
		PartFile: filepath.Join(dir, PartFileName),
	}
}

// ResultBase is the path prefix the solver writes its result files under
func (j *Job) ResultBase() string {
	return filepath.Join(j.Dir, j.Base)
}

// ResultFiles locates the visualisation output of the job, see avsucd.FindResultFiles
func (j *Job) ResultFiles() ([]string, error) {
	return avsucd.FindResultFiles(j.Dir, j.Base)
}
