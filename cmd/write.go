/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/notargets/gofistr/InputParameters"
	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/writer"
	"github.com/spf13/cobra"
)

type WriteJob struct {
	DeckFile string
	OutDir   string
	Print    bool
}

// WriteCmd represents the write command
var WriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write FrontISTR input files from an analysis deck",
	Long: `
Reads the YAML analysis deck and its mesh and writes <name>.inp, <name>.cnt,
hecmw_ctrl.dat and hecmw_part_ctrl.dat into the output directory,

gofistr write -I deck.yaml -o work`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		wj := &WriteJob{}
		if wj.DeckFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		wj.OutDir, _ = cmd.Flags().GetString("outDir")
		wj.Print, _ = cmd.Flags().GetBool("print")
		if len(wj.DeckFile) == 0 {
			fmt.Printf("error: must supply an analysis deck (-I, --inputConditionsFile)\n")
			fmt.Printf("Example File:%s\n", exampleDeck)
			return fmt.Errorf("no analysis deck")
		}
		var base analysis.SolverConfig
		if base, err = solverDefaults(); err != nil {
			return
		}
		var job *writer.Job
		if job, err = RunWrite(wj, base); err != nil {
			return
		}
		printJob(cmd.OutOrStdout(), job)
		return nil
	},
}

// printJob summarizes a written job, the warnings themselves went out through the logger
func printJob(out io.Writer, job *writer.Job) {
	fmt.Fprintf(out, "Job %s\n", job.ID)
	for _, f := range []string{job.MeshFile, job.CntFile, job.DatFile, job.PartFile} {
		fmt.Fprintf(out, "  wrote %s\n", f)
	}
	if n := len(job.Warnings); n != 0 {
		fmt.Fprintf(out, "  %d warnings, see log\n", n)
	}
}

const exampleDeck = `
########################################
Title: "Cantilever"
Mesh: cantilever.inp
Solver:
  AnalysisType: static
  MatrixSolverType: CG
Materials:
  - Name: Steel
    Properties:
      YoungsModulus: 210000 MPa
      PoissonRatio: 0.3
Constraints:
  - Type: fixed
    Name: Root
    ElementGroups: [Root]
  - Type: force
    Name: Tip
    Force: 9000 N
    Direction: [0, 0, -1]
    Nodes: [12, 13]
########################################
`

func init() {
	rootCmd.AddCommand(WriteCmd)
	WriteCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML analysis deck naming the mesh, materials and constraints")
	WriteCmd.Flags().StringP("outDir", "o", "", "directory for the solver input, default is the deck's directory")
	WriteCmd.Flags().BoolP("print", "p", false, "print the parsed deck")
}

// RunWrite reads the deck, resolves it against its mesh and writes the solver input
func RunWrite(wj *WriteJob, base analysis.SolverConfig) (job *writer.Job, err error) {
	var deck *InputParameters.Deck
	if deck, err = InputParameters.ReadDeck(wj.DeckFile); err != nil {
		return
	}
	if wj.Print {
		deck.Print()
	}
	dir := filepath.Dir(wj.DeckFile)
	var model *analysis.Model
	if model, err = deck.ToModel(dir, base); err != nil {
		return
	}
	out := wj.OutDir
	if out == "" {
		out = dir
	}
	return writer.Write(out, model, writer.WithLogger(rc.logger), writer.WithMetrics(rc.metrics))
}
