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
	"github.com/notargets/gofistr/avsucd"
	"github.com/notargets/gofistr/results"
	"github.com/notargets/gofistr/types"
	"github.com/spf13/cobra"
)

type ReadJob struct {
	ResultFiles   []string
	WorkDir       string
	Base          string
	Analysis      analysis.AnalysisType
	TimeIncrement float64
	Reinforced    bool
	Latest        bool
	// DeckFile is the analysis deck of the job, its materials decide the reinforced channels
	DeckFile string
}

// ReadCmd represents the read command
var ReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read FrontISTR AVS UCD results",
	Long: `
Reads the surface of the solver's AVS UCD result files, renumbers it compactly and prints
the min/max of each result field,

gofistr read -w work -b box
gofistr read -r work/box_vis_psf.0001.inp
gofistr read -w work -I deck.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		rj := &ReadJob{}
		rj.ResultFiles, _ = cmd.Flags().GetStringSlice("resultFiles")
		rj.WorkDir, _ = cmd.Flags().GetString("workDir")
		rj.Base, _ = cmd.Flags().GetString("base")
		rj.TimeIncrement, _ = cmd.Flags().GetFloat64("timeIncrement")
		rj.Reinforced, _ = cmd.Flags().GetBool("reinforced")
		rj.Latest, _ = cmd.Flags().GetBool("latest")
		rj.DeckFile, _ = cmd.Flags().GetString("inputConditionsFile")
		at, _ := cmd.Flags().GetString("analysis")
		if at == "" {
			var sc analysis.SolverConfig
			if sc, err = solverDefaults(); err != nil {
				return
			}
			rj.Analysis = sc.AnalysisType
		} else {
			rj.Analysis = analysis.AnalysisType(at)
		}
		recs, warnings, err := RunRead(rj)
		if err != nil {
			return
		}
		printRecords(cmd.OutOrStdout(), recs, len(warnings))
		return nil
	},
}

// printRecords prints the statistics table of each record, warnings are logged where raised
func printRecords(out io.Writer, recs []results.Record, nWarnings int) {
	for _, rec := range recs {
		fmt.Fprintf(out, "%s: %d nodes\n", rec.Name, len(rec.NodeNumbers))
		for _, st := range rec.Stats {
			fmt.Fprintf(out, "  %s\n", st)
		}
	}
	if nWarnings != 0 {
		fmt.Fprintf(out, "%d warnings, see log\n", nWarnings)
	}
}

func init() {
	rootCmd.AddCommand(ReadCmd)
	ReadCmd.Flags().StringSliceP("resultFiles", "r", nil, "AVS UCD result files, in step order")
	ReadCmd.Flags().StringP("workDir", "w", ".", "solver working directory searched for result files")
	ReadCmd.Flags().StringP("base", "b", "", "job base name, <base>.avs is used when no step files exist")
	ReadCmd.Flags().StringP("analysis", "a", "", "analysis type naming the results, default from the solver config")
	ReadCmd.Flags().Float64("timeIncrement", 0, "time per step of an incremental analysis, 0 names results by step")
	ReadCmd.Flags().StringP("inputConditionsFile", "I", "", "analysis deck of the job, a reinforced material adds the reinforced channels")
	ReadCmd.Flags().Bool("reinforced", false, "add principal stress vectors and max shear, whatever the deck says")
	ReadCmd.Flags().BoolP("latest", "l", false, "only read the final step")
}

// RunRead locates and reads the result files and assembles the named records
func RunRead(rj *ReadJob) (recs []results.Record, warnings types.Warnings, err error) {
	var materials []analysis.Material
	if rj.DeckFile != "" {
		if materials, err = deckMaterials(rj.DeckFile); err != nil {
			return
		}
	}
	files := rj.ResultFiles
	if len(files) == 0 {
		if rj.Latest {
			var f string
			if f, err = avsucd.LatestResultFile(rj.WorkDir, rj.Base); err != nil {
				return
			}
			files = []string{f}
		} else if files, err = avsucd.FindResultFiles(rj.WorkDir, rj.Base); err != nil {
			return
		}
	}
	opts := avsucd.ReadOptions{
		Logger:        rc.logger,
		Metrics:       rc.metrics,
		Eigen:         rj.Analysis == analysis.Frequency || rj.Analysis == analysis.Eigen,
		TimeIncrement: rj.TimeIncrement,
	}
	var res *avsucd.Result
	if len(files) == 1 {
		res, err = avsucd.ReadFile(files[0], opts)
	} else {
		res, err = avsucd.ReadFiles(files, opts)
	}
	if err != nil {
		return
	}
	warnings = append(warnings, res.Warnings...)
	var more types.Warnings
	recs, more, err = results.Assemble(res, results.Options{
		Prefix:     fmt.Sprintf("FrontISTR_%s_", rj.Analysis),
		Reinforced: rj.Reinforced,
		Materials:  materials,
		Logger:     rc.logger,
		Metrics:    rc.metrics,
	})
	warnings = append(warnings, more...)
	return
}

// deckMaterials resolves the deck against its mesh for the material element sets
func deckMaterials(deckFile string) (materials []analysis.Material, err error) {
	var deck *InputParameters.Deck
	if deck, err = InputParameters.ReadDeck(deckFile); err != nil {
		return
	}
	var model *analysis.Model
	if model, err = deck.ToModel(filepath.Dir(deckFile), analysis.DefaultSolverConfig()); err != nil {
		return
	}
	return model.Materials, nil
}
