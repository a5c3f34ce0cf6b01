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

	"github.com/notargets/gofistr/mesh"
	"github.com/notargets/gofistr/mesh/readers"
	"github.com/notargets/gofistr/mesh/writers"
	"github.com/spf13/cobra"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Inspect or convert a mesh file",
	Long: `
Reads an ABAQUS (.inp) or FrontISTR (.msh) mesh and prints its statistics, optionally
writing it back out in ABAQUS format,

gofistr mesh -F part.msh -o part.inp`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var gridFile, outFile string
		if gridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			return
		}
		if len(gridFile) == 0 {
			return fmt.Errorf("must supply a mesh file (-F, --gridFile) in .inp or .msh format")
		}
		outFile, _ = cmd.Flags().GetString("output")
		highest, _ := cmd.Flags().GetBool("highestOnly")
		_, err = RunMesh(gridFile, outFile, highest)
		return
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().StringP("gridFile", "F", "", "mesh file to read, ABAQUS (.inp) or FrontISTR (.msh)")
	MeshCmd.Flags().StringP("output", "o", "", "write the mesh in ABAQUS format to this file")
	MeshCmd.Flags().Bool("highestOnly", false, "only write elements of the highest dimension")
}

func RunMesh(gridFile, outFile string, highestOnly bool) (m *mesh.Mesh, err error) {
	if m, err = readers.ReadMeshFile(gridFile); err != nil {
		return
	}
	m.PrintStatistics()
	for _, w := range m.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if outFile != "" {
		if err = writers.WriteAbaqusFile(outFile, m, highestOnly); err != nil {
			return
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	return
}
