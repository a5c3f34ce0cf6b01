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
	"os"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/notargets/gofistr/InputParameters"
	"github.com/notargets/gofistr/analysis"
	"github.com/notargets/gofistr/logging"
	"github.com/notargets/gofistr/metrics"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gofistr",
	Short: "FrontISTR input writer and result reader",
	Long: `
Translates an analysis deck (YAML plus a mesh file) into FrontISTR input files and reads
the solver's AVS UCD results back as surface meshes with result fields.

gofistr write -I deck.yaml -o work
gofistr read -w work -b box`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return rc.start()
	},
}

// runContext carries what every subcommand shares: logger, metrics and the profiler
type runContext struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	prof    interface{ Stop() }
}

var rc = &runContext{}

func (r *runContext) start() (err error) {
	if r.logger, err = logging.NewLogger(logging.Config{
		Level:       viper.GetString("log.level"),
		Format:      viper.GetString("log.format"),
		OutputPath:  viper.GetString("log.output"),
		Development: viper.GetBool("log.development"),
	}); err != nil {
		return err
	}
	if viper.GetString("metrics.file") != "" {
		r.metrics = metrics.New()
	}
	if dir := viper.GetString("profile"); dir != "" {
		r.prof = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook)
	}
	return nil
}

func (r *runContext) stop() {
	if r.prof != nil {
		r.prof.Stop()
	}
	if path := viper.GetString("metrics.file"); path != "" {
		if err := r.metrics.WriteFile(path); err != nil {
			fmt.Printf("error: writing metrics: %s\n", err.Error())
		}
	}
	if r.logger != nil {
		_ = r.logger.Sync()
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	rc.stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setupEnv()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gofistr.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().String("profile", "", "write a CPU profile into this directory")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics of the run to this file")
	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"log.format":   "log-format",
		"profile":      "profile",
		"metrics.file": "metrics-file",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// setupEnv maps keys like solver.nprocess to GOFISTR_SOLVER_NPROCESS
func setupEnv() {
	viper.SetEnvPrefix("gofistr")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".gofistr" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gofistr")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// solverKeys lists the SolverConfig field names as they appear in YAML
func solverKeys() (keys []string, err error) {
	var (
		data []byte
		m    map[string]interface{}
	)
	if data, err = yaml.Marshal(analysis.DefaultSolverConfig()); err != nil {
		return
	}
	if err = yaml.Unmarshal(data, &m); err != nil {
		return
	}
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

// solverDefaults overlays the solver section of the config file and the environment on
// the built in defaults, decks override the result per analysis
func solverDefaults() (sc analysis.SolverConfig, err error) {
	var keys []string
	if keys, err = solverKeys(); err != nil {
		return
	}
	overrides := make(map[string]interface{})
	for _, k := range keys {
		key := "solver." + strings.ToLower(k)
		if !viper.IsSet(key) {
			continue
		}
		v := viper.Get(key)
		// Environment values arrive as text
		if s, ok := v.(string); ok {
			var typed interface{}
			if yaml.Unmarshal([]byte(s), &typed) == nil && typed != nil {
				v = typed
			}
		}
		overrides[k] = v
	}
	d := &InputParameters.Deck{Solver: overrides}
	return d.SolverConfig(analysis.DefaultSolverConfig())
}
