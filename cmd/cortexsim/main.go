// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cortexsim runs brain-network simulation scenarios described
// by a yaml file and writes monitor output streams as CSV.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cortexsim/cortexsim/coupling"
	"github.com/cortexsim/cortexsim/integrators"
	"github.com/cortexsim/cortexsim/models"
	"github.com/cortexsim/cortexsim/monitors"
	"github.com/emer/etable/v2/etable"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cortexsim",
		Short: "cortexsim - brain network simulator",
		Long: `cortexsim integrates networks of neural mass models over a weighted,
delayed connectome, with pluggable integration schemes and monitors.`,
	}
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newListCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available models, integration methods and coupling functions",
		Run: func(cmd *cobra.Command, args []string) {
			var mods, meths, funcs []string
			for _, mt := range models.KnownModels() {
				mods = append(mods, models.New(mt).Name())
			}
			for _, it := range integrators.KnownMethods() {
				in, _ := integrators.New(it, 0.125, noiseFor(it))
				meths = append(meths, in.Name())
			}
			for _, ft := range coupling.KnownFuncs() {
				funcs = append(funcs, coupling.New(ft).Name())
			}
			fmt.Println("models:     " + strings.Join(mods, ", "))
			fmt.Println("methods:    " + strings.Join(meths, ", "))
			fmt.Println("couplings:  " + strings.Join(funcs, ", "))
		},
	}
}

func newRunCmd() *cobra.Command {
	var scenarioFile, outDir string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if dbg, _ := cmd.Flags().GetBool("debug"); dbg {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			sc, err := LoadScenario(scenarioFile)
			if err != nil {
				return err
			}
			sim, err := sc.Build(log)
			if err != nil {
				return err
			}
			if err := sim.Configure(); err != nil {
				return err
			}

			streams := make([][]monitors.Sample, len(sim.Monitors))
			it := sim.Run(sc.Length)
			for it.Next() {
				for i, smp := range it.Values() {
					if smp != nil {
						streams[i] = append(streams[i], *smp)
					}
				}
			}
			if err := it.Err(); err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for i, mon := range sim.Monitors {
				name := fmt.Sprintf("%02d_%s", i, mon.Name())
				tbl := monitors.ToTable(name, streams[i])
				fnm := filepath.Join(outDir, name+".csv")
				fp, err := os.Create(fnm)
				if err != nil {
					return err
				}
				err = tbl.WriteCSV(fp, etable.Comma, etable.Headers)
				fp.Close()
				if err != nil {
					return err
				}
				log.Info("wrote monitor stream", "monitor", mon.Name(), "samples", len(streams[i]), "file", fnm)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenarioFile, "scenario", "c", "scenario.yaml", "Scenario yaml file")
	cmd.Flags().StringVarP(&outDir, "out", "o", "out", "Output directory for monitor CSVs")
	return cmd
}
