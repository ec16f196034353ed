// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// goflame solves 1D reacting-flow cases defined in YAML files.
package main

import (
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"

	"github.com/gpavanb/goflame/inp"
)

var (
	refine   bool
	verbose  bool
	saveFile string
)

func main() {
	root := &cobra.Command{
		Use:   "goflame",
		Short: "steady 1D reacting-flow solver",
	}

	runCmd := &cobra.Command{
		Use:   "run case.yaml",
		Short: "solve one flame case",
		Args:  cobra.ExactArgs(1),
		RunE:  runCase,
	}
	runCmd.Flags().BoolVar(&refine, "refine", false, "refine the grid until the criteria are met")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "log solver progress")
	runCmd.Flags().StringVar(&saveFile, "save", "", "write the converged solution snapshot to this file")

	checkCmd := &cobra.Command{
		Use:   "check case.yaml",
		Short: "validate a case file without solving",
		Args:  cobra.ExactArgs(1),
		RunE:  checkCase,
	}

	root.AddCommand(runCmd, checkCmd)
	if err := root.Execute(); err != nil {
		io.Pforan("error: %v\n", err)
		os.Exit(1)
	}
}

func runCase(cmd *cobra.Command, args []string) (err error) {
	cfg, err := inp.Load(args[0])
	if err != nil {
		return
	}
	c, err := cfg.Build()
	if err != nil {
		return
	}
	c.Sim.Verbose = verbose
	c.Sim.Sys.Verbose = verbose

	io.Pf("case: %s (%s, %d points)\n", cfg.Title, cfg.FlowType, cfg.Grid.Points)
	if err = c.Sim.Solve(refine); err != nil {
		return
	}
	printProfiles(c)

	if saveFile != "" {
		if err = c.Sim.Save(saveFile, cfg.Title, "converged solution"); err != nil {
			return
		}
		io.Pf("snapshot written to %s\n", saveFile)
	}
	return
}

func checkCase(cmd *cobra.Command, args []string) (err error) {
	cfg, err := inp.Load(args[0])
	if err != nil {
		return
	}
	if _, err = cfg.Build(); err != nil {
		return
	}
	io.Pf("case %q is valid: %s flow, %d species, %d points\n",
		cfg.Title, cfg.FlowType, len(cfg.Gas.Species), cfg.Grid.Points)
	return
}

// printProfiles writes the converged solution of the flow domain as aligned
// columns, one grid point per line
func printProfiles(c *inp.Case) {
	f := c.Flow
	lay := f.Layout()
	header := io.Sf("%14s", "z")
	for n := 0; n < lay.NComp(); n++ {
		header += io.Sf("%14s", lay.Name(n))
	}
	io.Pf("%s\n", header)
	g := f.Grid()
	for j := 0; j < g.N(); j++ {
		line := io.Sf("%14.6e", g.Z[j])
		for n := 0; n < lay.NComp(); n++ {
			line += io.Sf("%14.6e", c.Sim.X[f.Index(n, j)])
		}
		io.Pf("%s\n", line)
	}
}
