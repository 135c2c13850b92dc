package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/saibuild/config"
	"github.com/dhamidi/saibuild/project"
)

func newProjectCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show project structure",
		Long: `Display the detected project structure including all modules in build
order, and the output parsers configured for each phase.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(g.cfg)
		},
	}

	return cmd
}

func runProject(cfg *config.Config) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}

	fmt.Printf("Project: %s\n", proj.ID)
	fmt.Printf("Root:    %s\n", proj.RootDir)
	fmt.Printf("Source:  %s\n", proj.SrcDir)
	fmt.Printf("Output:  %s\n", proj.OutDir)
	fmt.Printf("Libs:    %s\n", proj.LibDir)
	fmt.Printf("\nModules (build order):\n")

	for _, mod := range proj.ModulesInOrder() {
		fmt.Printf("  %s\n", mod.FullName())
		fmt.Printf("    src: %s\n", mod.SrcDir)
		fmt.Printf("    out: %s\n", mod.OutDir)
		if len(mod.Dependencies) > 0 {
			fmt.Printf("    requires: %s\n", strings.Join(mod.Dependencies, ", "))
		}

		files, err := mod.JavaFiles(true)
		if err != nil {
			fmt.Printf("    files: error: %v\n", err)
		} else {
			fmt.Printf("    files: %d java files\n", len(files))
		}
	}

	bo := cfg.BuildOutput
	fmt.Printf("\nBuild output (history %d lines, close timeout %s):\n", bo.HistorySize, bo.CloseTimeout)
	for _, phase := range []config.Phase{config.PhaseCompile, config.PhaseTest, config.PhaseRun} {
		fmt.Printf("  %-8s %s\n", phase, strings.Join(bo.Parsers[phase], ", "))
	}

	return nil
}
