package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/saibuild/build"
	"github.com/dhamidi/saibuild/project"
	"github.com/dhamidi/saibuild/report"
)

// buildFlags are shared by every command that spawns a tool.
type buildFlags struct {
	trace      bool
	format     report.Format
	showDetail bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.trace, "trace", "x", false, "print exact commands being executed")
	cmd.Flags().Var(&f.format, "format", "output format: text or json")
	cmd.Flags().BoolVar(&f.showDetail, "detail", true, "print source context lines below diagnostics")
}

func (f *buildFlags) runner(g *globals, proj *project.Project) *build.Runner {
	r := build.NewRunner(proj, g.cfg.BuildOutput)
	if f.trace {
		r.Trace = os.Stderr
	}
	return r
}

func newCompileCmd(g *globals) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the Java project",
		Long: `Compile the Java project using javac.

This command:
  - Creates output directories (out/<project>.<module>)
  - Compiles every module except test, dependencies first
  - Reports javac diagnostics as they are printed

The project identifier is detected from the src/ directory structure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), g, &flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runCompile(ctx context.Context, g *globals, flags *buildFlags) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}

	out := newOutput(flags.format, flags.showDetail)
	return out.finish(flags.runner(g, proj).Compile(ctx, out.listener))
}
