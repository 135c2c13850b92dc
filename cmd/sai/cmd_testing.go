package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dhamidi/saibuild/project"
)

func newTestCmd(g *globals) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "test [-- args...]",
		Short: "Run tests using JUnit",
		Long: `Run tests using JUnit Platform Console Standalone.

This command:
  - Compiles the project
  - Compiles the test module
  - Runs JUnit with the Jupiter engine and reports failures

Any arguments after -- are forwarded to the JUnit console runner.

Examples:
  sai test                           # Run all tests
  sai test -- --select-class=MyTest  # Run specific test class
  sai test --format json             # Report events as JSON lines`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd.Context(), g, &flags, args)
		},
	}

	flags.register(cmd)

	return cmd
}

func runTest(ctx context.Context, g *globals, flags *buildFlags, junitArgs []string) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}

	out := newOutput(flags.format, flags.showDetail)
	return out.finish(flags.runner(g, proj).Test(ctx, out.listener, junitArgs))
}
