package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/saibuild/project"
)

func newRunCmd(g *globals) *cobra.Command {
	var flags buildFlags

	// Load project and discover entrypoints at command creation time
	// for validation and help text
	entrypoints := discoverEntrypoints()
	entrypointMap := make(map[string]project.Entrypoint)
	var slugs []string
	for _, ep := range entrypoints {
		entrypointMap[ep.Slug] = ep
		slugs = append(slugs, ep.Slug)
	}
	sort.Strings(slugs)

	var entrypointsHelp string
	if len(slugs) > 0 {
		entrypointsHelp = fmt.Sprintf("\n\nAvailable entrypoints: %s\nDefault: cli (if available)", strings.Join(slugs, ", "))
	}

	cmd := &cobra.Command{
		Use:   "run [entrypoint] [args...]",
		Short: "Run the Java project",
		Long: `Run the Java project using java.

This command runs a class with a main method from the main module.
If no entrypoint is specified, it defaults to 'cli'.

Any additional arguments are passed to the Java program. The program's
output is shown as is; uncaught exceptions are reported as errors
pointing at the throwing frame.

The project must be compiled first with 'sai compile'.` + entrypointsHelp,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return slugs, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), g, &flags, args, entrypointMap, slugs)
		},
	}

	flags.register(cmd)
	cmd.Flags().SetInterspersed(false) // Stop parsing flags after entrypoint

	return cmd
}

// discoverEntrypoints loads the project and finds all classes with main methods.
func discoverEntrypoints() []project.Entrypoint {
	proj, err := project.Load()
	if err != nil {
		return nil
	}

	mainMod := proj.Module("main")
	if mainMod == nil {
		return nil
	}

	entrypoints, err := mainMod.FindEntrypoints()
	if err != nil {
		return nil
	}

	return entrypoints
}

// selectEntrypoint splits args into the entrypoint to run and the
// arguments for the program.
func selectEntrypoint(args []string, entrypointMap map[string]project.Entrypoint, validSlugs []string) (project.Entrypoint, []string, error) {
	slug := "cli"
	var programArgs []string
	if len(args) > 0 {
		if _, ok := entrypointMap[args[0]]; !ok {
			if len(validSlugs) == 0 {
				return project.Entrypoint{}, nil, fmt.Errorf("unknown entrypoint %q (no entrypoints discovered in project)", args[0])
			}
			return project.Entrypoint{}, nil, fmt.Errorf("unknown entrypoint %q\n\nAvailable entrypoints: %s", args[0], strings.Join(validSlugs, ", "))
		}
		slug = args[0]
		programArgs = args[1:]
	}

	ep, ok := entrypointMap[slug]
	if !ok {
		if len(validSlugs) == 0 {
			return project.Entrypoint{}, nil, fmt.Errorf("no entrypoints discovered in project (ensure main module has classes with main methods)")
		}
		return project.Entrypoint{}, nil, fmt.Errorf("entrypoint %q not found\n\nAvailable entrypoints: %s", slug, strings.Join(validSlugs, ", "))
	}
	return ep, programArgs, nil
}

func runRun(ctx context.Context, g *globals, flags *buildFlags, args []string, entrypointMap map[string]project.Entrypoint, validSlugs []string) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}

	mainMod := proj.Module("main")
	if mainMod == nil {
		return fmt.Errorf("no main module found in project %s", proj.ID)
	}

	ep, programArgs, err := selectEntrypoint(args, entrypointMap, validSlugs)
	if err != nil {
		return err
	}

	// Program output goes to stdout unchanged, so only diagnostics are
	// printed through the listener, on stderr.
	r := flags.runner(g, proj)
	r.Output = os.Stdout
	r.Stdin = os.Stdin
	out := newRunOutput(flags.format, flags.showDetail)
	return out.finish(r.Run(ctx, out.listener, mainMod, ep, programArgs))
}
