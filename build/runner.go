// Package build runs javac, java and JUnit for a project and turns their
// output into build events.
package build

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/saibuild/buildoutput"
	"github.com/dhamidi/saibuild/config"
	"github.com/dhamidi/saibuild/project"
)

var log = commonlog.GetLogger("sai.build")

// Runner spawns the tools for one project. Each spawned process gets its
// own buildoutput.Reader, fed by both stdout and stderr.
type Runner struct {
	Project *project.Project
	Config  config.BuildOutputConfig

	// Trace, if set, receives every command line before it runs.
	Trace io.Writer

	// Output, if set, receives the raw output of programs started by Run.
	Output io.Writer
	Stdin  io.Reader

	// Command creates the process. It defaults to exec.CommandContext.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewRunner creates a Runner for proj using cfg.
func NewRunner(proj *project.Project, cfg config.BuildOutputConfig) *Runner {
	return &Runner{Project: proj, Config: cfg}
}

func (r *Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	if r.Command != nil {
		return r.Command(ctx, name, args...)
	}
	return exec.CommandContext(ctx, name, args...)
}

// spawn runs one process, dispatching its output through a fresh Reader.
// tee, if non-nil, additionally receives the raw output.
func (r *Runner) spawn(ctx context.Context, runID string, phase config.Phase, listener buildoutput.Listener, tee io.Writer, name string, args []string) error {
	parsers, err := r.Config.ParsersFor(phase)
	if err != nil {
		return fmt.Errorf("%s: %w", runID, err)
	}

	opts := append(r.Config.Options(), buildoutput.WithContext(ctx))
	reader := buildoutput.New(runID, listener, parsers, opts...)

	if r.Trace != nil {
		fmt.Fprintf(r.Trace, "+ %s %s\n", name, formatArgs(args))
	}
	log.Info("spawning", "run", runID, "command", name, "args", len(args))

	var out io.Writer = reader
	if tee != nil {
		out = io.MultiWriter(tee, reader)
	}
	cmd := r.command(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if phase == config.PhaseRun {
		cmd.Stdin = r.Stdin
	}

	runErr := cmd.Run()
	reader.Close()
	if runErr != nil {
		return fmt.Errorf("%s: %w", runID, runErr)
	}
	log.Debug("finished", "run", runID)
	return nil
}

// formatArgs quotes arguments containing spaces for display.
func formatArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			quoted[i] = fmt.Sprintf("%q", a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}

// Compile compiles every module except the test module, dependencies first.
func (r *Runner) Compile(ctx context.Context, listener buildoutput.Listener) error {
	for _, m := range r.Project.ModulesInOrder() {
		if m.Name == project.TestModuleName {
			continue
		}
		if err := r.CompileModule(ctx, m, listener); err != nil {
			return err
		}
	}
	return nil
}

// CompileModule compiles a single module with javac.
func (r *Runner) CompileModule(ctx context.Context, m *project.Module, listener buildoutput.Listener) error {
	if err := m.EnsureOutDir(); err != nil {
		return err
	}
	args, err := m.JavacArgs()
	if err != nil {
		return err
	}
	return r.spawn(ctx, m.FullName()+":compile", config.PhaseCompile, listener, nil, "javac", args)
}

// Test compiles the project and its test module, then runs JUnit.
// junitArgs are passed on to the console launcher.
func (r *Runner) Test(ctx context.Context, listener buildoutput.Listener, junitArgs []string) error {
	testMod := r.Project.Module(project.TestModuleName)
	if testMod == nil {
		return fmt.Errorf("no test module found at %s", filepath.Join(r.Project.SrcDir, r.Project.ID, project.TestModuleName))
	}

	if err := r.Compile(ctx, listener); err != nil {
		return err
	}
	if err := r.CompileModule(ctx, testMod, listener); err != nil {
		return err
	}

	junitJar, err := findJUnitConsoleLauncher(r.Project.LibDir)
	if err != nil {
		return err
	}

	args := []string{
		"-jar", junitJar,
		"execute",
		"--disable-banner",
		"-cp", r.Project.TestClassPath(),
		"--scan-classpath",
		"-e", "junit-jupiter",
	}
	args = append(args, junitArgs...)
	return r.spawn(ctx, r.Project.ID+":test", config.PhaseTest, listener, nil, "java", args)
}

// Run starts the main class of ep from module m. The program's own output
// is copied to r.Output as it arrives.
func (r *Runner) Run(ctx context.Context, listener buildoutput.Listener, m *project.Module, ep project.Entrypoint, programArgs []string) error {
	args := []string{
		"--enable-preview",
		"-p", r.Project.ModulePath(true),
		"-m", m.FullName() + "/" + ep.FullName,
	}
	args = append(args, programArgs...)
	return r.spawn(ctx, r.Project.ID+":run:"+ep.Slug, config.PhaseRun, listener, r.Output, "java", args)
}

func findJUnitConsoleLauncher(libDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(libDir, "junit-platform-console-standalone-*.jar"))
	if err != nil {
		return "", fmt.Errorf("search for junit console launcher: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("junit-platform-console-standalone not found in %s", libDir)
	}
	return matches[0], nil
}
