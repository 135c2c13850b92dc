package build

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dhamidi/saibuild/buildoutput"
	"github.com/dhamidi/saibuild/config"
	"github.com/dhamidi/saibuild/project"
)

type collector struct {
	mu     sync.Mutex
	events []buildoutput.Event
}

func (c *collector) OnEvent(e buildoutput.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) byKind(k buildoutput.Kind) []buildoutput.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []buildoutput.Event
	for _, e := range c.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// invocation records a command the runner asked for.
type invocation struct {
	name string
	args []string
}

// fakeCommands answers every command with a shell script chosen by the
// tool name, and records the invocations.
type fakeCommands struct {
	mu      sync.Mutex
	scripts map[string]string
	calls   []invocation
}

func (f *fakeCommands) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	f.mu.Lock()
	f.calls = append(f.calls, invocation{name: name, args: args})
	script, ok := f.scripts[name]
	f.mu.Unlock()
	if !ok {
		script = "exit 0"
	}
	return exec.CommandContext(ctx, "sh", "-c", script)
}

func newTestProject(t *testing.T, withTests bool) *project.Project {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/demo/core/module-info.java":       "module demo.core { exports demo.core; }\n",
		"src/demo/core/demo/core/Greeter.java": "package demo.core;\npublic class Greeter {}\n",
		"src/demo/main/module-info.java":       "module demo.main { requires demo.core; }\n",
		"src/demo/main/demo/main/Cli.java":     "package demo.main;\npublic class Cli { public static void main(String[] a) {} }\n",
	}
	files["lib/junit-platform-console-standalone-1.13.0.jar"] = ""
	if withTests {
		files["src/demo/test/module-info.java"] = "open module demo.test { requires demo.core; }\n"
		files["src/demo/test/demo/test/GreeterTest.java"] = "package demo.test;\nclass GreeterTest {}\n"
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	proj, err := project.LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	return proj
}

func newTestRunner(t *testing.T, proj *project.Project, scripts map[string]string) (*Runner, *fakeCommands) {
	t.Helper()
	fake := &fakeCommands{scripts: scripts}
	r := NewRunner(proj, config.Default().BuildOutput)
	r.Command = fake.command
	return r, fake
}

func TestCompile_ordersModulesAndSucceeds(t *testing.T) {
	proj := newTestProject(t, true)
	r, fake := newTestRunner(t, proj, nil)
	var trace bytes.Buffer
	r.Trace = &trace

	if err := r.Compile(context.Background(), &collector{}); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("got %d javac calls, want 2 (test module skipped)", len(fake.calls))
	}
	if out := fake.calls[0].args[3]; out != proj.Module("core").OutDir {
		t.Errorf("first compiled module output = %q, want core", out)
	}
	if _, err := os.Stat(proj.Module("main").OutDir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
	if !strings.HasPrefix(trace.String(), "+ javac -p ") {
		t.Errorf("trace = %q", trace.String())
	}
}

func TestCompile_reportsDiagnostics(t *testing.T) {
	proj := newTestProject(t, false)
	script := `printf 'src/demo/core/demo/core/Greeter.java:2: error: ; expected\n' >&2
printf 'public class Greeter {}\n' >&2
printf '                      ^\n' >&2
printf '1 error\n' >&2
exit 1`
	r, fake := newTestRunner(t, proj, map[string]string{"javac": script})

	events := &collector{}
	err := r.Compile(context.Background(), events)
	if err == nil {
		t.Fatal("Compile() should fail when javac fails")
	}
	if !strings.Contains(err.Error(), "demo.core:compile") {
		t.Errorf("error %q should name the failing run", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("compilation should stop at the first failing module, got %d calls", len(fake.calls))
	}

	errs := events.byKind(buildoutput.KindError)
	if len(errs) != 1 {
		t.Fatalf("got %d error events, want 1: %+v", len(errs), events.events)
	}
	if got := errs[0]; got.Line != 2 || got.Column != 23 || got.Message != "; expected" {
		t.Errorf("error event = %+v", got)
	}
}

func TestTest(t *testing.T) {
	proj := newTestProject(t, true)
	junit := `printf 'Test run finished after 12 ms\n'
printf '[         1 tests found           ]\n'
printf '[         0 tests failed          ]\n'`
	r, fake := newTestRunner(t, proj, map[string]string{"java": junit})

	events := &collector{}
	if err := r.Test(context.Background(), events, []string{"--fail-if-no-tests"}); err != nil {
		t.Fatalf("Test() error = %v", err)
	}

	if len(fake.calls) != 4 {
		t.Fatalf("got %d calls, want 3 javac and 1 java", len(fake.calls))
	}
	last := fake.calls[3]
	if last.name != "java" || last.args[len(last.args)-1] != "--fail-if-no-tests" {
		t.Errorf("junit invocation = %+v", last)
	}

	infos := events.byKind(buildoutput.KindInfo)
	if len(infos) != 1 || infos[0].Message != "1 tests, 0 failed" {
		t.Errorf("info events = %+v", infos)
	}
}

func TestTest_withoutTestModule(t *testing.T) {
	proj := newTestProject(t, false)
	r, fake := newTestRunner(t, proj, nil)

	if err := r.Test(context.Background(), &collector{}, nil); err == nil {
		t.Error("Test() without a test module should fail")
	}
	if len(fake.calls) != 0 {
		t.Errorf("nothing should run without a test module, got %d calls", len(fake.calls))
	}
}

func TestRun_teesOutput(t *testing.T) {
	proj := newTestProject(t, false)
	script := `printf 'hello\n'
printf 'Exception in thread "main" java.lang.IllegalStateException: boom\n' >&2
printf '\tat demo.main/demo.main.Cli.main(Cli.java:1)\n' >&2
exit 1`
	r, fake := newTestRunner(t, proj, map[string]string{"java": script})
	var output bytes.Buffer
	r.Output = &output

	mainMod := proj.Module("main")
	ep := project.Entrypoint{ClassName: "Cli", FullName: "demo.main.Cli", Slug: "cli"}

	events := &collector{}
	if err := r.Run(context.Background(), events, mainMod, ep, []string{"--name", "x"}); err == nil {
		t.Error("Run() should report the failing exit status")
	}

	if !strings.Contains(output.String(), "hello\n") {
		t.Errorf("program output not copied: %q", output.String())
	}
	args := fake.calls[0].args
	if got := strings.Join(args[len(args)-4:], " "); got != "-m demo.main/demo.main.Cli --name x" {
		t.Errorf("java args end with %q", got)
	}

	errs := events.byKind(buildoutput.KindError)
	if len(errs) != 1 || errs[0].File != "Cli.java" || errs[0].Line != 1 {
		t.Errorf("error events = %+v", errs)
	}
}
