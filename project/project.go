package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// TestModuleName is the module holding JUnit tests. It is compiled and run
// by the test phase only.
const TestModuleName = "test"

// Project represents a Java project with multiple modules.
type Project struct {
	ID      string
	RootDir string
	SrcDir  string
	OutDir  string
	LibDir  string
	Modules []*Module
}

// Module represents a single Java module within a project.
type Module struct {
	Name         string
	SrcDir       string
	OutDir       string
	ModuleInfo   string
	Project      *Project
	Dependencies []string // module names this module requires
}

// Load scans the current directory for a Java project structure.
// It looks for src/<project>/<module>/module-info.java patterns.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom scans the given directory for a Java project structure.
func LoadFrom(rootDir string) (*Project, error) {
	srcDir := filepath.Join(rootDir, "src")
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read src directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		modules, err := scanModules(filepath.Join(srcDir, entry.Name()))
		if err != nil || len(modules) == 0 {
			continue
		}

		proj := &Project{
			ID:      entry.Name(),
			RootDir: rootDir,
			SrcDir:  srcDir,
			OutDir:  filepath.Join(rootDir, "out"),
			LibDir:  filepath.Join(rootDir, "lib"),
			Modules: modules,
		}

		for _, m := range proj.Modules {
			m.Project = proj
			m.OutDir = filepath.Join(proj.OutDir, proj.ID+"."+m.Name)

			// Non-fatal: a module whose descriptor cannot be read simply
			// has no known dependencies.
			if deps, err := readDependencies(m.ModuleInfo, proj.ID); err == nil {
				m.Dependencies = deps
			}
		}

		return proj, nil
	}

	return nil, fmt.Errorf("could not detect project: no src/<project>/<module>/module-info.java structure found")
}

func scanModules(projectDir string) ([]*Module, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, err
	}

	var modules []*Module
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		moduleDir := filepath.Join(projectDir, entry.Name())
		moduleInfo := filepath.Join(moduleDir, "module-info.java")
		if _, err := os.Stat(moduleInfo); err != nil {
			continue
		}

		modules = append(modules, &Module{
			Name:       entry.Name(),
			SrcDir:     moduleDir,
			ModuleInfo: moduleInfo,
		})
	}

	return modules, nil
}

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	requiresRe     = regexp.MustCompile(`\brequires\s+(?:(?:transitive|static)\s+)*([\w.]+)\s*;`)
)

// readDependencies extracts the project-internal modules required by a
// module-info.java file, as short names ("demo.core" -> "core").
func readDependencies(moduleInfoPath string, projectID string) ([]string, error) {
	data, err := os.ReadFile(moduleInfoPath)
	if err != nil {
		return nil, err
	}

	src := stripComments(string(data))
	if !strings.Contains(src, "module") {
		return nil, fmt.Errorf("no module declaration in %s", moduleInfoPath)
	}

	prefix := projectID + "."
	var deps []string
	for _, m := range requiresRe.FindAllStringSubmatch(src, -1) {
		if name, ok := strings.CutPrefix(m[1], prefix); ok {
			deps = append(deps, name)
		}
	}
	return deps, nil
}

func stripComments(src string) string {
	src = blockCommentRe.ReplaceAllString(src, "")
	return lineCommentRe.ReplaceAllString(src, "")
}

// Module returns the module with the given name, or nil if not found.
func (p *Project) Module(name string) *Module {
	for _, m := range p.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ModulesInOrder returns modules sorted in dependency order (dependencies first).
// If the dependencies form a cycle, the discovery order is returned.
func (p *Project) ModulesInOrder() []*Module {
	inDegree := make(map[string]int)
	for _, m := range p.Modules {
		inDegree[m.Name] = 0
	}
	for _, m := range p.Modules {
		for _, dep := range m.Dependencies {
			if _, ok := inDegree[dep]; ok {
				inDegree[m.Name]++
			}
		}
	}

	// Kahn's algorithm
	var queue []string
	for _, m := range p.Modules {
		if inDegree[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}

	var result []*Module
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, p.Module(name))

		for _, m := range p.Modules {
			for _, dep := range m.Dependencies {
				if dep != name {
					continue
				}
				inDegree[m.Name]--
				if inDegree[m.Name] == 0 {
					queue = append(queue, m.Name)
				}
			}
		}
	}

	if len(result) != len(p.Modules) {
		return p.Modules
	}
	return result
}

// ModulePath returns the module path for java/javac commands.
// It includes the lib directory and optionally the out directory.
func (p *Project) ModulePath(includeOut bool) string {
	if includeOut {
		return p.LibDir + string(filepath.ListSeparator) + p.OutDir
	}
	return p.LibDir
}

// TestClassPath returns the class path JUnit runs the tests with.
func (p *Project) TestClassPath() string {
	parts := []string{}
	for _, m := range p.ModulesInOrder() {
		parts = append(parts, m.OutDir)
	}
	parts = append(parts, filepath.Join(p.LibDir, "*"))
	return strings.Join(parts, string(filepath.ListSeparator))
}

// FullName returns the fully qualified module name (e.g., "myproject.core").
func (m *Module) FullName() string {
	return m.Project.ID + "." + m.Name
}

// JavaFiles returns all .java files in this module, recursively.
// The module-info.java is always first if includeModuleInfo is true.
func (m *Module) JavaFiles(includeModuleInfo bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(m.SrcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".java") || path == m.ModuleInfo {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan java files in %s: %w", m.SrcDir, err)
	}

	if includeModuleInfo {
		files = append([]string{m.ModuleInfo}, files...)
	}
	return files, nil
}

// JavacArgs returns the javac arguments compiling this module into its
// output directory.
func (m *Module) JavacArgs() ([]string, error) {
	files, err := m.JavaFiles(true)
	if err != nil {
		return nil, err
	}
	args := []string{"-p", m.Project.ModulePath(true), "-d", m.OutDir}
	return append(args, files...), nil
}

// EnsureOutDir creates the output directory for this module if it doesn't exist.
func (m *Module) EnsureOutDir() error {
	if err := os.MkdirAll(m.OutDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", m.OutDir, err)
	}
	return nil
}

// Entrypoint represents a class with a main method that can be run.
type Entrypoint struct {
	ClassName string // Simple class name (e.g., "Cli", "DropZoneApp")
	FullName  string // Fully qualified name (e.g., "sai.main.Cli")
	Slug      string // Kebab-case name for CLI (e.g., "cli", "drop-zone-app")
}

var (
	packageRe    = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)
	classDeclRe  = regexp.MustCompile(`\b(?:class|record|enum)\s+([A-Z_$][\w$]*)`)
	mainMethodRe = regexp.MustCompile(`\bpublic\s+static\s+void\s+main\s*\(`)
)

// FindEntrypoints returns all classes in this module that have a main method.
func (m *Module) FindEntrypoints() ([]Entrypoint, error) {
	javaFiles, err := m.JavaFiles(false)
	if err != nil {
		return nil, err
	}

	var entrypoints []Entrypoint
	for _, file := range javaFiles {
		ep, ok, err := findEntrypointInFile(file)
		if err != nil {
			continue
		}
		if ok {
			entrypoints = append(entrypoints, ep)
		}
	}
	return entrypoints, nil
}

func findEntrypointInFile(path string) (Entrypoint, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entrypoint{}, false, err
	}
	src := stripComments(string(data))

	if !mainMethodRe.MatchString(src) {
		return Entrypoint{}, false, nil
	}
	class := classDeclRe.FindStringSubmatch(src)
	if class == nil {
		return Entrypoint{}, false, nil
	}

	fullName := class[1]
	if pkg := packageRe.FindStringSubmatch(src); pkg != nil {
		fullName = pkg[1] + "." + class[1]
	}

	return Entrypoint{
		ClassName: class[1],
		FullName:  fullName,
		Slug:      classNameToSlug(class[1]),
	}, true, nil
}

// classNameToSlug converts a PascalCase class name to kebab-case.
// e.g., "DropZoneApp" -> "drop-zone-app", "Cli" -> "cli"
func classNameToSlug(name string) string {
	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('-')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
