package lsp

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/saibuild/buildoutput"
)

// Diagnostics collects error and warning events per file. Events without a
// file are not attached to any document and are dropped.
type Diagnostics struct {
	root string

	mu     sync.Mutex
	byPath map[string][]protocol.Diagnostic
}

// NewDiagnostics creates a collector resolving relative file names against
// root.
func NewDiagnostics(root string) *Diagnostics {
	return &Diagnostics{root: root, byPath: make(map[string][]protocol.Diagnostic)}
}

func (d *Diagnostics) OnEvent(e buildoutput.Event) {
	if e.File == "" || (e.Kind != buildoutput.KindError && e.Kind != buildoutput.KindWarning) {
		return
	}
	path := e.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.root, path)
	}
	path = filepath.Clean(path)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.byPath[path] = append(d.byPath[path], toDiagnostic(e))
}

// Paths returns the files with at least one diagnostic, sorted.
func (d *Diagnostics) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := make([]string, 0, len(d.byPath))
	for p := range d.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// For returns the diagnostics of path. The result is never nil, so it
// encodes as an empty array when publishing a cleared file.
func (d *Diagnostics) For(path string) []protocol.Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ds := d.byPath[path]; ds != nil {
		return ds
	}
	return []protocol.Diagnostic{}
}

func toDiagnostic(e buildoutput.Event) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	if e.Kind == buildoutput.KindWarning {
		severity = protocol.DiagnosticSeverityWarning
	}

	// Events are 1-based; LSP positions are 0-based. An unknown column
	// marks the whole line.
	line := max(e.Line-1, 0)
	start := protocol.Position{Line: protocol.UInteger(line)}
	end := protocol.Position{Line: protocol.UInteger(line + 1)}
	if e.Column > 0 {
		start.Character = protocol.UInteger(e.Column - 1)
		end = protocol.Position{Line: start.Line, Character: start.Character + 1}
	}

	message := e.Message
	if e.Detail != "" {
		message += "\n" + e.Detail
	}

	d := protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Message:  message,
	}
	if e.Group != "" {
		source := e.Group
		d.Source = &source
	}
	return d
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return protocol.DocumentUri(u.String())
}
