// Package lsp serves compiler diagnostics over the Language Server
// Protocol. Every save recompiles the project and publishes the javac
// errors and warnings of each file.
package lsp

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/saibuild/build"
	"github.com/dhamidi/saibuild/config"
	"github.com/dhamidi/saibuild/project"
)

const lsName = "sai"

var log = commonlog.GetLogger("sai.lsp")

type Server struct {
	version string
	handler protocol.Handler
	server  *server.Server

	mu        sync.Mutex
	root      string
	runner    *build.Runner
	published map[string]bool
}

func NewServer(version string) *Server {
	ls := &Server{
		version:   version,
		published: make(map[string]bool),
	}

	ls.handler = protocol.Handler{
		Initialize:          ls.initialize,
		Initialized:         ls.initialized,
		Shutdown:            ls.shutdown,
		SetTrace:            ls.setTrace,
		TextDocumentDidSave: ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := config.Load(filepath.Join(rootDir, config.DefaultPath), false)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	ls.root = rootDir
	if proj, err := project.LoadFrom(rootDir); err != nil {
		log.Warning("no project, diagnostics disabled", "root", rootDir, "error", err)
	} else {
		ls.runner = build.NewRunner(proj, cfg.BuildOutput)
	}
	ls.mu.Unlock()

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Save:      &protocol.SaveOptions{},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.check(ctx.Notify)
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if filepath.Ext(string(params.TextDocument.URI)) != ".java" {
		return nil
	}
	ls.check(ctx.Notify)
	return nil
}

// check recompiles the project and publishes the result.
func (ls *Server) check(notify glsp.NotifyFunc) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.runner == nil {
		return
	}

	diags := NewDiagnostics(ls.root)
	if err := ls.runner.Compile(context.Background(), diags); err != nil {
		// A failing compile is the normal case while editing.
		log.Debug("compile failed", "error", err)
	}
	ls.publish(notify, diags)
}

// publish sends the diagnostics of every file that has some, and clears
// the files published last time that no longer do.
func (ls *Server) publish(notify glsp.NotifyFunc, diags *Diagnostics) {
	current := make(map[string]bool)
	for _, path := range diags.Paths() {
		current[path] = true
	}
	for path := range ls.published {
		if !current[path] {
			notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
				URI:         pathToURI(path),
				Diagnostics: []protocol.Diagnostic{},
			})
		}
	}
	for _, path := range diags.Paths() {
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         pathToURI(path),
			Diagnostics: diags.For(path),
		})
	}
	ls.published = current
}

func boolPtr(b bool) *bool {
	return &b
}
