package lsp

import (
	"path/filepath"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/saibuild/buildoutput"
)

func TestToDiagnostic(t *testing.T) {
	tests := []struct {
		name      string
		event     buildoutput.Event
		wantStart protocol.Position
		wantEnd   protocol.Position
		wantSev   protocol.DiagnosticSeverity
		wantMsg   string
	}{
		{
			name:      "with column",
			event:     buildoutput.Event{Kind: buildoutput.KindError, Group: "javac", File: "A.java", Line: 3, Column: 5, Message: "; expected"},
			wantStart: protocol.Position{Line: 2, Character: 4},
			wantEnd:   protocol.Position{Line: 2, Character: 5},
			wantSev:   protocol.DiagnosticSeverityError,
			wantMsg:   "; expected",
		},
		{
			name:      "whole line",
			event:     buildoutput.Event{Kind: buildoutput.KindWarning, File: "A.java", Line: 1, Message: "unchecked", Detail: "  required: T"},
			wantStart: protocol.Position{Line: 0},
			wantEnd:   protocol.Position{Line: 1},
			wantSev:   protocol.DiagnosticSeverityWarning,
			wantMsg:   "unchecked\n  required: T",
		},
		{
			name:      "unknown line",
			event:     buildoutput.Event{Kind: buildoutput.KindError, File: "A.java", Message: "broken"},
			wantStart: protocol.Position{Line: 0},
			wantEnd:   protocol.Position{Line: 1},
			wantSev:   protocol.DiagnosticSeverityError,
			wantMsg:   "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := toDiagnostic(tt.event)
			if d.Range.Start != tt.wantStart || d.Range.End != tt.wantEnd {
				t.Errorf("range = %+v, want %+v-%+v", d.Range, tt.wantStart, tt.wantEnd)
			}
			if d.Severity == nil || *d.Severity != tt.wantSev {
				t.Errorf("severity = %v, want %v", d.Severity, tt.wantSev)
			}
			if d.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", d.Message, tt.wantMsg)
			}
		})
	}
}

func TestDiagnostics_collectsPerFile(t *testing.T) {
	root := t.TempDir()
	d := NewDiagnostics(root)

	d.OnEvent(buildoutput.Event{Kind: buildoutput.KindError, File: "src/A.java", Line: 1, Message: "a"})
	d.OnEvent(buildoutput.Event{Kind: buildoutput.KindWarning, File: "src/A.java", Line: 2, Message: "b"})
	d.OnEvent(buildoutput.Event{Kind: buildoutput.KindError, File: "/abs/B.java", Line: 1, Message: "c"})
	d.OnEvent(buildoutput.Event{Kind: buildoutput.KindInfo, File: "src/C.java", Message: "note"})
	d.OnEvent(buildoutput.Event{Kind: buildoutput.KindError, Message: "no file"})

	paths := d.Paths()
	if len(paths) != 2 {
		t.Fatalf("paths = %q, want 2", paths)
	}
	a := filepath.Join(root, "src", "A.java")
	if got := len(d.For(a)); got != 2 {
		t.Errorf("%s has %d diagnostics, want 2", a, got)
	}
	if got := d.For("/missing.java"); got == nil || len(got) != 0 {
		t.Errorf("For(missing) = %v, want an empty slice", got)
	}
}

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func TestPublish_clearsFixedFiles(t *testing.T) {
	ls := NewServer("test")
	var sent []notification
	notify := func(method string, params any) {
		sent = append(sent, notification{method, params.(protocol.PublishDiagnosticsParams)})
	}

	first := NewDiagnostics("/p")
	first.OnEvent(buildoutput.Event{Kind: buildoutput.KindError, File: "A.java", Line: 1, Message: "a"})
	first.OnEvent(buildoutput.Event{Kind: buildoutput.KindError, File: "B.java", Line: 1, Message: "b"})
	ls.publish(notify, first)
	if len(sent) != 2 {
		t.Fatalf("first publish sent %d notifications, want 2", len(sent))
	}

	sent = nil
	second := NewDiagnostics("/p")
	second.OnEvent(buildoutput.Event{Kind: buildoutput.KindError, File: "B.java", Line: 2, Message: "b"})
	ls.publish(notify, second)

	if len(sent) != 2 {
		t.Fatalf("second publish sent %d notifications, want 2", len(sent))
	}
	cleared := sent[0]
	if cleared.method != protocol.ServerTextDocumentPublishDiagnostics {
		t.Errorf("method = %q", cleared.method)
	}
	if cleared.params.URI != pathToURI("/p/A.java") || len(cleared.params.Diagnostics) != 0 {
		t.Errorf("A.java should be cleared, got %+v", cleared.params)
	}
	if got := sent[1].params; got.URI != pathToURI("/p/B.java") || len(got.Diagnostics) != 1 {
		t.Errorf("B.java publish = %+v", got)
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := "/home/me/my project/A.java"
	uri := pathToURI(path)
	if uri != "file:///home/me/my%20project/A.java" {
		t.Errorf("pathToURI() = %q", uri)
	}
	got, err := uriToPath(string(uri))
	if err != nil || got != path {
		t.Errorf("uriToPath(%q) = %q, %v", uri, got, err)
	}
}
