// Package parsers contains the buildoutput parsers for the tools sai runs.
package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dhamidi/saibuild/buildoutput"
)

const groupJavac = "javac"

var (
	javacDiagnosticRe = regexp.MustCompile(`^(.+\.java):(\d+): (error|warning): (.*)$`)
	javacGlobalRe     = regexp.MustCompile(`^(error|warning): (.*)$`)
	javacSummaryRe    = regexp.MustCompile(`^\d+ (errors?|warnings?)$`)
	caretRe           = regexp.MustCompile(`^\s*\^\s*$`)
)

// maxSourceLines is how far Javac looks for the caret line after a
// diagnostic header: the source line and the caret itself.
const maxSourceLines = 2

// Javac recognizes diagnostics printed by javac:
//
//	src/demo/core/Greeter.java:7: error: cannot find symbol
//	        return nme;
//	               ^
//	  symbol:   variable nme
//	  location: class Greeter
//	1 error
type Javac struct{}

func (Javac) Parse(line string, r buildoutput.LineReader, emit func(buildoutput.Event)) bool {
	if m := javacDiagnosticRe.FindStringSubmatch(line); m != nil {
		lineNo, _ := strconv.Atoi(m[2])
		event := buildoutput.Event{
			Kind:    javacKind(m[3]),
			Group:   groupJavac,
			File:    m[1],
			Line:    lineNo,
			Message: m[4],
		}
		event.Column, event.Detail = readJavacContext(r)
		emit(event)
		return true
	}

	if m := javacGlobalRe.FindStringSubmatch(line); m != nil {
		emit(buildoutput.Event{
			Kind:    javacKind(m[1]),
			Group:   groupJavac,
			Message: m[2],
		})
		return true
	}

	if strings.HasPrefix(line, "Note: ") {
		emit(buildoutput.Event{
			Kind:    buildoutput.KindInfo,
			Group:   groupJavac,
			Message: strings.TrimPrefix(line, "Note: "),
		})
		return true
	}

	// The "N errors" trailer carries nothing the diagnostics did not.
	return javacSummaryRe.MatchString(strings.TrimSpace(line))
}

// readJavacContext consumes the source excerpt, caret and indented detail
// lines that follow a diagnostic header. It returns the 1-based caret
// column (0 if none was found) and the detail text.
func readJavacContext(r buildoutput.LineReader) (int, string) {
	var excerpt []string
	column := 0
	for len(excerpt) < maxSourceLines {
		next, ok := r.ReadLine()
		if !ok {
			break
		}
		excerpt = append(excerpt, next)
		if caretRe.MatchString(next) {
			column = strings.IndexByte(next, '^') + 1
			break
		}
	}

	if column == 0 {
		// No caret: whatever was read belongs to the next diagnostic.
		r.PushBack(len(excerpt))
		return 0, ""
	}

	detail := excerpt
	for {
		next, ok := r.ReadLine()
		if !ok {
			break
		}
		if !strings.HasPrefix(next, "  ") || strings.TrimSpace(next) == "" {
			r.PushBack(1)
			break
		}
		detail = append(detail, next)
	}
	return column, strings.Join(detail, "\n")
}

func javacKind(severity string) buildoutput.Kind {
	if severity == "warning" {
		return buildoutput.KindWarning
	}
	return buildoutput.KindError
}
