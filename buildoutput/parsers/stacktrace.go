package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dhamidi/saibuild/buildoutput"
)

const groupJava = "java"

var (
	uncaughtRe  = regexp.MustCompile(`^Exception in thread "[^"]*" (.+)$`)
	throwableRe = regexp.MustCompile(`^(?:[\w$]+\.)+[\w$]*(?:Exception|Error|Throwable)(?::\s.*)?$`)
	frameRe     = regexp.MustCompile(`^\s+at\s+(\S+)\(([^:)]+)(?::(\d+))?\)$`)
)

// StackTrace recognizes Java stack traces, either the uncaught-exception
// form printed by the JVM or a bare trace printed by the program:
//
//	Exception in thread "main" java.lang.IllegalStateException: no config
//		at demo.main/demo.main.Cli.load(Cli.java:21)
//		at demo.main/demo.main.Cli.main(Cli.java:9)
//	Caused by: java.io.FileNotFoundException: app.properties
//		... 2 more
type StackTrace struct{}

func (StackTrace) Parse(line string, r buildoutput.LineReader, emit func(buildoutput.Event)) bool {
	var throwable string
	if m := uncaughtRe.FindStringSubmatch(line); m != nil {
		throwable = m[1]
	} else if throwableRe.MatchString(line) {
		// A bare exception line is only a trace if a frame follows it.
		next, ok := r.ReadLine()
		if !ok {
			return false
		}
		r.PushBack(1)
		if !frameRe.MatchString(next) {
			return false
		}
		throwable = line
	} else {
		return false
	}

	event := buildoutput.Event{
		Kind:    buildoutput.KindError,
		Group:   groupJava,
		Message: throwable,
	}

	var frames []string
	for {
		next, ok := r.ReadLine()
		if !ok {
			break
		}
		if !isTraceContinuation(next) {
			r.PushBack(1)
			break
		}
		frames = append(frames, strings.TrimSpace(next))
		if event.File != "" {
			continue
		}
		if m := frameRe.FindStringSubmatch(next); m != nil && m[3] != "" {
			event.File = m[2]
			event.Line, _ = strconv.Atoi(m[3])
		}
	}
	event.Detail = strings.Join(frames, "\n")

	emit(event)
	return true
}

func isTraceContinuation(line string) bool {
	if strings.HasPrefix(line, "Caused by: ") {
		return true
	}
	return strings.TrimSpace(line) != "" && (line[0] == '\t' || line[0] == ' ')
}
