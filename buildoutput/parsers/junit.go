package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhamidi/saibuild/buildoutput"
)

const groupJUnit = "junit"

var (
	junitFailuresRe = regexp.MustCompile(`^Failures \((\d+)\):$`)
	junitCountRe    = regexp.MustCompile(`^\[\s*(\d+) tests (found|successful|failed|skipped|aborted)\s*\]$`)
	frameLocationRe = regexp.MustCompile(`\(([\w$]+\.java):(\d+)\)`)
)

// Frames from these packages never point at the user's code.
var frameSkipPrefixes = []string{
	"org.junit.",
	"org.opentest4j.",
	"java.",
	"jdk.",
	"sun.",
	"[",
}

// JUnit recognizes the output of the JUnit Platform console launcher: the
// failure report, the summary block printed after "Test run finished" and
// the sponsorship banner.
//
// Lines of the test tree itself are left to later parsers.
type JUnit struct{}

func (JUnit) Parse(line string, r buildoutput.LineReader, emit func(buildoutput.Event)) bool {
	switch {
	case strings.Contains(line, "Thanks for using JUnit"):
		return true
	case junitFailuresRe.MatchString(line):
		parseJUnitFailures(r, emit)
		return true
	case strings.HasPrefix(line, "Test run finished"):
		emit(parseJUnitSummary(line, r))
		return true
	}
	return false
}

// parseJUnitFailures reads the entries of a "Failures (N):" block:
//
//	  JUnit Jupiter:GreeterTest:greets()
//	    MethodSource [className = 'demo.GreeterTest', methodName = 'greets', methodParameterTypes = '']
//	    => org.opentest4j.AssertionFailedError: expected: <Hello> but was: <Hi>
//	       org.junit.jupiter.api.AssertionUtils.fail(AssertionUtils.java:151)
//	       demo.GreeterTest.greets(GreeterTest.java:11)
func parseJUnitFailures(r buildoutput.LineReader, emit func(buildoutput.Event)) {
	var entry *junitFailure
	flush := func() {
		if entry != nil {
			emit(entry.event())
			entry = nil
		}
	}

	for {
		next, ok := r.ReadLine()
		if !ok {
			break
		}
		indent := len(next) - len(strings.TrimLeft(next, " "))
		text := strings.TrimSpace(next)
		switch {
		case text == "" || indent < 2:
			r.PushBack(1)
			flush()
			return
		case indent < 4:
			flush()
			entry = &junitFailure{test: text}
		case entry != nil:
			entry.add(text)
		}
	}
	flush()
}

type junitFailure struct {
	test    string
	reason  string
	file    string
	line    int
	details []string
}

func (f *junitFailure) add(text string) {
	f.details = append(f.details, text)
	if strings.HasPrefix(text, "=> ") {
		if f.reason == "" {
			f.reason = strings.TrimPrefix(text, "=> ")
		}
		return
	}
	if f.reason == "" || f.file != "" || isLibraryFrame(text) {
		return
	}
	if m := frameLocationRe.FindStringSubmatch(text); m != nil {
		f.file = m[1]
		f.line, _ = strconv.Atoi(m[2])
	}
}

func (f *junitFailure) event() buildoutput.Event {
	message := f.test
	if f.reason != "" {
		message = f.test + ": " + f.reason
	}
	return buildoutput.Event{
		Kind:    buildoutput.KindError,
		Group:   groupJUnit,
		File:    f.file,
		Line:    f.line,
		Message: message,
		Detail:  strings.Join(f.details, "\n"),
	}
}

func isLibraryFrame(text string) bool {
	for _, prefix := range frameSkipPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// parseJUnitSummary consumes the bracketed counters following the
// "Test run finished" line and condenses them into one event.
func parseJUnitSummary(header string, r buildoutput.LineReader) buildoutput.Event {
	counts := map[string]int{}
	var details []string
	for {
		next, ok := r.ReadLine()
		if !ok {
			break
		}
		text := strings.TrimSpace(next)
		if !strings.HasPrefix(text, "[") {
			r.PushBack(1)
			break
		}
		details = append(details, text)
		if m := junitCountRe.FindStringSubmatch(text); m != nil {
			counts[m[2]], _ = strconv.Atoi(m[1])
		}
	}

	message := fmt.Sprintf("%d tests, %d failed", counts["found"], counts["failed"])
	if counts["skipped"] > 0 {
		message += fmt.Sprintf(", %d skipped", counts["skipped"])
	}
	if counts["aborted"] > 0 {
		message += fmt.Sprintf(", %d aborted", counts["aborted"])
	}

	return buildoutput.Event{
		Kind:    buildoutput.KindInfo,
		Group:   groupJUnit,
		Message: message,
		Detail:  strings.Join(append([]string{header}, details...), "\n"),
	}
}
