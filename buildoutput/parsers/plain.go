package parsers

import "github.com/dhamidi/saibuild/buildoutput"

// Plain accepts any line as an output event. Register it last so that
// nothing the other parsers skip is lost.
type Plain struct{}

func (Plain) Parse(line string, _ buildoutput.LineReader, emit func(buildoutput.Event)) bool {
	emit(buildoutput.Event{Kind: buildoutput.KindOutput, Message: line})
	return true
}
