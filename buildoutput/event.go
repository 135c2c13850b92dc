package buildoutput

import "fmt"

// Kind classifies an Event.
type Kind int

const (
	KindOutput Kind = iota
	KindInfo
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindInfo:
		return "info"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name, so events encode readably.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a structured message recognized in build output.
//
// Events are comparable with ==; the dispatcher relies on this to drop
// consecutive duplicates (the same diagnostic printed on stdout and stderr).
type Event struct {
	Kind    Kind   `json:"kind"`
	Group   string `json:"group,omitempty"` // tool that produced the event, e.g. "javac"
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`   // 1-based, 0 if unknown
	Column  int    `json:"column,omitempty"` // 1-based, 0 if unknown
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Location formats the file position of the event, or "" if it has none.
func (e Event) Location() string {
	switch {
	case e.File == "":
		return ""
	case e.Line == 0:
		return e.File
	case e.Column == 0:
		return fmt.Sprintf("%s:%d", e.File, e.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
}

// Listener receives events from a Reader.
//
// OnEvent is only ever called from the Reader's dispatch goroutine, in the
// order the lines producing the events arrived.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event Event)

func (f ListenerFunc) OnEvent(event Event) { f(event) }

// LineReader is the view of a Reader handed to parsers.
type LineReader interface {
	// RunID identifies the build or job whose output is being read.
	RunID() string

	// ReadLine returns the next line, without its newline. It returns false
	// once the end of the stream has been reached.
	ReadLine() (string, bool)

	// PushBack rewinds the reader by n lines, so that they are returned
	// again by subsequent ReadLine calls.
	PushBack(n int)

	// CurrentLine returns the line most recently returned by ReadLine, if it
	// is still held in the history window.
	CurrentLine() (string, bool)
}

// Parser recognizes lines of build output.
//
// Parse is called with a line and a reader positioned on that line. It
// returns true if it recognized and fully handled the line, which stops the
// line from being offered to later parsers. It may call emit any number of
// times, and may read further lines from r; lines read but not consumed
// should be pushed back before returning.
type Parser interface {
	Parse(line string, r LineReader, emit func(Event)) bool
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(line string, r LineReader, emit func(Event)) bool

func (f ParserFunc) Parse(line string, r LineReader, emit func(Event)) bool {
	return f(line, r, emit)
}
