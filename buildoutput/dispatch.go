package buildoutput

import (
	"fmt"
	"strings"
)

// scopedReader is the LineReader given to a single parser invocation. It
// cannot push back further than the lines it read itself.
type scopedReader struct {
	reader    *Reader
	linesRead int
}

func (s *scopedReader) RunID() string {
	return s.reader.RunID()
}

func (s *scopedReader) ReadLine() (string, bool) {
	line, ok := s.reader.readLine()
	if ok {
		s.linesRead++
	}
	return line, ok
}

func (s *scopedReader) PushBack(n int) {
	if n > s.linesRead {
		n = s.linesRead
	}
	if n <= 0 {
		return
	}
	s.reader.pushBack(n)
	s.linesRead -= n
}

func (s *scopedReader) CurrentLine() (string, bool) {
	return s.reader.currentLine()
}

// dedupEmitter forwards events to a listener, dropping an event equal to the
// one immediately before it.
type dedupEmitter struct {
	listener Listener
	last     Event
	hasLast  bool
}

func (d *dedupEmitter) emit(event Event) {
	duplicate := d.hasLast && event == d.last
	d.last, d.hasLast = event, true
	if duplicate {
		return
	}
	d.listener.OnEvent(event)
}

func (r *Reader) dispatch() {
	defer close(r.done)

	emitter := &dedupEmitter{listener: r.listener}
	for {
		line, ok := r.readLine()
		if !ok {
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		for i, p := range r.parsers {
			if r.parse(i, p, line, emitter.emit) {
				break
			}
		}
	}
}

// parse runs a single parser. A panicking parser is logged and treated as
// having declined the line; any lines it read are pushed back first.
func (r *Reader) parse(index int, p Parser, line string, emit func(Event)) (accepted bool) {
	view := &scopedReader{reader: r}
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("build output parser failed",
				"run", r.runID,
				"parser", fmt.Sprintf("%d (%T)", index, p),
				"line", line,
				"panic", v)
			view.PushBack(view.linesRead)
			accepted = false
		}
	}()
	return p.Parse(line, view, emit)
}
