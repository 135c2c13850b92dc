package buildoutput

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Reader splits build output into lines and dispatches them to parsers.
//
// Writes may come from several goroutines; each Write call is applied
// atomically, so exec.Cmd can share one Reader between Stdout and Stderr.
// Parsers read ahead through the LineReader passed to Parse; the read side
// has a single consumer, the dispatch goroutine.
type Reader struct {
	runID    string
	listener Listener
	parsers  []Parser
	opts     options
	log      Logger

	// assembler state
	mu      sync.Mutex
	pending strings.Builder
	closed  atomic.Bool

	queue   *lineQueue
	started atomic.Bool
	done    chan struct{}

	// read state, owned by the dispatch goroutine
	hmu     sync.Mutex
	history *history
	eos     bool

	closeOnce sync.Once
}

// New creates a Reader for the run identified by runID. Recognized events
// are sent to listener; parsers are tried in order for every line.
func New(runID string, listener Listener, parsers []Parser, opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if listener == nil {
		listener = ListenerFunc(func(Event) {})
	}

	return &Reader{
		runID:    runID,
		listener: listener,
		parsers:  append([]Parser(nil), parsers...),
		opts:     o,
		log:      o.logger,
		queue:    newLineQueue(),
		done:     make(chan struct{}),
		history:  newHistory(o.historySize),
	}
}

// RunID returns the identifier the Reader was created with.
func (r *Reader) RunID() string {
	return r.runID
}

// Append adds s to the output.
// Output appended after Close, or after the context ended the stream, is
// discarded with a warning.
func (r *Reader) Append(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		r.log.Warning("build output reader closed, discarding output", "run", r.runID, "output", s)
		return
	}

	for len(s) > 0 {
		idx := strings.IndexByte(s, '\n')
		if idx == -1 {
			r.pending.WriteString(s)
			return
		}
		r.pending.WriteString(s[:idx])
		r.flushLocked()
		s = s[idx+1:]
	}
}

// Write implements io.Writer. It never fails.
func (r *Reader) Write(p []byte) (int, error) {
	r.Append(string(p))
	return len(p), nil
}

// WriteString implements io.StringWriter. It never fails.
func (r *Reader) WriteString(s string) (int, error) {
	r.Append(s)
	return len(s), nil
}

// flushLocked emits the pending buffer as one line. r.mu must be held.
func (r *Reader) flushLocked() {
	line := r.pending.String()
	r.pending.Reset()

	if r.closed.Load() {
		r.log.Warning("build output reader closed, discarding output", "run", r.runID, "line", line)
		return
	}

	r.start()
	r.queue.put(queueItem{line: line})
}

func (r *Reader) start() {
	if r.started.CompareAndSwap(false, true) {
		go r.dispatch()
	}
}

// Done is closed once the dispatcher has processed the end of the stream.
// It never closes if no line was ever written.
func (r *Reader) Done() <-chan struct{} {
	return r.done
}

// Close flushes the trailing partial line, ends the stream and waits for
// the dispatcher to process the remaining lines, for at most the close
// timeout. It is safe to call more than once and always returns nil.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		if r.pending.Len() > 0 {
			r.flushLocked()
		}
		r.closed.Store(true)
		r.mu.Unlock()

		r.queue.put(queueItem{eos: true})

		if !r.started.Load() {
			return
		}

		timer := time.NewTimer(r.opts.closeTimeout)
		defer timer.Stop()
		select {
		case <-r.done:
		case <-timer.C:
			r.log.Warning("timed out waiting for build output to be processed",
				"run", r.runID,
				"timeout", r.opts.closeTimeout,
				"pending", r.queue.len())
		}
	})
	return nil
}

// readLine returns the next line of output. It blocks until a line is
// available and returns false once the stream has ended. After the end of
// the stream it only replays lines still held in the history window.
// Only the dispatch goroutine may call it.
func (r *Reader) readLine() (string, bool) {
	r.hmu.Lock()
	if line, ok := r.history.advance(); ok {
		r.hmu.Unlock()
		return line, true
	}
	if r.eos {
		r.hmu.Unlock()
		return "", false
	}
	r.hmu.Unlock()

	item, err := r.queue.take(r.opts.ctx)

	r.hmu.Lock()
	defer r.hmu.Unlock()
	if err != nil {
		// Interruption closes the reader: nothing will read later output.
		r.log.Debug("build output reader interrupted", "run", r.runID, "error", err)
		r.closed.Store(true)
		r.eos = true
		return "", false
	}
	if item.eos {
		r.eos = true
		return "", false
	}
	r.history.add(item.line)
	return item.line, true
}

// pushBack rewinds the reader by n lines. Rewinding past the oldest line in
// the history window is logged and clamped.
func (r *Reader) pushBack(n int) {
	if n <= 0 {
		return
	}
	r.hmu.Lock()
	defer r.hmu.Unlock()
	if !r.history.rewind(n) {
		r.log.Error("pushed back past the start of the build output history",
			"run", r.runID,
			"lines", n,
			"history", r.opts.historySize)
	}
}

// currentLine returns the line at the cursor, if it is still in the window.
func (r *Reader) currentLine() (string, bool) {
	r.hmu.Lock()
	defer r.hmu.Unlock()
	return r.history.current()
}
