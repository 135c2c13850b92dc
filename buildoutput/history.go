package buildoutput

// history is a sliding window over the most recently read lines plus a
// cursor into it.
//
// The cursor is the index of the line last returned, or -1 before the first
// retained line. When it sits on the last line, the next line has to come
// from the queue.
type history struct {
	lines  []string
	size   int
	cursor int
}

func newHistory(size int) *history {
	if size < 1 {
		size = 1
	}
	return &history{
		lines:  make([]string, 0, size),
		size:   size,
		cursor: -1,
	}
}

// advance moves the cursor forward and returns the line there, if the
// window already holds it. Otherwise the cursor stays on the last line.
func (h *history) advance() (string, bool) {
	if h.cursor+1 < len(h.lines) {
		h.cursor++
		return h.lines[h.cursor], true
	}
	return "", false
}

// add appends a freshly dequeued line and moves the cursor onto it.
func (h *history) add(line string) {
	h.lines = append(h.lines, line)
	h.cursor = len(h.lines) - 1
	if len(h.lines) > h.size {
		copy(h.lines, h.lines[1:])
		h.lines[len(h.lines)-1] = ""
		h.lines = h.lines[:len(h.lines)-1]
		h.cursor--
	}
}

// rewind moves the cursor back by n lines. It reports false if that would
// move past the start of the window, in which case the cursor is left at -1.
func (h *history) rewind(n int) bool {
	h.cursor -= n
	if h.cursor < -1 {
		h.cursor = -1
		return false
	}
	return true
}

func (h *history) current() (string, bool) {
	if h.cursor < 0 || h.cursor >= len(h.lines) {
		return "", false
	}
	return h.lines[h.cursor], true
}
