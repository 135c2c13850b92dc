package report

import (
	"fmt"
	"sync"

	"github.com/dhamidi/saibuild/buildoutput"
)

// Summary counts events by kind.
type Summary struct {
	mu     sync.Mutex
	counts map[buildoutput.Kind]int
}

func NewSummary() *Summary {
	return &Summary{counts: make(map[buildoutput.Kind]int)}
}

func (s *Summary) OnEvent(e buildoutput.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[e.Kind]++
}

// Count returns how many events of kind k were seen.
func (s *Summary) Count(k buildoutput.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[k]
}

func (s *Summary) Errors() int   { return s.Count(buildoutput.KindError) }
func (s *Summary) Warnings() int { return s.Count(buildoutput.KindWarning) }

// String renders the counts, e.g. "2 errors, 1 warning".
func (s *Summary) String() string {
	return fmt.Sprintf("%s, %s", plural(s.Errors(), "error"), plural(s.Warnings(), "warning"))
}

// Err returns an error describing the failures, or nil if no error events
// were seen.
func (s *Summary) Err() error {
	if n := s.Errors(); n > 0 {
		return fmt.Errorf("%s reported", plural(n, "error"))
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

type tee []buildoutput.Listener

func (t tee) OnEvent(e buildoutput.Event) {
	for _, l := range t {
		l.OnEvent(e)
	}
}

// Tee returns a listener forwarding every event to all of ls, in order.
// Nil listeners are skipped.
func Tee(ls ...buildoutput.Listener) buildoutput.Listener {
	var t tee
	for _, l := range ls {
		if l != nil {
			t = append(t, l)
		}
	}
	return t
}
