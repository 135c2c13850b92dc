// Package report contains the buildoutput listeners used by the sai commands.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/dhamidi/saibuild/buildoutput"
)

// Terminal prints events for humans, one line per event in the familiar
// "file:line:col: kind: message" form. Colors are only used when w is a
// terminal.
type Terminal struct {
	mu         sync.Mutex
	w          io.Writer
	showDetail bool

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	locStyle     lipgloss.Style
	detailStyle  lipgloss.Style
}

// NewTerminal creates a Terminal writing to w. With showDetail set, the
// source excerpt or stack frames attached to an event are printed below it.
func NewTerminal(w io.Writer, showDetail bool) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:            w,
		showDetail:   showDetail,
		errorStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warningStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		infoStyle:    r.NewStyle().Foreground(lipgloss.Color("12")),
		locStyle:     r.NewStyle().Bold(true),
		detailStyle:  r.NewStyle().Faint(true),
	}
}

func (t *Terminal) OnEvent(e buildoutput.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.Kind == buildoutput.KindOutput {
		fmt.Fprintln(t.w, e.Message)
		return
	}

	var sb strings.Builder
	if loc := e.Location(); loc != "" {
		sb.WriteString(t.locStyle.Render(loc))
		sb.WriteString(": ")
	}
	sb.WriteString(t.kindStyle(e.Kind).Render(e.Kind.String()))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	fmt.Fprintln(t.w, sb.String())

	if t.showDetail && e.Detail != "" {
		for _, line := range strings.Split(e.Detail, "\n") {
			fmt.Fprintln(t.w, t.detailStyle.Render("    "+line))
		}
	}
}

func (t *Terminal) kindStyle(k buildoutput.Kind) lipgloss.Style {
	switch k {
	case buildoutput.KindError:
		return t.errorStyle
	case buildoutput.KindWarning:
		return t.warningStyle
	default:
		return t.infoStyle
	}
}
