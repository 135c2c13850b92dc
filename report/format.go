package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dhamidi/saibuild/buildoutput"
)

// Format selects how events are printed. It implements pflag.Value so it
// can be bound directly to a --format flag.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var _ pflag.Value = (*Format)(nil)

func (f *Format) String() string {
	if *f == "" {
		return string(FormatText)
	}
	return string(*f)
}

func (f *Format) Set(s string) error {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		*f = FormatText
	case FormatJSON:
		*f = FormatJSON
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", s, FormatText, FormatJSON)
	}
	return nil
}

func (f *Format) Type() string {
	return "format"
}

// Listener returns the listener printing events to w in this format.
func (f Format) Listener(w io.Writer, showDetail bool) buildoutput.Listener {
	if f == FormatJSON {
		return NewJSON(w)
	}
	return NewTerminal(w, showDetail)
}
