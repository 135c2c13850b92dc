package buildoutput

import (
	"context"
	"time"

	"github.com/tliron/commonlog"
)

const (
	// DefaultHistorySize is the number of dispatched lines kept for push back.
	DefaultHistorySize = 50

	// DefaultCloseTimeout bounds how long Close waits for the dispatcher to drain.
	DefaultCloseTimeout = time.Minute
)

// Logger is the subset of commonlog.Logger used by the Reader.
type Logger interface {
	Debug(message string, keysAndValues ...any)
	Warning(message string, keysAndValues ...any)
	Error(message string, keysAndValues ...any)
}

// Option configures a Reader.
type Option func(*options)

type options struct {
	ctx          context.Context
	historySize  int
	closeTimeout time.Duration
	logger       Logger
}

func defaultOptions() options {
	return options{
		ctx:          context.Background(),
		historySize:  DefaultHistorySize,
		closeTimeout: DefaultCloseTimeout,
		logger:       commonlog.GetLogger("sai.buildoutput"),
	}
}

// WithHistorySize sets how many lines are kept for push back.
// Values below 1 are ignored.
func WithHistorySize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historySize = n
		}
	}
}

// WithCloseTimeout bounds how long Close waits for pending lines to be
// dispatched. Values of zero or below are ignored.
func WithCloseTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.closeTimeout = d
		}
	}
}

// WithContext sets a context whose cancellation ends dispatching as if the
// stream had been closed.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithLogger replaces the default commonlog logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
