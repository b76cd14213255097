// internal/event/filter.go
package event

import (
	"log/slog"

	"github.com/tamzrod/fault-manager/internal/faultlog"
)

// Outcome is what the filter did with one event.
type Outcome int

const (
	// Ignored: the code did not match.
	Ignored Outcome = iota
	// Logged: the code matched and the record was appended.
	Logged
	// LogFailed: the code matched but the append failed.
	LogFailed
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Logged:
		return "logged"
	case LogFailed:
		return "log_failed"
	default:
		return "unknown"
	}
}

// Filter forwards fault events to the log.
type Filter struct {
	code   int32
	log    faultlog.Appender
	logger *slog.Logger
}

func NewFilter(code int32, log faultlog.Appender, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{code: code, log: log, logger: logger}
}

// Code returns the configured fault code.
func (f *Filter) Code() int32 { return f.code }

// HandleEvent appends ev.Value when ev.Code is the fault code.
// Nothing is reported back to the sender.
func (f *Filter) HandleEvent(ev Event) (Outcome, error) {
	f.logger.Debug("event received",
		slog.Int("code", int(ev.Code)),
		slog.Int("value", int(ev.Value)),
	)

	if ev.Code != f.code {
		return Ignored, nil
	}

	if err := f.log.Append(int64(ev.Value)); err != nil {
		f.logger.Error("fault log append failed",
			slog.String("source", "event"),
			slog.Int64("fault_id", int64(ev.Value)),
			slog.Any("err", err),
		)
		return LogFailed, err
	}
	return Logged, nil
}
