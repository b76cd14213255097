// internal/device/device.go
package device

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/fault-manager/internal/event"
	"github.com/tamzrod/fault-manager/internal/faultlog"
	"github.com/tamzrod/fault-manager/internal/handler"
	"github.com/tamzrod/fault-manager/internal/metrics"
	"github.com/tamzrod/fault-manager/internal/status"
)

// ErrClosed is returned for operations on a closed connection.
var ErrClosed = errors.New("device: connection closed")

// Options wires the device to its collaborators.
type Options struct {
	Log       faultlog.Appender
	FaultCode int32
	MaxWrite  int

	Metrics *metrics.Metrics // optional
	Logger  *slog.Logger     // optional
	Now     func() time.Time // optional
}

// Device is the explicit context every handler runs against:
// the status resource, its attributes, the write handler and the event filter.
//
// Device is NOT safe for concurrent use. The dispatch loop is its only caller.
type Device struct {
	status  *status.Resource
	attr    *status.Attr
	writes  *handler.Handler
	events  *event.Filter
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func New(opts Options) (*Device, error) {
	if opts.Log == nil {
		return nil, errors.New("device: fault log required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	res := status.NewResource()
	logger := opts.Logger.With(slog.String("component", "device"))

	return &Device{
		status:  res,
		attr:    status.NewAttr(res.Len(), opts.Now()),
		writes:  handler.New(handler.Config{MaxWrite: opts.MaxWrite}, opts.Log, logger),
		events:  event.NewFilter(opts.FaultCode, opts.Log, logger),
		metrics: opts.Metrics,
		logger:  logger,
		now:     opts.Now,
	}, nil
}

// Status returns the shared read-only status resource.
func (d *Device) Status() *status.Resource { return d.status }

// Pulse runs one asynchronous event through the filter.
// Nothing is returned: the sender never learns the outcome.
func (d *Device) Pulse(ev event.Event) {
	out, err := d.events.HandleEvent(ev)
	d.metrics.EventHandled(out.String())
	switch out {
	case event.Logged:
		d.metrics.FaultLogged("event")
	case event.LogFailed:
		d.metrics.LogFailed(err)
	}
}

// Open creates a connection with its own cursor.
func (d *Device) Open() *Conn {
	c := &Conn{id: uuid.New(), dev: d}
	d.metrics.ConnOpened()
	d.logger.Debug("connection opened", slog.String("conn", c.id.String()))
	return c
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, handler.ErrBadMessage):
		return "bad_message"
	case errors.Is(err, handler.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, handler.ErrOutOfMemory):
		return "out_of_memory"
	default:
		return "other"
	}
}
