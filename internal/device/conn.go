// internal/device/conn.go
package device

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/tamzrod/fault-manager/internal/handler"
	"github.com/tamzrod/fault-manager/internal/status"
)

// Conn is one open session on the device.
type Conn struct {
	id     uuid.UUID
	dev    *Device
	cursor status.Cursor
	closed bool
}

// ID identifies the connection in diagnostics.
func (c *Conn) ID() string { return c.id.String() }

// Offset returns the read cursor position.
func (c *Conn) Offset() int { return c.cursor.Offset() }

// Read returns up to n status bytes from the connection's cursor.
// An empty result is end of data.
func (c *Conn) Read(n int) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}

	out := c.dev.status.Read(&c.cursor, n)
	if n > 0 {
		c.dev.attr.Mark(status.FlagATime)
	}
	c.dev.metrics.BytesRead(len(out))
	return out, nil
}

// Write records the fault id carried by req.
// The returned count is what the caller's write reports.
func (c *Conn) Write(req handler.WriteRequest) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}

	res, err := c.dev.writes.Handle(req)
	if err != nil {
		c.dev.metrics.WriteRejected(rejectReason(err))
		c.dev.logger.Warn("write rejected",
			slog.String("conn", c.ID()),
			slog.Int("nbytes", req.NBytes),
			slog.Int("supplied", len(req.Payload)),
			slog.Any("err", err),
		)
		return 0, err
	}

	if res.LogErr != nil {
		c.dev.metrics.LogFailed(res.LogErr)
	} else {
		c.dev.metrics.FaultLogged("write")
	}

	if res.N > 0 {
		c.dev.attr.Mark(status.FlagMTime | status.FlagCTime)
	}
	return res.N, nil
}

// Stat stamps stale attribute times and reports them.
func (c *Conn) Stat() (status.Snapshot, error) {
	if c.closed {
		return status.Snapshot{}, ErrClosed
	}
	return c.dev.attr.Refresh(c.dev.now()), nil
}

// Close drops the cursor. Safe to call more than once.
func (c *Conn) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.dev.metrics.ConnClosed()
	c.dev.logger.Debug("connection closed", slog.String("conn", c.ID()))
}
