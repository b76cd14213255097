// internal/client/client.go
package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tamzrod/fault-manager/internal/event"
	"github.com/tamzrod/fault-manager/internal/protocol"
	"github.com/tamzrod/fault-manager/internal/status"
)

// RemoteError is a request the endpoint rejected.
type RemoteError struct {
	Op     protocol.Op
	Status protocol.Status
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("client: %s rejected: %s", e.Op, e.Status)
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client is one open connection to the endpoint.
// Like a file descriptor, it carries its own read position.
// Not safe for concurrent use.
type Client struct {
	conn    net.Conn
	timeout time.Duration
}

func Dial(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("client: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	conn, err := net.DialTimeout("unix", cfg.Endpoint, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("client: dial: %w", err)
	}
	return &Client{conn: conn, timeout: cfg.Timeout}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Write sends p as one fault write. Implements io.Writer.
func (c *Client) Write(p []byte) (int, error) {
	return c.WriteClaim(p, uint32(len(p)), 0)
}

// WriteClaim sends body while claiming nbytes, with an explicit xtype.
// It exists to exercise the endpoint's validation.
func (c *Client) WriteClaim(body []byte, nbytes uint32, xtype uint8) (int, error) {
	resp, err := c.roundTrip(protocol.Request{Op: protocol.OpWrite, XType: xtype, NBytes: nbytes, Body: body})
	if err != nil {
		return 0, err
	}
	return int(resp.N), nil
}

// Read reads status bytes from the connection's cursor.
// Implements io.Reader: end of data is io.EOF.
func (c *Client) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	resp, err := c.roundTrip(protocol.Request{Op: protocol.OpRead, NBytes: uint32(len(p))})
	if err != nil {
		return 0, err
	}
	if len(resp.Data) == 0 {
		return 0, io.EOF
	}
	return copy(p, resp.Data), nil
}

// Pulse sends an asynchronous event. There is no reply.
func (c *Client) Pulse(ev event.Event) error {
	req := protocol.Request{Op: protocol.OpPulse, Body: protocol.EncodePulse(ev)}
	return c.send(req)
}

// Stat returns the endpoint's attribute times.
func (c *Client) Stat() (status.Snapshot, error) {
	resp, err := c.roundTrip(protocol.Request{Op: protocol.OpStat})
	if err != nil {
		return status.Snapshot{}, err
	}
	return status.Decode(resp.Data)
}

// ---- transport ----

func (c *Client) send(req protocol.Request) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := protocol.WriteAll(c.conn, protocol.AppendRequest(nil, req)); err != nil {
		return fmt.Errorf("client: write: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(req protocol.Request) (protocol.Response, error) {
	if err := c.send(req); err != nil {
		return protocol.Response{}, err
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	resp, err := protocol.ReadResponse(c.conn, 0)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("client: read response: %w", err)
	}
	if resp.Status != protocol.StatusOK {
		return resp, &RemoteError{Op: req.Op, Status: resp.Status}
	}
	return resp, nil
}
