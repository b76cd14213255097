// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// handler is what both goburrow TCP and RTU handlers provide.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client implements poller.Client over goburrow/modbus.
// Requests are serialized; one client per field device.
type Client struct {
	mu      sync.Mutex
	handler handler
	client  modbus.Client
}

// Config is minimal transport config.
// Endpoints starting with "/" are serial devices (RTU); anything else is host:port (TCP).
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration

	// RTU only
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
}

// New creates a connected client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}

	var h handler
	if strings.HasPrefix(cfg.Endpoint, "/") {
		rtu := modbus.NewRTUClientHandler(cfg.Endpoint)
		rtu.BaudRate = cfg.BaudRate
		rtu.DataBits = cfg.DataBits
		rtu.Parity = strings.ToUpper(cfg.Parity)
		rtu.StopBits = cfg.StopBits
		rtu.SlaveId = cfg.UnitID
		rtu.Timeout = cfg.Timeout
		h = rtu
	} else {
		tcp := modbus.NewTCPClientHandler(cfg.Endpoint)
		tcp.SlaveId = cfg.UnitID
		tcp.Timeout = cfg.Timeout
		h = tcp
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus client: connect %s: %w", cfg.Endpoint, err)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ---- poller.Client interface ----

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf("modbus: read-registers returned %d bytes, want %d", len(raw), int(qty)*2)
	}
	return unpackRegisters(raw), nil
}

func (c *Client) WriteSingleRegister(addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.client.WriteSingleRegister(addr, value)
	return err
}

// ---- helpers (pure geometry) ----

// Modbus register memory order (BIG-ENDIAN)
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
