// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/fault-manager/internal/event"
)

// Client abstracts the field-bus operations needed by the poller.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error)
	WriteSingleRegister(addr, value uint16) error
	Close() error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	SourceID string
	Interval time.Duration
	Address  uint16
}

// Poller is a dumb, clock-driven mailbox reader.
type Poller struct {
	cfg     Config
	client  Client
	factory func() (Client, error)
}

// New creates a poller with immutable config.
// client may be nil; factory is then used on the first poll.
func New(cfg Config, client Client, factory func() (Client, error)) (*Poller, error) {
	if cfg.SourceID == "" {
		return nil, errors.New("poller: source id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory}, nil
}

// PollOnce performs exactly one poll cycle.
//
// A pending fault is only reported after the ack write succeeds; if the
// ack fails the code stays set on the device and the next cycle retries.
// On transport failure the client is discarded and rebuilt by the factory
// on a later cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		SourceID: p.cfg.SourceID,
		At:       time.Now(),
	}

	if p.client == nil {
		if p.factory == nil {
			res.Err = errors.New("poller: no client")
			return res
		}
		c, err := p.factory()
		if err != nil {
			res.Err = fmt.Errorf("poller: connect: %w", err)
			return res
		}
		p.client = c
	}

	regs, err := p.client.ReadHoldingRegisters(p.cfg.Address, MailboxSize)
	if err != nil {
		p.drop()
		res.Err = fmt.Errorf("poller: read mailbox: %w", err)
		return res
	}
	if len(regs) < MailboxSize {
		res.Err = fmt.Errorf("poller: short mailbox read: %d registers", len(regs))
		return res
	}

	code := regs[SlotCode]
	if code == 0 {
		return res
	}

	if err := p.client.WriteSingleRegister(p.cfg.Address+SlotCode, 0); err != nil {
		p.drop()
		res.Err = fmt.Errorf("poller: ack mailbox: %w", err)
		return res
	}

	res.Pending = true
	res.Event = event.Event{
		Code:  int32(code),
		Value: int32(uint32(regs[SlotValueHi])<<16 | uint32(regs[SlotValueLo])),
	}
	return res
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

func (p *Poller) drop() {
	if p.factory == nil {
		return
	}
	_ = p.Close()
}
