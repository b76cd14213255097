// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/fault-manager/internal/event"
)

// Mailbox layout in holding registers, relative to the configured address.
// These values define the field-device contract and MUST NOT be configurable.
const (
	SlotCode    = 0 // non-zero => fault pending; cleared to 0 on ack
	SlotValueHi = 1
	SlotValueLo = 2

	MailboxSize = 3
)

// PollResult is the outcome of one poll cycle.
type PollResult struct {
	SourceID string
	At       time.Time

	// Pending is true when the mailbox held a fault that has been acknowledged.
	Pending bool
	Event   event.Event

	Err error // non-nil means the poll cycle failed
}
