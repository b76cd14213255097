// internal/protocol/pulse.go
package protocol

import (
	"encoding/binary"

	"github.com/tamzrod/fault-manager/internal/event"
)

// PulseBodySize is code(4) + value(4).
const PulseBodySize = 8

// EncodePulse packs ev as a pulse request body.
func EncodePulse(ev event.Event) []byte {
	b := make([]byte, PulseBodySize)
	binary.BigEndian.PutUint32(b[0:4], uint32(ev.Code))
	binary.BigEndian.PutUint32(b[4:8], uint32(ev.Value))
	return b
}

// DecodePulse unpacks a pulse request body.
func DecodePulse(b []byte) (event.Event, error) {
	if len(b) != PulseBodySize {
		return event.Event{}, ErrBadPulse
	}
	return event.Event{
		Code:  int32(binary.BigEndian.Uint32(b[0:4])),
		Value: int32(binary.BigEndian.Uint32(b[4:8])),
	}, nil
}
