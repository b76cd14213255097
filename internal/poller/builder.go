// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/fault-manager/internal/config"
	pmodbus "github.com/tamzrod/fault-manager/internal/poller/modbus"
)

// Build constructs a Poller for one configured field device.
// The connection is made lazily on the first tick and reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
func Build(s cfg.ModbusConfig) (*Poller, error) {
	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		c, err := pmodbus.New(pmodbus.Config{
			Endpoint: s.Endpoint,
			UnitID:   s.UnitID,
			Timeout:  time.Duration(s.TimeoutMs) * time.Millisecond,
			BaudRate: s.BaudRate,
			DataBits: s.DataBits,
			Parity:   s.Parity,
			StopBits: s.StopBits,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return New(
		Config{
			SourceID: s.ID,
			Interval: time.Duration(s.IntervalMs) * time.Millisecond,
			Address:  s.Address,
		},
		nil,
		factory,
	)
}

var _ Client = (*pmodbus.Client)(nil)
