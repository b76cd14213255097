// internal/config/validate.go
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Validate checks configuration correctness.
// It performs declarative validation only; zero values mean "default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// MANAGER
	// ------------------------------------------------------------

	m := cfg.Manager

	switch m.LogMode {
	case "", "per_append", "persistent":
	default:
		return fmt.Errorf("manager.log_mode %q: want per_append or persistent", m.LogMode)
	}

	if _, err := ResolveLocation(m.Timezone); err != nil {
		return fmt.Errorf("manager.timezone %q: %v", m.Timezone, err)
	}

	if m.FaultCode != nil && (*m.FaultCode < math.MinInt32 || *m.FaultCode > math.MaxInt32) {
		return fmt.Errorf("manager.fault_code %d: out of int32 range", *m.FaultCode)
	}

	if m.MaxMessage < 0 {
		return fmt.Errorf("manager.max_message %d: must be >= 0", m.MaxMessage)
	}
	if m.MaxWrite < 0 {
		return fmt.Errorf("manager.max_write %d: must be >= 0", m.MaxWrite)
	}
	if m.QueueDepth < 0 {
		return fmt.Errorf("manager.queue_depth %d: must be >= 0", m.QueueDepth)
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: want debug, info, warn or error", cfg.Logging.Level)
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q: want text or json", cfg.Logging.Format)
	}

	// ------------------------------------------------------------
	// SOURCES
	// ------------------------------------------------------------

	if n := cfg.Sources.NATS; n != nil && n.URL == "" {
		return fmt.Errorf("sources.nats.url required when sources.nats is set")
	}

	seen := make(map[string]struct{})

	for i, s := range cfg.Sources.Modbus {
		if s.ID == "" {
			return fmt.Errorf("sources.modbus[%d]: id required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("sources.modbus[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}

		if s.Endpoint == "" {
			return fmt.Errorf("source %q: endpoint required", s.ID)
		}
		if s.TimeoutMs < 0 || s.IntervalMs < 0 {
			return fmt.Errorf("source %q: timeout_ms and interval_ms must be >= 0", s.ID)
		}
		// mailbox is code + value_hi + value_lo
		if s.Address > math.MaxUint16-2 {
			return fmt.Errorf("source %q: mailbox at %d overflows register space", s.ID, s.Address)
		}

		switch strings.ToUpper(s.Parity) {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("source %q: parity %q: want N, E or O", s.ID, s.Parity)
		}
	}

	return nil
}

// ResolveLocation maps the timezone setting to a location.
// Empty and "local" mean the host's local time.
func ResolveLocation(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
