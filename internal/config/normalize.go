// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultEndpoint   = "/tmp/fault_manager"
	DefaultLogPath    = "/data/fault_log"
	DefaultLogMode    = "per_append"
	DefaultTimezone   = "local"
	DefaultFaultCode  = 15
	DefaultMaxMessage = 2048
	DefaultQueueDepth = 64

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultNATSSubject = "faults"

	DefaultModbusTimeoutMs  = 1000
	DefaultModbusIntervalMs = 500
	DefaultBaudRate         = 19200
	DefaultDataBits         = 8
	DefaultParity           = "E"
	DefaultStopBits         = 1
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	m := &cfg.Manager
	setString(&m.Endpoint, DefaultEndpoint)
	setString(&m.LogPath, DefaultLogPath)
	setString(&m.LogMode, DefaultLogMode)
	setString(&m.Timezone, DefaultTimezone)
	if m.FaultCode == nil {
		code := DefaultFaultCode
		m.FaultCode = &code
	}
	setInt(&m.MaxMessage, DefaultMaxMessage)
	setInt(&m.MaxWrite, m.MaxMessage)
	setInt(&m.QueueDepth, DefaultQueueDepth)

	setString(&cfg.Logging.Level, DefaultLogLevel)
	setString(&cfg.Logging.Format, DefaultLogFormat)

	if cfg.Sources.NATS != nil {
		setString(&cfg.Sources.NATS.Subject, DefaultNATSSubject)
	}

	for i := range cfg.Sources.Modbus {
		s := &cfg.Sources.Modbus[i]
		setInt(&s.TimeoutMs, DefaultModbusTimeoutMs)
		setInt(&s.IntervalMs, DefaultModbusIntervalMs)

		// Serial framing only matters for RTU endpoints.
		if !s.IsRTU() {
			continue
		}
		setInt(&s.BaudRate, DefaultBaudRate)
		setInt(&s.DataBits, DefaultDataBits)
		setString(&s.Parity, DefaultParity)
		setInt(&s.StopBits, DefaultStopBits)
	}
}

// IsRTU reports whether the endpoint is a serial device path.
func (m ModbusConfig) IsRTU() bool {
	return len(m.Endpoint) > 0 && m.Endpoint[0] == '/'
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
