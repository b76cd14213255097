// internal/config/config.go
package config

type Config struct {
	Manager ManagerConfig `yaml:"manager"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Sources SourcesConfig `yaml:"sources"`
}

// ---- MANAGER ----

type ManagerConfig struct {
	Endpoint string `yaml:"endpoint"` // unix socket path
	LogPath  string `yaml:"log_path"` // fault log file
	LogMode  string `yaml:"log_mode"` // per_append | persistent
	Timezone string `yaml:"timezone"` // local | UTC | IANA name

	FaultCode *int `yaml:"fault_code"` // nil => 15

	MaxMessage int `yaml:"max_message"` // request body bound
	MaxWrite   int `yaml:"max_write"`   // write buffer bound; 0 => max_message
	QueueDepth int `yaml:"queue_depth"` // dispatch queue
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty => disabled
}

// ---- SOURCES ----

type SourcesConfig struct {
	NATS   *NATSConfig    `yaml:"nats"`
	Modbus []ModbusConfig `yaml:"modbus"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ModbusConfig is one field device exposing a fault mailbox.
type ModbusConfig struct {
	ID         string `yaml:"id"`
	Endpoint   string `yaml:"endpoint"` // host:port (TCP) or /dev/... (RTU)
	UnitID     uint8  `yaml:"unit_id"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	IntervalMs int    `yaml:"interval_ms"`
	Address    uint16 `yaml:"address"` // first mailbox holding register

	// RTU only
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // N | E | O
	StopBits int    `yaml:"stop_bits"`
}
