package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Inventory   InventoryConfig   `yaml:"inventory"`
	Output      OutputConfig      `yaml:"output"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Collector   CollectorConfig   `yaml:"collector"`
	NXOS        NXOSConfig        `yaml:"nxos"`
	IOS         IOSConfig         `yaml:"ios"`
	EOS         EOSConfig         `yaml:"eos"`
	SNMP        SNMPConfig        `yaml:"snmp"`
	Preflight   PreflightConfig   `yaml:"preflight"`
	Database    DatabaseConfig    `yaml:"database"`
	Neo4j       Neo4jConfig       `yaml:"neo4j"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
}

// InventoryConfig names the device list
type InventoryConfig struct {
	Path     string   `yaml:"path"`
	Watch    bool     `yaml:"watch"`    // re-collect when the file changes (serve only)
	Debounce Duration `yaml:"debounce"` // quiet period before a change triggers a run
}

// OutputConfig controls the dated snapshot file and the console dump
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // status, plain or yaml
	Quiet  bool   `yaml:"quiet"`  // skip the console dump
}

// CredentialsConfig holds the login name. Passwords never live in the file.
type CredentialsConfig struct {
	Username string `yaml:"username"`
}

// CollectorConfig bounds a collection run
type CollectorConfig struct {
	MaxConcurrent int      `yaml:"max_concurrent"`
	DeviceTimeout Duration `yaml:"device_timeout"`
}

// NXOSConfig configures the NX-API client
type NXOSConfig struct {
	Port      int      `yaml:"port"`
	Scheme    string   `yaml:"scheme"`
	Timeout   Duration `yaml:"timeout"`
	VerifyTLS bool     `yaml:"verify_tls"`
}

// IOSConfig configures the SSH CLI client
type IOSConfig struct {
	Port           int      `yaml:"port"`
	Timeout        Duration `yaml:"timeout"`
	CommandTimeout Duration `yaml:"command_timeout"`
}

// EOSConfig configures the eAPI client
type EOSConfig struct {
	Profiles  string   `yaml:"profiles"`
	Timeout   Duration `yaml:"timeout"`
	VerifyTLS bool     `yaml:"verify_tls"`
}

// SNMPConfig configures the LLDP-MIB walker
type SNMPConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Community string   `yaml:"community"`
	Port      int      `yaml:"port"`
	Timeout   Duration `yaml:"timeout"`
	Retries   int      `yaml:"retries"`
}

// PreflightConfig controls the port probe run before each device
type PreflightConfig struct {
	Enabled bool     `yaml:"enabled"`
	Method  string   `yaml:"method"` // nmap or dial
	Timeout Duration `yaml:"timeout"`
}

// DatabaseConfig holds the snapshot history settings
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Retain  int    `yaml:"retain"` // snapshots kept, 0 keeps all
}

// Neo4jConfig holds the topology sink settings
type Neo4jConfig struct {
	Enabled  bool     `yaml:"enabled"`
	URI      string   `yaml:"uri"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Database string   `yaml:"database"`
	Timeout  Duration `yaml:"timeout"`
}

// ScheduleConfig drives periodic collection in serve mode
type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// HTTPConfig holds the API listener settings
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // console or json
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
