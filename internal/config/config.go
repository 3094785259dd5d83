// Package config provides configuration management for nbrsnap.
//
// The file carries everything a run needs except passwords: where the
// inventory lives, how each vendor is reached, and which sinks a snapshot
// is written to. Command-line flags override file values.
//
// Config file locations (priority order):
//  1. $NBRSNAP_CONFIG
//  2. ./nbrsnap.yaml
//  3. $XDG_CONFIG_HOME/nbrsnap/config.yaml, else ~/.config/nbrsnap/config.yaml
//  4. /etc/nbrsnap/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatStatus = "status"
	FormatPlain  = "plain"
	FormatYAML   = "yaml"
)

// Preflight methods
const (
	PreflightNmap = "nmap"
	PreflightDial = "dial"
)

// DefaultSchedule collects once a day
const DefaultSchedule = "0 6 * * *"

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Inventory.Path == "" {
		c.Inventory.Path = "inventory.csv"
	}
	if c.Inventory.Debounce == 0 {
		c.Inventory.Debounce = Duration(2 * time.Second)
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatStatus
	}

	// Sequential unless asked otherwise
	if c.Collector.MaxConcurrent <= 0 {
		c.Collector.MaxConcurrent = 1
	}
	if c.Collector.DeviceTimeout == 0 {
		c.Collector.DeviceTimeout = Duration(2 * time.Minute)
	}

	if c.NXOS.Port == 0 {
		c.NXOS.Port = 8443
	}
	if c.NXOS.Scheme == "" {
		c.NXOS.Scheme = "https"
	}
	if c.NXOS.Timeout == 0 {
		c.NXOS.Timeout = Duration(30 * time.Second)
	}

	if c.IOS.Port == 0 {
		c.IOS.Port = 22
	}
	if c.IOS.Timeout == 0 {
		c.IOS.Timeout = Duration(15 * time.Second)
	}
	if c.IOS.CommandTimeout == 0 {
		c.IOS.CommandTimeout = Duration(30 * time.Second)
	}

	if c.EOS.Profiles == "" {
		c.EOS.Profiles = DefaultProfilesPath()
	}
	if c.EOS.Timeout == 0 {
		c.EOS.Timeout = Duration(30 * time.Second)
	}

	if c.SNMP.Community == "" {
		c.SNMP.Community = "public"
	}
	if c.SNMP.Port == 0 {
		c.SNMP.Port = 161
	}
	if c.SNMP.Timeout == 0 {
		c.SNMP.Timeout = Duration(2 * time.Second)
	}

	if c.Preflight.Method == "" {
		c.Preflight.Method = PreflightNmap
	}
	if c.Preflight.Timeout == 0 {
		c.Preflight.Timeout = Duration(5 * time.Second)
	}

	if c.Database.Path == "" {
		c.Database.Path = "./nbrsnap.db"
	}

	if c.Neo4j.URI == "" {
		c.Neo4j.URI = "neo4j://localhost:7687"
	}
	if c.Neo4j.Username == "" {
		c.Neo4j.Username = "neo4j"
	}
	if c.Neo4j.Timeout == 0 {
		c.Neo4j.Timeout = Duration(10 * time.Second)
	}

	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultSchedule
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case FormatStatus, FormatPlain, FormatYAML:
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}

	switch c.Preflight.Method {
	case PreflightNmap, PreflightDial:
	default:
		return fmt.Errorf("preflight.method: unknown method %q", c.Preflight.Method)
	}

	switch strings.ToLower(c.NXOS.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("nxos.scheme: unsupported scheme %q", c.NXOS.Scheme)
	}

	if c.SNMP.Port > 65535 || c.SNMP.Port < 0 {
		return fmt.Errorf("snmp.port: %d out of range", c.SNMP.Port)
	}

	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron: %w", err)
	}

	if c.Database.Retain < 0 {
		return fmt.Errorf("database.retain: must not be negative")
	}

	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	sinks := []string{"file"}
	if c.Database.Enabled {
		sinks = append(sinks, "sqlite")
	}
	if c.Neo4j.Enabled {
		sinks = append(sinks, "neo4j")
	}

	summary := fmt.Sprintf("Inventory: %s, Output: %s (%s)\n", c.Inventory.Path, c.Output.Dir, c.Output.Format)
	summary += fmt.Sprintf("Concurrency: %d, Device timeout: %s, Preflight: %v\n",
		c.Collector.MaxConcurrent, c.Collector.DeviceTimeout.Duration(), c.Preflight.Enabled)
	summary += fmt.Sprintf("Sinks: %s", strings.Join(sinks, ", "))

	return summary
}
