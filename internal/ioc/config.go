// Package ioc holds the providers that assemble nbrsnap's object graph.
// The serve and collect injectors in cmd/nbrsnap are generated from them.
package ioc

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nbrsnap/internal/config"
	"nbrsnap/internal/logging"
)

// Options carries the command-line values that shape the object graph
type Options struct {
	ConfigPath  string
	Verbose     bool
	Inventory   string
	OutputDir   string
	Format      string
	Username    string
	Password    string
	NoStore     bool
	Quiet       bool
	Interactive bool // prompt for a missing username or password
}

// InitConfig loads the config file and applies command-line overrides
func InitConfig(opts Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, _, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.Inventory != "" {
		cfg.Inventory.Path = opts.Inventory
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	if opts.Format != "" {
		cfg.Output.Format = strings.ToLower(opts.Format)
	}
	if opts.NoStore {
		cfg.Database.Enabled = false
		cfg.Neo4j.Enabled = false
	}
	if opts.Quiet {
		cfg.Output.Quiet = true
	}
	cfg.EOS.Profiles = config.ExpandHome(cfg.EOS.Profiles)
	cfg.Database.Path = config.ExpandHome(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// InitLogger builds the logger and returns its flush as cleanup
func InitLogger(cfg *config.Config, opts Options) (*zap.Logger, func(), error) {
	logger, err := logging.New(logging.Options{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Verbose:  opts.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}
