package ioc

import (
	"errors"
	"io/fs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"nbrsnap/internal/adapter"
	"nbrsnap/internal/collector"
	"nbrsnap/internal/config"
	"nbrsnap/internal/credential"
	"nbrsnap/internal/extract"
	"nbrsnap/internal/metrics"
	"nbrsnap/internal/preflight"
	"nbrsnap/internal/profile"
)

// Username is the login name used for devices without their own
type Username string

// InitPrometheusRegistry creates the registry served on /metrics
func InitPrometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// InitMetrics registers the collection metrics
func InitMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// InitUsername picks the username from the flag, the config or a prompt.
// Without a terminal an unset username is left empty; devices then fail
// authentication individually.
func InitUsername(cfg *config.Config, opts Options) (Username, error) {
	var reader credential.Reader
	if opts.Interactive {
		reader = credential.Terminal{}
	}
	name, err := credential.Username(reader, opts.Username, cfg.Credentials.Username)
	if errors.Is(err, credential.ErrNoUsername) && !opts.Interactive {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Username(name), nil
}

// InitSecrets chains the password sources: the --password flag, the
// environment and, when interactive, a masked prompt. Each username is
// resolved once per process.
func InitSecrets(opts Options) credential.Provider {
	chain := credential.Chain{}
	if opts.Password != "" {
		chain = append(chain, credential.Static(opts.Password))
	}
	chain = append(chain, credential.Env{Var: credential.EnvPassword})
	if opts.Interactive {
		chain = append(chain, credential.NewPrompt(credential.Terminal{}))
	}
	return credential.NewCached(chain)
}

// InitProfiles loads the eAPI connection profiles. A missing file yields
// an empty store.
func InitProfiles(cfg *config.Config, logger *zap.Logger) (*profile.Store, error) {
	store, err := profile.Load(cfg.EOS.Profiles)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no eapi profiles", zap.String("path", cfg.EOS.Profiles))
		return &profile.Store{Connections: map[string]profile.Profile{}}, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("loaded eapi profiles",
		zap.String("path", cfg.EOS.Profiles), zap.Strings("connections", store.Names()))
	return store, nil
}

// InitRegistry registers one driver per supported vendor tag
func InitRegistry(cfg *config.Config, username Username, secrets credential.Provider, profiles *profile.Store) (*adapter.Registry, error) {
	user := string(username)
	registry := adapter.NewRegistry()

	nxos := adapter.NewNXAPIClient(user, secrets, adapter.NXAPIConfig{
		Port:      cfg.NXOS.Port,
		Scheme:    cfg.NXOS.Scheme,
		Timeout:   cfg.NXOS.Timeout.Duration(),
		VerifyTLS: cfg.NXOS.VerifyTLS,
	})
	ios := adapter.NewIOSClient(user, secrets, adapter.SSHConfig{
		Port:           cfg.IOS.Port,
		Timeout:        cfg.IOS.Timeout.Duration(),
		CommandTimeout: cfg.IOS.CommandTimeout.Duration(),
	})
	eos := adapter.NewEAPIClient(profiles, user, secrets, adapter.EAPIConfig{
		Timeout:   cfg.EOS.Timeout.Duration(),
		VerifyTLS: cfg.EOS.VerifyTLS,
	})

	drivers := []struct {
		client adapter.DeviceClient
		fn     extract.Func
	}{
		{nxos, extract.NXOS},
		{ios, extract.IOS},
		{eos, extract.EOS},
	}
	if cfg.SNMP.Enabled {
		snmp := adapter.NewSNMPClient(adapter.SNMPConfig{
			Community: cfg.SNMP.Community,
			Port:      uint16(cfg.SNMP.Port),
			Timeout:   cfg.SNMP.Timeout.Duration(),
			Retries:   cfg.SNMP.Retries,
		})
		drivers = append(drivers, struct {
			client adapter.DeviceClient
			fn     extract.Func
		}{snmp, extract.LLDPMIB})
	}

	for _, d := range drivers {
		if err := registry.Register(d.client, d.fn); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// InitPreflight returns the configured port probe, or nil when disabled
func InitPreflight(cfg *config.Config, logger *zap.Logger) preflight.Prober {
	if !cfg.Preflight.Enabled {
		return nil
	}
	timeout := cfg.Preflight.Timeout.Duration()
	if cfg.Preflight.Method == config.PreflightDial {
		return preflight.DialProber{Timeout: timeout}
	}
	return preflight.NewNmapProber(
		preflight.WithTimeout(timeout),
		preflight.WithLogger(logger),
	)
}

// InitCollector builds the device collector
func InitCollector(cfg *config.Config, registry *adapter.Registry, prober preflight.Prober, m *metrics.Metrics, logger *zap.Logger) *collector.Collector {
	return collector.New(registry,
		collector.WithMaxConcurrent(cfg.Collector.MaxConcurrent),
		collector.WithDeviceTimeout(cfg.Collector.DeviceTimeout.Duration()),
		collector.WithPreflight(prober),
		collector.WithMetrics(m),
		collector.WithLogger(logger),
	)
}
