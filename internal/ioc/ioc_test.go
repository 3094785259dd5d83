package ioc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"nbrsnap/internal/config"
	"nbrsnap/internal/credential"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/preflight"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nbrsnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
inventory:
  path: from-file.csv
output:
  format: yaml
database:
  enabled: true
neo4j:
  enabled: true
`)

	cfg, err := InitConfig(Options{
		ConfigPath: path,
		Inventory:  "hosts.yml",
		OutputDir:  "/tmp/out",
		Format:     "PLAIN",
		NoStore:    true,
		Quiet:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hosts.yml", cfg.Inventory.Path)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, config.FormatPlain, cfg.Output.Format)
	assert.True(t, cfg.Output.Quiet)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Neo4j.Enabled)
}

func TestInitConfig_InvalidOverride(t *testing.T) {
	_, err := InitConfig(Options{ConfigPath: writeConfig(t, "{}\n"), Format: "xml"})
	assert.Error(t, err)
}

func TestInitUsername(t *testing.T) {
	cfg := config.DefaultConfig()

	name, err := InitUsername(cfg, Options{Username: "admin"})
	require.NoError(t, err)
	assert.Equal(t, Username("admin"), name)

	cfg.Credentials.Username = "netops"
	name, err = InitUsername(cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, Username("netops"), name)

	cfg.Credentials.Username = ""
	name, err = InitUsername(cfg, Options{})
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestInitSecrets(t *testing.T) {
	t.Setenv(credential.EnvPassword, "from-env")

	secret, err := InitSecrets(Options{Password: "from-flag"}).Resolve(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", secret)

	secret, err = InitSecrets(Options{}).Resolve(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "from-env", secret)

	t.Setenv(credential.EnvPassword, "")
	_, err = InitSecrets(Options{}).Resolve(context.Background(), "admin")
	assert.ErrorIs(t, err, credential.ErrNoSecret)
}

func TestInitProfiles(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EOS.Profiles = filepath.Join(t.TempDir(), "missing.yaml")

	store, err := InitProfiles(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, store.Names())

	cfg.EOS.Profiles = writeConfig(t, "connections:\n  leaf2:\n    host: 10.0.0.10\n  leaf1:\n    host: 10.0.0.9\n")
	core, logs := observer.New(zap.InfoLevel)
	store, err = InitProfiles(cfg, zap.New(core))
	require.NoError(t, err)
	p, err := store.Lookup("leaf1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", p.Host)

	loaded := logs.FilterMessage("loaded eapi profiles").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, []interface{}{"leaf1", "leaf2"}, loaded[0].ContextMap()["connections"])
}

func TestInitRegistry(t *testing.T) {
	cfg := config.DefaultConfig()
	secrets := credential.Static("secret")

	registry, err := InitRegistry(cfg, "admin", secrets, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.Vendor{domain.VendorEOS, domain.VendorIOS, domain.VendorNXOS}, registry.Vendors())

	cfg.SNMP.Enabled = true
	registry, err = InitRegistry(cfg, "admin", secrets, nil)
	require.NoError(t, err)
	_, ok := registry.Lookup(domain.VendorLLDPSNMP)
	assert.True(t, ok)
}

func TestInitPreflight(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Nil(t, InitPreflight(cfg, zap.NewNop()))

	cfg.Preflight.Enabled = true
	assert.IsType(t, &preflight.NmapProber{}, InitPreflight(cfg, zap.NewNop()))

	cfg.Preflight.Method = config.PreflightDial
	assert.IsType(t, preflight.DialProber{}, InitPreflight(cfg, zap.NewNop()))
}

func TestInitRepository(t *testing.T) {
	cfg := config.DefaultConfig()

	repo, cleanup, err := InitRepository(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, repo)
	cleanup()

	cfg.Database.Enabled = true
	cfg.Database.Path = filepath.Join(t.TempDir(), "history.db")
	repo, cleanup, err = InitRepository(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, repo)
	cleanup()
}

func TestServiceOptions_SkipsDisabledSinks(t *testing.T) {
	cfg := config.DefaultConfig()
	opts, err := serviceOptions(cfg, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	cfg.Output.Format = "xml"
	_, err = serviceOptions(cfg, nil, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestInitScheduler(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Nil(t, InitScheduler(cfg, nil, zap.NewNop()))

	cfg.Schedule.Enabled = true
	assert.NotNil(t, InitScheduler(cfg, nil, zap.NewNop()))
}
