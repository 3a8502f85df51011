package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/config"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
ledger:
  network: "eip155:1"
  admin: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
bridge:
  controller_address: "0x52908400098527886E0F7030069857D2E4169EE7"
`

func TestLoadRegistrydConfig_Defaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := config.LoadRegistrydConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "REGISTRY_EVENTS", cfg.NATS.EventStreamName)
	assert.Equal(t, "RELAY", cfg.NATS.RelayStreamName)
	assert.Equal(t, "registryd", cfg.NATS.ConsumerName)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.Equal(t, 30*time.Second, cfg.NATS.AckWait)
	assert.Equal(t, uint64(400000), cfg.Bridge.GasLimit)
	assert.Equal(t, uint64(100), cfg.Bridge.BaseFee)
	assert.Equal(t, uint64(1), cfg.Bridge.FeePerByte)
	assert.Equal(t, domain.NetworkEthereumMainnet, cfg.Ledger.Network)
}

func TestLoadRegistrydConfig_Full(t *testing.T) {
	path := writeConfig(t, `
debug: true
database:
  host: db.internal
  port: 5433
  user: registry
  password: secret
  dbname: kittyconnect
  sslmode: require
nats:
  url: "nats://broker:4222"
  consumer_name: "registryd-base"
ledger:
  network: "eip155:8453"
  admin: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
  allowlist_path: "config/allowlist.json"
bridge:
  controller_address: "0x52908400098527886E0F7030069857D2E4169EE7"
  gas_limit: 250000
  fee_token: "0x6B175474E89094C44Da98b954EedeAC495271d0F"
  fee_balance: 1000
server:
  port: 9090
auth:
  api_keys:
    - key-one
    - key-two
`)

	cfg, err := config.LoadRegistrydConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, domain.NetworkBaseMainnet, cfg.Ledger.Network)
	assert.Equal(t, "config/allowlist.json", cfg.Ledger.AllowlistPath)
	assert.Equal(t, uint64(250000), cfg.Bridge.GasLimit)
	assert.Equal(t, uint64(1000), cfg.Bridge.FeeBalance)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Auth.APIKeys)

	dsn := cfg.Database.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=kittyconnect")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestLoadRegistrydConfig_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing admin",
			content: `
ledger:
  network: "eip155:1"
bridge:
  controller_address: "0x52908400098527886E0F7030069857D2E4169EE7"
`,
			wantErr: "ledger.admin is required",
		},
		{
			name: "missing controller address",
			content: `
ledger:
  network: "eip155:1"
  admin: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
`,
			wantErr: "bridge.controller_address is required",
		},
		{
			name: "malformed network",
			content: `
ledger:
  network: "mainnet"
  admin: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
bridge:
  controller_address: "0x52908400098527886E0F7030069857D2E4169EE7"
`,
			wantErr: "ledger.network is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.LoadRegistrydConfig(path, t.TempDir())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadRegistrydConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	t.Setenv("KC_REGISTRY_SERVER_PORT", "7070")
	t.Setenv("KC_REGISTRY_BRIDGE_GAS_LIMIT", "123456")

	cfg, err := config.LoadRegistrydConfig(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, uint64(123456), cfg.Bridge.GasLimit)
}
