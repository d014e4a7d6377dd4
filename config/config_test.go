package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vesta_dao/contract"
	"vesta_dao/sdk"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv registers the restore, Unsetenv clears for the lookup
	for _, k := range []string{"VESTAD_DATA_DIR", "VESTAD_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data", c.DataDir)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VESTAD_DATA_DIR", "/var/lib/vestad")
	t.Setenv("VESTAD_LOG_LEVEL", "debug")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/vestad", c.DataDir)
	assert.Equal(t, "debug", c.LogLevel)
}

const genesisYAML = `
creator: user:alice
timestamp: 100
params:
  support_threshold_bps: 2000
  quorum_bps: 5100
  max_proposal_age: 1000
  election_duration: 100
  vesting_period: 50
  token_sale_price: 2
  allow_minting: true
  mint_on_purchase: true
holders:
  user:alice: 100
  user:bob: 50
native_balances:
  user:carol: 500
`

func TestLoadGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(genesisYAML), 0o644))

	g, err := LoadGenesis(path)
	require.NoError(t, err)
	assert.Equal(t, "user:alice", g.Creator)
	assert.Equal(t, int64(100), g.Timestamp)

	cfg := g.EngineConfig()
	assert.Equal(t, uint32(2000), cfg.SupportThresholdBps)
	assert.Equal(t, uint32(5100), cfg.QuorumBps)
	assert.Equal(t, int64(50), cfg.VestingPeriod)
	assert.Equal(t, contract.Amount(2), cfg.TokenSalePrice)
	assert.True(t, cfg.Flags.Has(contract.FlagAllowMinting))
	assert.True(t, cfg.Flags.Has(contract.FlagMintOnPurchase))
	assert.False(t, cfg.Flags.Has(contract.FlagHoldersOnlyPurchase))

	holders := g.HolderAllocations()
	assert.Equal(t, contract.Amount(100), holders[sdk.Address("user:alice")])
	assert.Equal(t, contract.Amount(50), holders[sdk.Address("user:bob")])
}

func TestLoadGenesisRequiresCreator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params: {}\n"), 0o644))
	_, err := LoadGenesis(path)
	assert.Error(t, err)
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := LoadGenesis(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
