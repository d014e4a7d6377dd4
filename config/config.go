// Package config loads host configuration from the environment and genesis
// files from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"vesta_dao/contract"
	"vesta_dao/sdk"
)

// Config is the host-level configuration, read from VESTAD_* environment
// variables.
type Config struct {
	DataDir  string `envconfig:"DATA_DIR" default:"./data"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("vestad", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &c, nil
}

// Genesis describes a fresh governance instance: creator, parameters and
// initial allocations.
type Genesis struct {
	Creator        string           `yaml:"creator"`
	Timestamp      int64            `yaml:"timestamp"`
	Tx             string           `yaml:"tx"`
	Params         Params           `yaml:"params"`
	Holders        map[string]int64 `yaml:"holders"`
	NativeBalances map[string]int64 `yaml:"native_balances"`
}

// Params mirrors contract.Config in YAML-friendly form.
type Params struct {
	SupportThresholdBps uint32 `yaml:"support_threshold_bps"`
	QuorumBps           uint32 `yaml:"quorum_bps"`
	MaxProposalAge      int64  `yaml:"max_proposal_age"`
	ElectionDuration    int64  `yaml:"election_duration"`
	VestingPeriod       int64  `yaml:"vesting_period"`
	TokenSalePrice      int64  `yaml:"token_sale_price"`
	AllowMinting        bool   `yaml:"allow_minting"`
	HoldersOnlyPurchase bool   `yaml:"holders_only_purchase"`
	MintOnPurchase      bool   `yaml:"mint_on_purchase"`
	MaxVestingEntries   uint32 `yaml:"max_vesting_entries"`
}

// LoadGenesis parses a genesis YAML file.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	var g Genesis
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("parse genesis: %w", err)
	}
	if g.Creator == "" {
		return nil, fmt.Errorf("genesis: creator is required")
	}
	return &g, nil
}

// EngineConfig converts the YAML parameters to the engine's config struct.
func (g *Genesis) EngineConfig() contract.Config {
	var flags contract.Flags
	if g.Params.AllowMinting {
		flags |= contract.FlagAllowMinting
	}
	if g.Params.HoldersOnlyPurchase {
		flags |= contract.FlagHoldersOnlyPurchase
	}
	if g.Params.MintOnPurchase {
		flags |= contract.FlagMintOnPurchase
	}
	return contract.Config{
		SupportThresholdBps: g.Params.SupportThresholdBps,
		QuorumBps:           g.Params.QuorumBps,
		MaxProposalAge:      g.Params.MaxProposalAge,
		ElectionDuration:    g.Params.ElectionDuration,
		VestingPeriod:       g.Params.VestingPeriod,
		TokenSalePrice:      contract.Amount(g.Params.TokenSalePrice),
		Flags:               flags,
		MaxVestingEntries:   g.Params.MaxVestingEntries,
	}
}

// HolderAllocations converts the governance allocation map to engine types.
func (g *Genesis) HolderAllocations() map[sdk.Address]contract.Amount {
	out := make(map[sdk.Address]contract.Amount, len(g.Holders))
	for a, v := range g.Holders {
		out[sdk.Address(a)] = contract.Amount(v)
	}
	return out
}
