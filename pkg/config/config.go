// Package config carries runtime settings for the launch engine and its CLI.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ninja0404/curve-launchpad/pkg/constants"
)

// LaunchParams is the parameter template seeded into the global config at
// initialization.
type LaunchParams struct {
	InitialVirtualTokenReserves uint64 `mapstructure:"initial_virtual_token_reserves"`
	InitialVirtualSolReserves   uint64 `mapstructure:"initial_virtual_sol_reserves"`
	InitialRealTokenReserves    uint64 `mapstructure:"initial_real_token_reserves"`
	InitialTokenSupply          uint64 `mapstructure:"initial_token_supply"`
	FeeBasisPoints              uint64 `mapstructure:"fee_basis_points"`
}

// ServiceParams controls engine intake throttling.
type ServiceParams struct {
	RPS     float64       `mapstructure:"rps"`
	Burst   int           `mapstructure:"burst"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EngineConfig aggregates runtime settings for a hosted engine.
type EngineConfig struct {
	// StorePath is the leveldb directory for record custody; empty selects
	// the in-memory store.
	StorePath string        `mapstructure:"store_path"`
	Launch    LaunchParams  `mapstructure:"launch"`
	Service   ServiceParams `mapstructure:"service"`
	Logger    zerolog.Logger
}

// DefaultEngineConfig yields the reference deployment parameters.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Launch: LaunchParams{
			InitialVirtualTokenReserves: constants.DefaultInitialVirtualTokenReserves,
			InitialVirtualSolReserves:   constants.DefaultInitialVirtualSolReserves,
			InitialRealTokenReserves:    constants.DefaultInitialRealTokenReserves,
			InitialTokenSupply:          constants.DefaultInitialTokenSupply,
			FeeBasisPoints:              constants.DefaultFeeBasisPoints,
		},
		Service: ServiceParams{
			RPS:     0,
			Timeout: 20 * time.Second,
		},
		Logger: zerolog.New(io.Discard),
	}
}

// Load reads an engine config file (yaml/toml/json by extension), layered
// over the defaults. An empty path returns the defaults unchanged.
func Load(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
