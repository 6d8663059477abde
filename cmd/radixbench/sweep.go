package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/LideDing/rocPRIM/device"
)

// sweepConfig is the TOML shape of a case sweep. Example:
//
//	max-size    = 100000
//	extra-sizes = 4
//
//	[[case]]
//	keys      = "uint32"
//	values    = "uint64"
//	start-bit = 8
//	end-bit   = 20
//	descending = true
type sweepConfig struct {
	MaxSize    int         `toml:"max-size"`
	ExtraSizes int         `toml:"extra-sizes"`
	Cases      []sweepCase `toml:"case"`
}

type sweepCase struct {
	Keys       string `toml:"keys"`
	Values     string `toml:"values"`
	StartBit   int    `toml:"start-bit"`
	EndBit     int    `toml:"end-bit"`
	Descending bool   `toml:"descending"`
}

// resolved carries a parsed case ready to run
type resolvedCase struct {
	keys       device.DataType
	values     device.DataType // None for a keys-only case
	startBit   int
	endBit     int
	descending bool
}

func (c resolvedCase) String() string {
	dir := "asc"
	if c.descending {
		dir = "desc"
	}
	if c.values == device.None {
		return fmt.Sprintf("keys=%v bits=[%d,%d) %s", c.keys, c.startBit, c.endBit, dir)
	}
	return fmt.Sprintf("keys=%v values=%v bits=[%d,%d) %s",
		c.keys, c.values, c.startBit, c.endBit, dir)
}

// defaultSweep is the built-in case matrix, mirroring the correctness test
// coverage: every key type, key-only and pair variants, full and partial
// windows, both directions
func defaultSweep() sweepConfig {
	return sweepConfig{
		MaxSize:    200000,
		ExtraSizes: 2,
		Cases: []sweepCase{
			{Keys: "uint8"},
			{Keys: "uint16", Descending: true},
			{Keys: "uint32"},
			{Keys: "uint32", StartBit: 0, EndBit: 15, Descending: true},
			{Keys: "uint64", StartBit: 8, EndBit: 20},
			{Keys: "int8"},
			{Keys: "int16", StartBit: 1, EndBit: 13, Descending: true},
			{Keys: "int32"},
			{Keys: "int64", Descending: true},
			{Keys: "float32"},
			{Keys: "float64", StartBit: 4, EndBit: 37},
			{Keys: "uint32", Values: "uint64"},
			{Keys: "uint64", Values: "uint64", Descending: true},
			{Keys: "float32", Values: "uint64"},
			{Keys: "int64", Values: "uint64", StartBit: 0, EndBit: 40},
		},
	}
}

// loadSweep reads the sweep description: the TOML file when given, otherwise
// the built-in matrix
func loadSweep(path string) (sweepConfig, []resolvedCase, error) {
	cfg := defaultSweep()
	if path != "" {
		cfg = sweepConfig{MaxSize: 200000, ExtraSizes: 2}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, nil, fmt.Errorf("reading sweep file %s: %w", path, err)
		}
		if len(cfg.Cases) == 0 {
			return cfg, nil, fmt.Errorf("sweep file %s defines no cases", path)
		}
	}

	resolved := make([]resolvedCase, 0, len(cfg.Cases))
	for i, c := range cfg.Cases {
		keys, err := device.ParseDataType(c.Keys)
		if err != nil {
			return cfg, nil, fmt.Errorf("case %d: %w", i, err)
		}
		values := device.None
		if c.Values != "" {
			if values, err = device.ParseDataType(c.Values); err != nil {
				return cfg, nil, fmt.Errorf("case %d: %w", i, err)
			}
		}
		endBit := c.EndBit
		if endBit == 0 {
			endBit = keys.Bits()
		}
		if c.StartBit < 0 || c.StartBit >= endBit || endBit > keys.Bits() {
			return cfg, nil, fmt.Errorf("case %d: bit window [%d,%d) for %v keys",
				i, c.StartBit, endBit, keys)
		}
		resolved = append(resolved, resolvedCase{
			keys:       keys,
			values:     values,
			startBit:   c.StartBit,
			endBit:     endBit,
			descending: c.Descending,
		})
	}
	return cfg, resolved, nil
}

// deviceConfigs resolves the --device flag into the config chain to try
func deviceConfigs() []string {
	if deviceConfig != "" {
		return []string{deviceConfig}
	}
	return nil
}
