package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set by the build through -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Config holds the CLI defaults that can be kept in a file instead of being
// repeated as flags.
//
//	adapter: generic
//	device: /dev/i2c-1
//	address: high
//	speed: 100000
type Config struct {
	Adapter string `yaml:"adapter"`
	Device  string `yaml:"device"`
	Bus     int    `yaml:"bus"`
	Address string `yaml:"address"`
	Speed   int    `yaml:"speed"`
}

func Default() Config {
	return Config{
		Adapter: "mcp2221",
		Device:  "/dev/i2c-1",
		Bus:     -1,
		Address: "low",
		Speed:   100_000,
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config %s: %w", path, err)
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseAddress accepts the pin strap names "low" and "high" (or "l", "h") or
// a 7-bit address in hex, with or without the 0x prefix.
func ParseAddress(value string, low, high byte) (byte, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "l", "low", "gnd":
		return low, nil
	case "h", "high", "vcc":
		return high, nil
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(v, "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", value, err)
	}
	if addr > 0x7F {
		return 0, fmt.Errorf("invalid address %q: not a 7-bit address", value)
	}
	return byte(addr), nil
}
