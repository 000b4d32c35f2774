package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/v2g-planner/core/metrics"
	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/infra/mqtt"
)

type Config struct {
	Battery model.Params   `json:"battery"`
	Solver  SolverConfig   `json:"solver"`
	Planner PlannerConfig  `json:"planner"`
	Metrics metrics.Config `json:"metrics"`
	Journal JournalConfig  `json:"journal"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Sentry  SentryConfig   `json:"sentry"`
	API     APIConfig      `json:"api"`
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	cfg := &Config{Battery: model.DefaultParams()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Planner.SetDefaults()
	c.Journal.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validateBattery(c.Battery); err != nil {
		return err
	}
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if err := c.Planner.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	return c.MQTT.Validate()
}

// Load reads a yaml or json file and applies K_ prefixed environment
// overrides, e.g. K_BATTERY__INITIAL_SOC=20. An empty path loads the
// defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Config{Battery: model.DefaultParams()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateBattery(p model.Params) error {
	switch {
	case p.BatteryCapacity <= 0:
		return fmt.Errorf("battery.battery_capacity must be positive")
	case p.MaxChargeRate < 0 || p.MaxDischargeRate < 0:
		return fmt.Errorf("battery rates must not be negative")
	case p.InitialSoC < 0 || p.InitialSoC > p.BatteryCapacity:
		return fmt.Errorf("battery.initial_soc must lie in [0, capacity]")
	}
	return nil
}
