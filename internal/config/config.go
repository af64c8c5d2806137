// Package config provides Viper-based configuration loading for Helios.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// CombatConfig holds combat engine settings.
type CombatConfig struct {
	// DieSides is the number of faces on a combat die.
	DieSides int `mapstructure:"die_sides"`
}

// ContentConfig holds content directory locations.
type ContentConfig struct {
	// UnitsDir is the directory of unit template YAML files.
	UnitsDir string `mapstructure:"units_dir"`
	// ScenariosDir is the directory of scenario YAML files.
	ScenariosDir string `mapstructure:"scenarios_dir"`
}

// SimulatorConfig holds combat simulator settings.
type SimulatorConfig struct {
	// Iterations is the number of combats to resolve per run.
	Iterations int `mapstructure:"iterations"`
	// Seed seeds the dice source; 0 selects the crypto source.
	Seed int64 `mapstructure:"seed"`
	// Scenario is the scenario ID to simulate.
	Scenario string `mapstructure:"scenario"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Combat    CombatConfig    `mapstructure:"combat"`
	Content   ContentConfig   `mapstructure:"content"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulator(c.Simulator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	if c.DieSides < 2 {
		return fmt.Errorf("combat.die_sides must be >= 2, got %d", c.DieSides)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.UnitsDir == "" {
		errs = append(errs, "content.units_dir must not be empty")
	}
	if c.ScenariosDir == "" {
		errs = append(errs, "content.scenarios_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulator(s SimulatorConfig) error {
	var errs []string
	if s.Iterations < 1 {
		errs = append(errs, fmt.Sprintf("simulator.iterations must be >= 1, got %d", s.Iterations))
	}
	if s.Scenario == "" {
		errs = append(errs, "simulator.scenario must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with HELIOS_ prefix
	v.SetEnvPrefix("HELIOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("combat.die_sides", 10)

	v.SetDefault("content.units_dir", "content/units")
	v.SetDefault("content.scenarios_dir", "content/scenarios")

	v.SetDefault("simulator.iterations", 1000)
	v.SetDefault("simulator.seed", 0)
	v.SetDefault("simulator.scenario", "frontier-clash")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
