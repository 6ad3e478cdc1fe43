// Package config provides Viper-based configuration loading for the combat
// engine and its simulation driver.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig points at the catalog directories loaded once at startup.
type ContentConfig struct {
	// AbilitiesDir holds ability definition YAML files.
	AbilitiesDir string `mapstructure:"abilities_dir"`
	// EffectsDir holds status effect definition YAML files.
	EffectsDir string `mapstructure:"effects_dir"`
	// ProfilesDir holds AI profile YAML files; builtins are always present.
	ProfilesDir string `mapstructure:"profiles_dir"`
	// ScriptsDir holds Lua effect hook scripts; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// EngineConfig holds combat tuning overrides and AI knobs.
type EngineConfig struct {
	// Seed selects a deterministic randomness source; 0 uses crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// RoundLimit caps encounter length; hitting it is a draw. 0 disables
	// the cap.
	RoundLimit int `mapstructure:"round_limit"`
	// VarianceSpread is the damage/heal variance in percent (20 = ±20%).
	VarianceSpread int `mapstructure:"variance_spread"`
	// BaseDifficulty seeds each session's AI difficulty, in [0,1].
	BaseDifficulty float64 `mapstructure:"base_difficulty"`
	// DifficultyStep bounds per-encounter difficulty movement.
	DifficultyStep float64 `mapstructure:"difficulty_step"`
	// TopK is the AI selection sampling pool size.
	TopK int `mapstructure:"top_k"`
	// ScriptInstructionLimit caps Lua opcodes per hook call; 0 uses the
	// scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Content ContentConfig `mapstructure:"content"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.RoundLimit < 0 {
		errs = append(errs, fmt.Sprintf("engine.round_limit must be >= 0, got %d", e.RoundLimit))
	}
	if e.VarianceSpread < 0 || e.VarianceSpread > 100 {
		errs = append(errs, fmt.Sprintf("engine.variance_spread must be 0-100, got %d", e.VarianceSpread))
	}
	if e.BaseDifficulty < 0 || e.BaseDifficulty > 1 {
		errs = append(errs, fmt.Sprintf("engine.base_difficulty must be in [0,1], got %v", e.BaseDifficulty))
	}
	if e.DifficultyStep < 0 || e.DifficultyStep > 1 {
		errs = append(errs, fmt.Sprintf("engine.difficulty_step must be in [0,1], got %v", e.DifficultyStep))
	}
	if e.TopK < 1 {
		errs = append(errs, fmt.Sprintf("engine.top_k must be >= 1, got %d", e.TopK))
	}
	if e.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("engine.script_instruction_limit must be >= 0, got %d", e.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DUSKFALL_ prefix
	v.SetEnvPrefix("DUSKFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
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

// Defaults returns the configuration used when no file is supplied.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: invalid defaults: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.abilities_dir", "content/abilities")
	v.SetDefault("content.effects_dir", "content/effects")
	v.SetDefault("content.profiles_dir", "content/profiles")
	v.SetDefault("content.scripts_dir", "")

	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.round_limit", 50)
	v.SetDefault("engine.variance_spread", 20)
	v.SetDefault("engine.base_difficulty", 0.5)
	v.SetDefault("engine.difficulty_step", 0.1)
	v.SetDefault("engine.top_k", 3)
	v.SetDefault("engine.script_instruction_limit", 0)
}
