// Package config provides Viper-based configuration loading for the battle core.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds turn orchestration settings.
type CombatConfig struct {
	// InactivityTimeout is how long the player may idle before an automatic attack.
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`
	// EscapeChance is the probability in [0, 1] that an escape attempt succeeds.
	EscapeChance float64 `mapstructure:"escape_chance"`
	// DefeatGoldPenalty is the fraction of gold in [0, 1] lost on defeat.
	DefeatGoldPenalty float64 `mapstructure:"defeat_gold_penalty"`
}

// DiceConfig selects the randomness source.
type DiceConfig struct {
	// Source is "crypto" or "seeded".
	Source string `mapstructure:"source"`
	// Seed is used only by the seeded source.
	Seed uint64 `mapstructure:"seed"`
}

// ContentConfig names the YAML content directories.
type ContentConfig struct {
	Weapons    string `mapstructure:"weapons"`
	Armor      string `mapstructure:"armor"`
	Abilities  string `mapstructure:"abilities"`
	Conditions string `mapstructure:"conditions"`
	Enemies    string `mapstructure:"enemies"`
	// Player is the path of a single player template file.
	Player string `mapstructure:"player"`
}

// ScriptingConfig holds Lua settings.
type ScriptingConfig struct {
	// Dir holds one sub-directory per enemy template plus an optional "global".
	// Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the opcodes of a single load or hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SimulationConfig drives the battlesim command.
type SimulationConfig struct {
	// Battles is how many independent battles run concurrently.
	Battles int `mapstructure:"battles"`
	// Encounter lists the enemy template IDs spawned for each battle.
	Encounter []string `mapstructure:"encounter"`
	// MaxRounds stops a battle that has not resolved after this many rounds.
	MaxRounds int `mapstructure:"max_rounds"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Dice       DiceConfig       `mapstructure:"dice"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateCombat(c.Combat),
		validateDice(c.Dice),
		validateContent(c.Content),
		validateScripting(c.Scripting),
		validateSimulation(c.Simulation),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
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

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.InactivityTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("combat.inactivity_timeout must be > 0, got %s", c.InactivityTimeout))
	}
	if c.EscapeChance < 0 || c.EscapeChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.escape_chance must be in [0, 1], got %g", c.EscapeChance))
	}
	if c.DefeatGoldPenalty < 0 || c.DefeatGoldPenalty > 1 {
		errs = append(errs, fmt.Sprintf("combat.defeat_gold_penalty must be in [0, 1], got %g", c.DefeatGoldPenalty))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDice(d DiceConfig) error {
	switch d.Source {
	case "crypto", "seeded":
		return nil
	}
	return fmt.Errorf("dice.source must be one of [crypto, seeded], got %q", d.Source)
}

func validateContent(c ContentConfig) error {
	var errs []string
	for name, dir := range map[string]string{
		"weapons":    c.Weapons,
		"armor":      c.Armor,
		"abilities":  c.Abilities,
		"conditions": c.Conditions,
		"enemies":    c.Enemies,
		"player":     c.Player,
	} {
		if dir == "" {
			errs = append(errs, fmt.Sprintf("content.%s must not be empty", name))
		}
	}
	if len(errs) > 0 {
		// map iteration order is random
		slices.Sort(errs)
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Battles < 1 {
		errs = append(errs, fmt.Sprintf("simulation.battles must be >= 1, got %d", s.Battles))
	}
	if len(s.Encounter) == 0 {
		errs = append(errs, "simulation.encounter must not be empty")
	}
	if s.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_rounds must be >= 1, got %d", s.MaxRounds))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

	// Environment variable overrides with BATTLE_ prefix
	v.SetEnvPrefix("BATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.inactivity_timeout", "30s")
	v.SetDefault("combat.escape_chance", 0.5)
	v.SetDefault("combat.defeat_gold_penalty", 0.1)

	v.SetDefault("dice.source", "crypto")

	v.SetDefault("content.weapons", "content/weapons")
	v.SetDefault("content.armor", "content/armor")
	v.SetDefault("content.abilities", "content/abilities")
	v.SetDefault("content.conditions", "content/conditions")
	v.SetDefault("content.enemies", "content/enemies")
	v.SetDefault("content.player", "content/player.yaml")

	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("simulation.battles", 1)
	v.SetDefault("simulation.max_rounds", 50)
}
