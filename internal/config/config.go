package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"decisiondesk/internal/classify"
	"decisiondesk/internal/store"
)

// Config is the workspace configuration, read from decisiondesk.yml.
// Every field has a usable default; a missing file is not an error.
type Config struct {
	// Slot names the key-value slot the collection persists under.
	Slot string `yaml:"slot"`
	// StateDB and AuditDB override the workspace-relative database paths.
	StateDB string `yaml:"state_db"`
	AuditDB string `yaml:"audit_db"`
	Policy  Policy `yaml:"policy"`
}

// Policy overrides classification thresholds. Nil fields keep defaults.
type Policy struct {
	ConfidenceFloor     *int `yaml:"confidence_floor"`
	UpcomingHorizonDays *int `yaml:"upcoming_horizon_days"`
	MinGuardrailChars   *int `yaml:"min_guardrail_chars"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{Slot: store.DefaultSlotName}
}

// Load reads the config file, expanding environment references first.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Slot == "" {
		cfg.Slot = store.DefaultSlotName
	}
	return cfg, cfg.Validate()
}

// Validate checks threshold overrides for sane ranges.
func (c Config) Validate() error {
	if v := c.Policy.ConfidenceFloor; v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("policy.confidence_floor must be within [0,100], got %d", *v)
	}
	if v := c.Policy.UpcomingHorizonDays; v != nil && *v < 0 {
		return fmt.Errorf("policy.upcoming_horizon_days must not be negative, got %d", *v)
	}
	if v := c.Policy.MinGuardrailChars; v != nil && *v < 0 {
		return fmt.Errorf("policy.min_guardrail_chars must not be negative, got %d", *v)
	}
	return nil
}

// ClassifyPolicy resolves the effective classification thresholds.
func (c Config) ClassifyPolicy() classify.Policy {
	p := classify.DefaultPolicy()
	if v := c.Policy.ConfidenceFloor; v != nil {
		p.ConfidenceFloor = *v
	}
	if v := c.Policy.UpcomingHorizonDays; v != nil {
		p.UpcomingHorizonDays = *v
	}
	if v := c.Policy.MinGuardrailChars; v != nil {
		p.MinGuardrailChars = *v
	}
	return p
}
