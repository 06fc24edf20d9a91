// Package config loads the runtime's recognized configuration options
// (spec.md §6) from a YAML file plus environment variable overrides,
// grounded on the teacher pack's config-loading conventions: YAML via
// gopkg.in/yaml.v3 (codeready-toolchain-tarsy's pkg/config/loader.go) and
// .env loading via joho/godotenv (Jint8888-Pocket-Omega, and
// other_examples, all load dotenv this way).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every recognized runtime configuration option, with the
// defaults spec.md §6 documents.
type Config struct {
	// SandboxRoot bounds every filesystem path a tool is allowed to touch.
	SandboxRoot string `yaml:"sandbox_root"`
	// EmailDomainAllowlist restricts the recipient domain of email-sending
	// tools; empty means no restriction.
	EmailDomainAllowlist []string `yaml:"email_domain_allowlist"`
	// SecretKey signs approval tokens; required, and must be at least 32
	// bytes in a production deployment.
	SecretKey string `yaml:"secret_key"`

	ToolTimeoutSeconds     int `yaml:"tool_timeout_seconds"`
	MaxPlanSteps           int `yaml:"max_plan_steps"`
	MaxRetriesPerStep      int `yaml:"max_retries_per_step"`
	ApprovalTTLSeconds     int `yaml:"approval_ttl_seconds"`
	IdempotencyTTLSeconds  int `yaml:"idempotency_ttl_seconds"`
	EngineIdleTTLSeconds   int `yaml:"engine_idle_ttl_seconds"`
	EvictionThresholdChars int `yaml:"eviction_threshold_chars"`
	RehydrationMaxChars    int `yaml:"rehydration_max_chars"`
	NodeTransitionLimit    int `yaml:"node_transition_limit"`

	// Production gates whether SecretKey's 32-char minimum is enforced
	// (spec.md: "required, ≥ 32 chars in prod"). Not itself a recognized
	// YAML key; set via WithProduction or the AGENTRT_ENV=production
	// environment variable.
	Production bool `yaml:"-"`
}

// Defaults returns the configuration spec.md §6 specifies when no override
// is supplied.
func Defaults() Config {
	return Config{
		ToolTimeoutSeconds:     30,
		MaxPlanSteps:           8,
		MaxRetriesPerStep:      3,
		ApprovalTTLSeconds:     300,
		IdempotencyTTLSeconds:  600,
		EngineIdleTTLSeconds:   300,
		EvictionThresholdChars: 10_000,
		RehydrationMaxChars:    50_000,
		NodeTransitionLimit:    64,
	}
}

// envOverrides maps an environment variable name to the struct field it
// overrides, mirroring the YAML key with an AGENTRT_ prefix.
var envOverrides = []struct {
	name   string
	apply  func(cfg *Config, raw string) error
}{
	{"AGENTRT_SANDBOX_ROOT", func(cfg *Config, raw string) error { cfg.SandboxRoot = raw; return nil }},
	{"AGENTRT_SECRET_KEY", func(cfg *Config, raw string) error { cfg.SecretKey = raw; return nil }},
	{"AGENTRT_EMAIL_DOMAIN_ALLOWLIST", func(cfg *Config, raw string) error {
		cfg.EmailDomainAllowlist = splitCommaList(raw)
		return nil
	}},
	{"AGENTRT_TOOL_TIMEOUT_SECONDS", intOverride(func(cfg *Config) *int { return &cfg.ToolTimeoutSeconds })},
	{"AGENTRT_MAX_PLAN_STEPS", intOverride(func(cfg *Config) *int { return &cfg.MaxPlanSteps })},
	{"AGENTRT_MAX_RETRIES_PER_STEP", intOverride(func(cfg *Config) *int { return &cfg.MaxRetriesPerStep })},
	{"AGENTRT_APPROVAL_TTL_SECONDS", intOverride(func(cfg *Config) *int { return &cfg.ApprovalTTLSeconds })},
	{"AGENTRT_IDEMPOTENCY_TTL_SECONDS", intOverride(func(cfg *Config) *int { return &cfg.IdempotencyTTLSeconds })},
	{"AGENTRT_ENGINE_IDLE_TTL_SECONDS", intOverride(func(cfg *Config) *int { return &cfg.EngineIdleTTLSeconds })},
	{"AGENTRT_EVICTION_THRESHOLD_CHARS", intOverride(func(cfg *Config) *int { return &cfg.EvictionThresholdChars })},
	{"AGENTRT_REHYDRATION_MAX_CHARS", intOverride(func(cfg *Config) *int { return &cfg.RehydrationMaxChars })},
	{"AGENTRT_NODE_TRANSITION_LIMIT", intOverride(func(cfg *Config) *int { return &cfg.NodeTransitionLimit })},
	{"AGENTRT_ENV", func(cfg *Config, raw string) error {
		cfg.Production = strings.EqualFold(strings.TrimSpace(raw), "production")
		return nil
	}},
}

func intOverride(field func(cfg *Config) *int) func(cfg *Config, raw string) error {
	return func(cfg *Config, raw string) error {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid integer value %q", raw)
		}
		*field(cfg) = n
		return nil
	}
}

func splitCommaList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads an optional .env file at envPath (godotenv.Load silently
// succeeds if the file is absent so callers may always pass the
// conventional path), then a YAML config file at yamlPath layered over
// Defaults(), then environment variable overrides, and finally validates
// the result.
func Load(yamlPath, envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: loading %s: %w", envPath, err)
		}
	}

	cfg := Defaults()
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
			}
		case os.IsNotExist(err):
			// No file at yamlPath: defaults plus environment stand alone.
		default:
			return Config{}, fmt.Errorf("config: reading %s: %w", yamlPath, err)
		}
	}

	for _, override := range envOverrides {
		raw, ok := os.LookupEnv(override.name)
		if !ok {
			continue
		}
		if err := override.apply(&cfg, raw); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", override.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants spec.md §6 requires of a usable Config.
func (c Config) Validate() error {
	if c.SandboxRoot == "" {
		return fmt.Errorf("config: sandbox_root is required")
	}
	if !strings.HasPrefix(c.SandboxRoot, "/") {
		return fmt.Errorf("config: sandbox_root must be an absolute path")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("config: secret_key is required")
	}
	if c.Production && len(c.SecretKey) < 32 {
		return fmt.Errorf("config: secret_key must be at least 32 characters in production")
	}
	for name, v := range map[string]int{
		"tool_timeout_seconds":     c.ToolTimeoutSeconds,
		"max_plan_steps":           c.MaxPlanSteps,
		"max_retries_per_step":     c.MaxRetriesPerStep,
		"approval_ttl_seconds":     c.ApprovalTTLSeconds,
		"idempotency_ttl_seconds":  c.IdempotencyTTLSeconds,
		"engine_idle_ttl_seconds":  c.EngineIdleTTLSeconds,
		"eviction_threshold_chars": c.EvictionThresholdChars,
		"rehydration_max_chars":    c.RehydrationMaxChars,
		"node_transition_limit":    c.NodeTransitionLimit,
	} {
		if v <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", name, v)
		}
	}
	if c.RehydrationMaxChars < c.EvictionThresholdChars {
		return fmt.Errorf("config: rehydration_max_chars must be >= eviction_threshold_chars")
	}
	return nil
}

func (c Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutSeconds) * time.Second
}

func (c Config) ApprovalTTL() time.Duration {
	return time.Duration(c.ApprovalTTLSeconds) * time.Second
}

func (c Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempotencyTTLSeconds) * time.Second
}

func (c Config) EngineIdleTTL() time.Duration {
	return time.Duration(c.EngineIdleTTLSeconds) * time.Second
}
