// Package config loads the cbthelper configuration file.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cbthelper/internal/classify"
	"cbthelper/internal/engine"
	"cbthelper/internal/regulate"
	"cbthelper/internal/session"
	"cbthelper/internal/store"
	"cbthelper/internal/strategy"
	"cbthelper/internal/taxonomy"
	"cbthelper/internal/thinking"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = ".cbthelper/config.yaml"

// Environment overrides, applied after the file.
const (
	EnvSessionTTL  = "CBTHELPER_SESSION_TTL"
	EnvStoreDriver = "CBTHELPER_STORE_DRIVER"
	EnvStorePath   = "CBTHELPER_STORE_PATH"
	EnvLogLevel    = "CBTHELPER_LOG_LEVEL"
	EnvLogFormat   = "CBTHELPER_LOG_FORMAT"
	EnvMetricsAddr = "CBTHELPER_METRICS_ADDR"
)

// Config is the on-disk configuration.
type Config struct {
	Frustration Frustration `yaml:"frustration"`
	Session     Session     `yaml:"session"`
	Strategy    Strategy    `yaml:"strategy"`
	Classifier  Classifier  `yaml:"classifier"`
	Thinking    Thinking    `yaml:"thinking"`
	Store       Store       `yaml:"store"`
	Log         Log         `yaml:"log"`
	Metrics     Metrics     `yaml:"metrics"`
}

type Frustration struct {
	Min                int  `yaml:"min" validate:"gte=0"`
	Max                int  `yaml:"max" validate:"gtfield=Min"`
	HighThreshold      int  `yaml:"high_threshold" validate:"gtefield=Min,ltefield=Max"`
	EmergencyThreshold int  `yaml:"emergency_threshold" validate:"gtefield=HighThreshold,ltefield=Max"`
	Window             int  `yaml:"window" validate:"gte=1"`
	ImprovementDelta   int  `yaml:"improvement_delta" validate:"gte=1"`
	Baseline           int  `yaml:"baseline" validate:"gtefield=Min,ltefield=Max"`
	AutoEscalation     bool `yaml:"auto_escalation"`
}

type Session struct {
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"gt=0"`
	HistoryLimit  int           `yaml:"history_limit" validate:"gte=1"`
}

type Strategy struct {
	Default       string            `yaml:"default" validate:"required"`
	Critical      string            `yaml:"critical" validate:"required"`
	Escalation    string            `yaml:"escalation" validate:"required"`
	Preferences   map[string]string `yaml:"preferences"`
	FallbackOrder []string          `yaml:"fallback_order" validate:"dive,required"`
}

type Classifier struct {
	HintBonus int `yaml:"hint_bonus" validate:"gte=1"`
	// States and Distortions add phrases (weight 1) to the named rule.
	States      map[string][]string `yaml:"states"`
	Distortions map[string][]string `yaml:"distortions"`
}

type Thinking struct {
	BreadthMax int `yaml:"breadth_max" validate:"gte=1"`
	MinLevel   int `yaml:"min_level" validate:"gte=1,lte=7"`
}

type Store struct {
	Driver string `yaml:"driver" validate:"oneof=memory sqlite"`
	Path   string `yaml:"path" validate:"required_if=Driver sqlite"`
}

type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type Metrics struct {
	// Addr serves /metrics when set, e.g. "127.0.0.1:9464".
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	rc := regulate.DefaultConfig()
	sc := strategy.DefaultConfig()
	prefs := make(map[string]string, len(sc.Preferences))
	for k, v := range sc.Preferences {
		prefs[string(k)] = string(v)
	}
	order := make([]string, len(sc.FallbackOrder))
	for i, k := range sc.FallbackOrder {
		order[i] = string(k)
	}
	return &Config{
		Frustration: Frustration{
			Min:                rc.Min,
			Max:                rc.Max,
			HighThreshold:      rc.HighThreshold,
			EmergencyThreshold: rc.EmergencyThreshold,
			Window:             rc.Window,
			ImprovementDelta:   rc.ImprovementDelta,
			Baseline:           rc.Baseline,
			AutoEscalation:     sc.AutoEscalation,
		},
		Session: Session{
			TTL:           session.DefaultTTL,
			SweepInterval: time.Minute,
			HistoryLimit:  session.DefaultHistoryLimit,
		},
		Strategy: Strategy{
			Default:       string(sc.Default),
			Critical:      string(sc.Critical),
			Escalation:    string(sc.Escalation),
			Preferences:   prefs,
			FallbackOrder: order,
		},
		Classifier: Classifier{HintBonus: classify.DefaultHintBonus},
		Thinking:   Thinking{BreadthMax: thinking.DefaultBreadthMax, MinLevel: 1},
		Store:      Store{Driver: store.DriverMemory, Path: store.DefaultDBPath},
		Log:        Log{Level: "info", Format: "text"},
	}
}

// Load parses YAML over the defaults, so a file only names what it changes.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

// LoadFromPath reads path. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from CBTHELPER_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvSessionTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSessionTTL, err)
		}
		c.Session.TTL = d
	}
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the named strategies exist.
// Unknown strategies inside preferences are allowed; they select the
// default at runtime.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	for _, k := range c.Strategy.FallbackOrder {
		if _, ok := taxonomy.DescribeStrategy(taxonomy.StrategyKey(k)); !ok {
			return fmt.Errorf("config strategy.fallback_order: unknown strategy %q", k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(c.Classifier.States)) {
		if _, ok := taxonomy.DescribeState(taxonomy.StateKey(k)); !ok {
			return fmt.Errorf("config classifier.states: unknown state %q", k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(c.Classifier.Distortions)) {
		if _, ok := taxonomy.DescribeDistortion(taxonomy.DistortionKey(k)); !ok {
			return fmt.Errorf("config classifier.distortions: unknown distortion %q", k)
		}
	}
	return c.EngineConfig().Validate()
}

// EngineConfig converts c to the engine's configuration.
func (c *Config) EngineConfig() engine.Config {
	prefs := make(map[taxonomy.StateKey]taxonomy.StrategyKey, len(c.Strategy.Preferences))
	for k, v := range c.Strategy.Preferences {
		prefs[taxonomy.StateKey(strings.TrimSpace(k))] = taxonomy.StrategyKey(strings.TrimSpace(v))
	}
	order := make([]taxonomy.StrategyKey, len(c.Strategy.FallbackOrder))
	for i, k := range c.Strategy.FallbackOrder {
		order[i] = taxonomy.StrategyKey(k)
	}
	return engine.Config{
		Regulate: regulate.Config{
			Min:                c.Frustration.Min,
			Max:                c.Frustration.Max,
			HighThreshold:      c.Frustration.HighThreshold,
			EmergencyThreshold: c.Frustration.EmergencyThreshold,
			Window:             c.Frustration.Window,
			ImprovementDelta:   c.Frustration.ImprovementDelta,
			Baseline:           c.Frustration.Baseline,
		},
		Strategy: strategy.Config{
			Default:        taxonomy.StrategyKey(c.Strategy.Default),
			Critical:       taxonomy.StrategyKey(c.Strategy.Critical),
			Escalation:     taxonomy.StrategyKey(c.Strategy.Escalation),
			AutoEscalation: c.Frustration.AutoEscalation,
			Preferences:    prefs,
			FallbackOrder:  order,
		},
		Classify: classify.Options{
			HintBonus:        c.Classifier.HintBonus,
			ExtraStates:      phrases[taxonomy.StateKey](c.Classifier.States),
			ExtraDistortions: phrases[taxonomy.DistortionKey](c.Classifier.Distortions),
		},
		SessionTTL:   c.Session.TTL,
		HistoryLimit: c.Session.HistoryLimit,
		BreadthMax:   c.Thinking.BreadthMax,
		MinLevel:     c.Thinking.MinLevel,
	}
}

func phrases[K ~string](in map[string][]string) map[K][]taxonomy.Keyword {
	if len(in) == 0 {
		return nil
	}
	out := make(map[K][]taxonomy.Keyword, len(in))
	for k, list := range in {
		for _, p := range list {
			out[K(k)] = append(out[K(k)], taxonomy.Keyword{Phrase: strings.ToLower(p), Weight: 1})
		}
	}
	return out
}
