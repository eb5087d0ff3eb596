// Package config loads chatflow settings from a YAML file, .env files and CHATFLOW_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "chatflow.yaml"

// Flow sources.
const (
	SourceLoam       = "loam"
	SourceFile       = "file"
	SourcePostgres   = "postgres"
	SourceParamStore = "paramstore"
)

// Conversation store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
)

// Config is the full runtime configuration.
type Config struct {
	Flows    FlowsConfig  `yaml:"flows"`
	Store    StoreConfig  `yaml:"store"`
	Server   ServerConfig `yaml:"server"`
	Engine   EngineConfig `yaml:"engine"`
	LogLevel string       `yaml:"log_level"`
}

// FlowsConfig selects where flows are read from.
type FlowsConfig struct {
	Source      string `yaml:"source"`
	Dir         string `yaml:"dir"`
	PostgresDSN string `yaml:"postgres_dsn"`
	ParamPrefix string `yaml:"param_prefix"`
}

// StoreConfig selects where conversations are persisted.
type StoreConfig struct {
	Backend       string        `yaml:"backend"`
	Dir           string        `yaml:"dir"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Table         string        `yaml:"table"`
	TTL           time.Duration `yaml:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, message history is sealed at rest.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
	// MaskPatterns are regular expressions masked out of user messages before saving.
	MaskPatterns []string `yaml:"mask_patterns"`
}

// ServerConfig configures the HTTP and MCP transports.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// EngineConfig tunes the interpreter.
type EngineConfig struct {
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
	MaxSteps       int           `yaml:"max_steps"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Flows:    FlowsConfig{Source: SourceLoam, Dir: "."},
		Store:    StoreConfig{Backend: StoreMemory, Dir: ".chatflow/conversations", RedisAddr: "localhost:6379"},
		Server:   ServerConfig{Addr: ":8080", Metrics: true},
		Engine:   EngineConfig{WebhookTimeout: 10 * time.Second, MaxSteps: 100},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, then the YAML file at path (or DefaultFile
// when path is empty and it exists), then .env, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// Variables already set in the process win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str("CHATFLOW_FLOW_SOURCE", &cfg.Flows.Source)
	str("CHATFLOW_FLOWS_DIR", &cfg.Flows.Dir)
	str("CHATFLOW_POSTGRES_DSN", &cfg.Flows.PostgresDSN)
	str("CHATFLOW_PARAM_PREFIX", &cfg.Flows.ParamPrefix)
	str("CHATFLOW_STORE", &cfg.Store.Backend)
	str("CHATFLOW_STORE_DIR", &cfg.Store.Dir)
	str("CHATFLOW_REDIS_ADDR", &cfg.Store.RedisAddr)
	str("CHATFLOW_REDIS_PASSWORD", &cfg.Store.RedisPassword)
	str("CHATFLOW_DYNAMODB_TABLE", &cfg.Store.Table)
	str("CHATFLOW_HTTP_ADDR", &cfg.Server.Addr)
	str("CHATFLOW_LOG_LEVEL", &cfg.LogLevel)
	str("CHATFLOW_STORE_KEY", &cfg.Store.EncryptionKey)

	if v := os.Getenv("CHATFLOW_STORE_FALLBACK_KEYS"); v != "" {
		cfg.Store.FallbackKeys = strings.Split(v, ",")
	}

	if v := os.Getenv("CHATFLOW_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: CHATFLOW_REDIS_DB: %w", err)
		}
		cfg.Store.RedisDB = n
	}
	if v := os.Getenv("CHATFLOW_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: CHATFLOW_MAX_STEPS: %w", err)
		}
		cfg.Engine.MaxSteps = n
	}
	if v := os.Getenv("CHATFLOW_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: CHATFLOW_METRICS: %w", err)
		}
		cfg.Server.Metrics = b
	}
	for key, dst := range map[string]*time.Duration{
		"CHATFLOW_STORE_TTL":       &cfg.Store.TTL,
		"CHATFLOW_WEBHOOK_TIMEOUT": &cfg.Engine.WebhookTimeout,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	switch c.Flows.Source {
	case SourceLoam, SourceFile:
		if c.Flows.Dir == "" {
			errs = append(errs, fmt.Errorf("flows.dir is required for source %q", c.Flows.Source))
		}
	case SourcePostgres:
		if c.Flows.PostgresDSN == "" {
			errs = append(errs, errors.New("flows.postgres_dsn is required for source postgres"))
		}
	case SourceParamStore:
		if c.Flows.ParamPrefix == "" {
			errs = append(errs, errors.New("flows.param_prefix is required for source paramstore"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown flow source %q", c.Flows.Source))
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for backend file"))
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for backend redis"))
		}
	case StoreDynamoDB:
		if c.Store.Table == "" {
			errs = append(errs, errors.New("store.table is required for backend dynamodb"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	for i, p := range c.Store.MaskPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("store.mask_patterns[%d]: %w", i, err))
		}
	}

	if c.Engine.MaxSteps < 0 {
		errs = append(errs, errors.New("engine.max_steps must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
