// Package config loads quizforge settings from defaults, an optional config
// file, an optional .env file and QUIZFORGE_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/petrijr/quizforge/internal/persistence"
	"github.com/petrijr/quizforge/pkg/api"
)

// EnvPrefix prefixes every environment variable, e.g. QUIZFORGE_SERVER_PORT.
const EnvPrefix = "QUIZFORGE"

// Generation providers.
const (
	ProviderMessages = "messages"
	ProviderOpenAI   = "openai"
)

// Config is the complete runtime configuration.
type Config struct {
	Server struct {
		Host      string `mapstructure:"host"`
		Port      int    `mapstructure:"port"`
		BodyLimit string `mapstructure:"body_limit"`
	} `mapstructure:"server"`

	Generation struct {
		Provider          string        `mapstructure:"provider"`
		BaseURL           string        `mapstructure:"base_url"`
		APIKey            string        `mapstructure:"api_key"`
		Model             string        `mapstructure:"model"`
		MaxTokens         int           `mapstructure:"max_tokens"`
		Temperature       float64       `mapstructure:"temperature"`
		CallTimeout       time.Duration `mapstructure:"call_timeout"`
		RequestsPerSecond float64       `mapstructure:"requests_per_second"`
		Stream            bool          `mapstructure:"stream"`
	} `mapstructure:"generation"`

	Retry struct {
		MaxAttempts  int           `mapstructure:"max_attempts"`
		InitialDelay time.Duration `mapstructure:"initial_delay"`
	} `mapstructure:"retry"`

	Dispatch struct {
		MaxConcurrency int `mapstructure:"max_concurrency"`
	} `mapstructure:"dispatch"`

	Cache struct {
		Backend    string        `mapstructure:"backend"`
		Dir        string        `mapstructure:"dir"`
		DSN        string        `mapstructure:"dsn"`
		Prefix     string        `mapstructure:"prefix"`
		Database   string        `mapstructure:"database"`
		Collection string        `mapstructure:"collection"`
		TTL        time.Duration `mapstructure:"ttl"`
		Memory     bool          `mapstructure:"memory"`
	} `mapstructure:"cache"`

	Render struct {
		URL      string        `mapstructure:"url"`
		Timeout  time.Duration `mapstructure:"timeout"`
		LocalDir string        `mapstructure:"local_dir"`
	} `mapstructure:"render"`

	Exam struct {
		DefaultQuestionCount int    `mapstructure:"default_question_count"`
		DefaultDifficulty    string `mapstructure:"default_difficulty"`
		MaxReferenceLength   int    `mapstructure:"max_reference_length"`
		MaxQuestionCount     int    `mapstructure:"max_question_count"`
	} `mapstructure:"exam"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Options select the optional sources.
type Options struct {
	// File is a YAML, TOML or JSON config file.
	File string

	// EnvFile is a dotenv file. When empty, ".env" is loaded if present.
	EnvFile string
}

var defaults = map[string]any{
	"server.host":       "0.0.0.0",
	"server.port":       5001,
	"server.body_limit": "1M",

	"generation.provider":            ProviderMessages,
	"generation.base_url":            "",
	"generation.api_key":             "",
	"generation.model":               "claude-3-7-sonnet-20250219",
	"generation.max_tokens":          4000,
	"generation.temperature":         0.7,
	"generation.call_timeout":        10 * time.Second,
	"generation.requests_per_second": 0.0,
	"generation.stream":              false,

	"retry.max_attempts":  3,
	"retry.initial_delay": 2 * time.Second,

	"dispatch.max_concurrency": 3,

	"cache.backend":    string(persistence.BackendFile),
	"cache.dir":        "./cache",
	"cache.dsn":        "",
	"cache.prefix":     "quizforge:",
	"cache.database":   "quizforge",
	"cache.collection": "cache_records",
	"cache.ttl":        720 * time.Hour,
	"cache.memory":     true,

	"render.url":       "http://localhost:5006/upload_markdown",
	"render.timeout":   10 * time.Second,
	"render.local_dir": "",

	"exam.default_question_count": 5,
	"exam.default_difficulty":     string(api.DifficultyMedium),
	"exam.max_reference_length":   5000,
	"exam.max_question_count":     50,

	"log.level":  "info",
	"log.format": "text",
}

// Load builds a Config from all sources and validates it.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Generation.Provider {
	case ProviderMessages, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown generation.provider %q", c.Generation.Provider))
	}
	if c.Generation.MaxTokens <= 0 {
		errs = append(errs, errors.New("generation.max_tokens must be positive"))
	}
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry.max_attempts must be positive"))
	}
	if c.Dispatch.MaxConcurrency <= 0 {
		errs = append(errs, errors.New("dispatch.max_concurrency must be positive"))
	}
	if !persistence.Backend(c.Cache.Backend).Valid() {
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	if c.Exam.DefaultQuestionCount <= 0 {
		errs = append(errs, errors.New("exam.default_question_count must be positive"))
	}
	if c.Exam.MaxQuestionCount < c.Exam.DefaultQuestionCount {
		errs = append(errs, fmt.Errorf("exam.max_question_count must be at least %d", c.Exam.DefaultQuestionCount))
	}
	if _, err := api.ParseDifficulty(c.Exam.DefaultDifficulty); err != nil {
		errs = append(errs, fmt.Errorf("exam.default_difficulty: %w", err))
	}
	return errors.Join(errs...)
}

// Address is the listen address of the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
