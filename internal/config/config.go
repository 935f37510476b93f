package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`        // requests per window per user
	RateLimitWin   time.Duration `yaml:"rate_limit_window"` // window size
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // decision/catalog cache TTL
}

type AuthConfig struct {
	HMACSecret  string        `yaml:"hmac_secret"`
	AdminEmails []string      `yaml:"admin_emails"` // always treated as admins
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

type AIConfig struct {
	OpenAIKey       string   `yaml:"openai_key"`
	GeminiKey       string   `yaml:"gemini_key"`
	GeminiURL       string   `yaml:"gemini_url"`
	ClassifierModel string   `yaml:"classifier_model"` // fast model for prompt classification
	DefaultModel    string   `yaml:"default_model"`
	Models          []string `yaml:"models"` // routable model ids
	ConcurrentLimit int      `yaml:"concurrent_limit"`
}

type SchedulerConfig struct {
	CodeExpiryInterval time.Duration `yaml:"code_expiry_interval"`
	StatsFlushInterval time.Duration `yaml:"stats_flush_interval"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 60
	}
	if cfg.Server.RateLimitWin <= 0 {
		cfg.Server.RateLimitWin = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 30 * time.Minute
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.ClassifierModel == "" {
		cfg.AI.ClassifierModel = cfg.AI.DefaultModel
	}
	if len(cfg.AI.Models) == 0 {
		cfg.AI.Models = []string{cfg.AI.DefaultModel}
	}
	if cfg.Scheduler.CodeExpiryInterval <= 0 {
		cfg.Scheduler.CodeExpiryInterval = time.Hour
	}
	if cfg.Scheduler.StatsFlushInterval <= 0 {
		cfg.Scheduler.StatsFlushInterval = 5 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.HMACSecret == "" {
		return nil, errors.New("auth.hmac_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Minute
	}
	return d
}
