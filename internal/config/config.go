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

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // cache entry TTL
}

type APIConfig struct {
	Port      int           `yaml:"port"`
	Key       string        `yaml:"key"`        // operator API key for /auth/login
	JWTSecret string        `yaml:"jwt_secret"` // HS256 secret for session tokens
	JWTTTL    time.Duration `yaml:"jwt_ttl"`
}

type GatewayConfig struct {
	SuccessRate float64       `yaml:"success_rate"`
	Latency     time.Duration `yaml:"latency"`
}

type GatewaysConfig struct {
	Card        GatewayConfig `yaml:"card"`
	Debit       GatewayConfig `yaml:"debit"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type SchedulerConfig struct {
	RenewalCron       string        `yaml:"renewal_cron"`       // cron spec for renewal scans
	RenewalBatch      int           `yaml:"renewal_batch"`      // max subscriptions per scan
	ReconcileInterval time.Duration `yaml:"reconcile_interval"` // settlement reconciler tick
	StaleAfter        time.Duration `yaml:"stale_after"`        // pending age before reconciling
	Workers           int           `yaml:"workers"`            // renewal worker pool size
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	API       APIConfig       `yaml:"api"`
	Gateways  GatewaysConfig  `yaml:"gateways"`
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
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.JWTTTL <= 0 {
		cfg.API.JWTTTL = 30 * time.Minute
	}
	if cfg.Gateways.Card.SuccessRate <= 0 {
		cfg.Gateways.Card.SuccessRate = 0.90
	}
	if cfg.Gateways.Debit.SuccessRate <= 0 {
		cfg.Gateways.Debit.SuccessRate = 0.95
	}
	if cfg.Gateways.CallTimeout <= 0 {
		cfg.Gateways.CallTimeout = 15 * time.Second
	}
	if cfg.Scheduler.RenewalCron == "" {
		cfg.Scheduler.RenewalCron = "@every 1h"
	}
	if cfg.Scheduler.RenewalBatch <= 0 {
		cfg.Scheduler.RenewalBatch = 200
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = time.Minute
	}
	if cfg.Scheduler.StaleAfter <= 0 {
		cfg.Scheduler.StaleAfter = 10 * time.Minute
	}
	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.API.Key == "" {
		return nil, errors.New("api.key is required")
	}
	if cfg.API.JWTSecret == "" {
		return nil, errors.New("api.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
