package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	AI        AIConfig        `yaml:"ai"`
	Facebook  FacebookConfig  `yaml:"facebook"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
	PreFilter PreFilterConfig `yaml:"pre_filter"`
	Batch     BatchConfig     `yaml:"batch"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Mongo     MongoConfig     `yaml:"mongo"`
	API       APIConfig       `yaml:"api"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type AIConfig struct {
	// Model is the Gemini model used for both classification and enrichment.
	Model string `yaml:"model"`
}

// FacebookConfig covers the Graph API fetch collaborator.
// PAGE_ID and ACCESS_TOKEN are read from the environment, not from yaml.
type FacebookConfig struct {
	APIVersion         string `yaml:"api_version"`
	FetchWindowMinutes int    `yaml:"fetch_window_minutes"`
	PageSize           int    `yaml:"page_size"`
}

// RateLimitConfig mirrors the external-API admission policy: a rolling
// one-hour request window shared across API classes plus fixed per-class
// smoothing delays.
type RateLimitConfig struct {
	MaxRequestsPerHour int     `yaml:"max_requests_per_hour"`
	FetchDelaySeconds  float64 `yaml:"fetch_delay_seconds"`
	AIDelaySeconds     float64 `yaml:"ai_delay_seconds"`
	CooldownSeconds    int     `yaml:"cooldown_seconds"`
}

type RetryConfig struct {
	MaxAttempts  int `yaml:"max_attempts"`
	DelaySeconds int `yaml:"delay_seconds"`
}

// PreFilterConfig selects the rule profile applied before any AI call.
// Profile is "strict" or "lenient"; strict is the default. StrictSanitizer
// additionally strips boilerplate and punctuation before filtering.
type PreFilterConfig struct {
	Profile         string `yaml:"profile"`
	StrictSanitizer bool   `yaml:"strict_sanitizer"`
}

type BatchConfig struct {
	// CacheValidityMinutes bounds how long a completed batch result may be
	// served from memory instead of reprocessing.
	CacheValidityMinutes int `yaml:"cache_validity_minutes"`
}

type SchedulerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

type MongoConfig struct {
	DBName string `yaml:"db_name"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash"
	}
	if c.Facebook.APIVersion == "" {
		c.Facebook.APIVersion = "v23.0"
	}
	if c.Facebook.FetchWindowMinutes <= 0 {
		c.Facebook.FetchWindowMinutes = 10
	}
	if c.Facebook.PageSize <= 0 {
		c.Facebook.PageSize = 100
	}
	if c.RateLimit.MaxRequestsPerHour <= 0 {
		c.RateLimit.MaxRequestsPerHour = 200
	}
	if c.RateLimit.FetchDelaySeconds <= 0 {
		c.RateLimit.FetchDelaySeconds = 0.5
	}
	if c.RateLimit.AIDelaySeconds <= 0 {
		c.RateLimit.AIDelaySeconds = 1.0
	}
	if c.RateLimit.CooldownSeconds <= 0 {
		c.RateLimit.CooldownSeconds = 3600
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.DelaySeconds <= 0 {
		c.Retry.DelaySeconds = 2
	}
	if c.PreFilter.Profile == "" {
		c.PreFilter.Profile = "strict"
	}
	if c.Batch.CacheValidityMinutes <= 0 {
		c.Batch.CacheValidityMinutes = 5
	}
	if c.Scheduler.IntervalSeconds <= 0 {
		c.Scheduler.IntervalSeconds = 60
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "complaint_database"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
