package config

import (
	"time"

	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/nhannv/vikonews/pkg/logger"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logger     logger.Config    `yaml:"logger"`
	Crawler    CrawlerConfig    `yaml:"crawler"`
	Translator TranslatorConfig `yaml:"translator"`
	WordPress  WordPressConfig  `yaml:"wordpress"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

// CrawlerConfig bounds the extraction pipeline. Every network fetch
// carries RequestTimeout; a whole run is abandoned after RunTimeout.
// Durations are duration strings, e.g. "15s", "5m".
type CrawlerConfig struct {
	RunTimeout         string   `yaml:"run_timeout"`
	RequestTimeout     string   `yaml:"request_timeout"`
	DetailDelay        string   `yaml:"detail_delay"`
	UserAgent          string   `yaml:"user_agent"`
	Timezone           string   `yaml:"timezone"`
	LowPrioritySources []string `yaml:"low_priority_sources"`
}

func (c CrawlerConfig) RunTimeoutDuration() time.Duration {
	return parseDuration(c.RunTimeout, 5*time.Minute)
}

func (c CrawlerConfig) RequestTimeoutDuration() time.Duration {
	return parseDuration(c.RequestTimeout, 15*time.Second)
}

func (c CrawlerConfig) DetailDelayDuration() time.Duration {
	return parseDuration(c.DetailDelay, 500*time.Millisecond)
}

// Location resolves the reference timezone all date bucketing uses.
func (c CrawlerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type TranslatorConfig struct {
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	Timeout     string `yaml:"timeout"`
	MaxAttempts int    `yaml:"max_attempts"`
	RetryDelay  string `yaml:"retry_delay"`
	BatchSize   int    `yaml:"batch_size"`
	BatchPause  string `yaml:"batch_pause"`
	// KoreanSources lists extractor names whose content is already in the
	// target language; they bypass the LLM entirely.
	KoreanSources []string `yaml:"korean_sources"`
}

func (c TranslatorConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 20*time.Second)
}

func (c TranslatorConfig) RetryDelayDuration() time.Duration {
	return parseDuration(c.RetryDelay, 2*time.Second)
}

func (c TranslatorConfig) BatchPauseDuration() time.Duration {
	return parseDuration(c.BatchPause, time.Second)
}

type WordPressConfig struct {
	BaseURL         string `yaml:"base_url"`
	Username        string `yaml:"username"`
	AppPassword     string `yaml:"app_password"`
	Timeout         string `yaml:"timeout"`
	MainCategoryID  int    `yaml:"main_category_id"`
	DailyCategoryID int    `yaml:"daily_category_id"`
}

func (c WordPressConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

type SchedulerConfig struct {
	CrawlInterval string `yaml:"crawl_interval"`
	Enabled       bool   `yaml:"enabled"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// ApplyDefaults fills every zero-valued knob with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5390
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Crawler.UserAgent == "" {
		cfg.Crawler.UserAgent = "Mozilla/5.0 (compatible; VikoNewsBot/1.0)"
	}
	if cfg.Crawler.Timezone == "" {
		cfg.Crawler.Timezone = "Asia/Ho_Chi_Minh"
	}
	if cfg.Translator.Model == "" {
		cfg.Translator.Model = "gemini-1.5-flash"
	}
	if cfg.Translator.MaxAttempts == 0 {
		cfg.Translator.MaxAttempts = 3
	}
	if cfg.Translator.BatchSize == 0 {
		cfg.Translator.BatchSize = 10
	}
	if len(cfg.Translator.KoreanSources) == 0 {
		cfg.Translator.KoreanSources = []string{
			"yonhap", "kbs-world", "chosun", "joongang", "hankyoreh", "korea-net",
		}
	}
	if cfg.Scheduler.CrawlInterval == "" {
		cfg.Scheduler.CrawlInterval = "2h"
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
