// Package config loads and validates configuration at startup.
// Fail-fast: an invalid value stops the process before anything connects.
//
// Values come from the environment, optionally seeded from a .env file. The
// scrape targets (search terms, enabled sources, red flags) come from an
// optional YAML file named by SOURCES_FILE.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Source names accepted in the sources file.
const (
	SourceJobindex = "jobindex"
	SourceJobnet   = "jobnet"
	SourceAdzuna   = "adzuna"
)

var knownSources = []string{SourceJobindex, SourceJobnet, SourceAdzuna}

// Config holds all runtime configuration for the aggregator service.
type Config struct {
	Port            string
	GRPCPort        string
	DatabaseURL     string
	RedisURL        string // optional: enables the scrape lock and event publishing
	ScrapeCron      string // standard 5-field cron spec
	ScrapeOnStartup bool
	AdzunaAppID     string
	AdzunaAppKey    string
	AdzunaCountry   string // e.g. "gb", "de"
	TelegramToken   string
	TelegramChatID  int64
	Sources         Sources
}

// Sources is the YAML sources file.
type Sources struct {
	SearchTerms  []string      `yaml:"search_terms"`
	Enabled      []string      `yaml:"sources"`
	RedFlags     []string      `yaml:"red_flags"`
	RequestDelay time.Duration `yaml:"request_delay"`
}

// IsEnabled reports whether the named source is enabled.
func (s Sources) IsEnabled(name string) bool {
	for _, e := range s.Enabled {
		if e == name {
			return true
		}
	}
	return false
}

// Load reads .env (if present), the environment and the sources file, and
// returns a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("AGGREGATOR_PORT", "8000"),
		GRPCPort:      getenv("GRPC_PORT", "9090"),
		DatabaseURL:   getenv("DATABASE_URL", "sqlite:///./ai_jobs.db"),
		RedisURL:      os.Getenv("REDIS_URL"),
		ScrapeCron:    getenv("SCRAPE_CRON", "0 9 * * *"),
		AdzunaAppID:   os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:  os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry: getenv("ADZUNA_COUNTRY", "gb"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if _, err := cron.ParseStandard(cfg.ScrapeCron); err != nil {
		return nil, fmt.Errorf("SCRAPE_CRON %q is not a valid cron spec: %w", cfg.ScrapeCron, err)
	}

	cfg.ScrapeOnStartup = true
	if s := os.Getenv("SCRAPE_ON_STARTUP"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("SCRAPE_ON_STARTUP must be a boolean, got %q", s)
		}
		cfg.ScrapeOnStartup = v
	}

	if s := os.Getenv("TELEGRAM_CHAT_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer, got %q", s)
		}
		cfg.TelegramChatID = id
	}
	if (cfg.TelegramToken == "") != (cfg.TelegramChatID == 0) {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	sources, err := LoadSources(os.Getenv("SOURCES_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	return cfg, nil
}

// LoadSources reads the sources file at path. An empty path yields the
// defaults: every source enabled, built-in search terms, no red flags.
func LoadSources(path string) (Sources, error) {
	s := Sources{RequestDelay: 2 * time.Second}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read sources file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse sources file %s: %w", path, err)
		}
	}

	if len(s.Enabled) == 0 {
		s.Enabled = append([]string(nil), knownSources...)
	}
	for i, name := range s.Enabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if !isKnownSource(name) {
			return s, fmt.Errorf("unknown source %q (want one of %s)", name, strings.Join(knownSources, ", "))
		}
		s.Enabled[i] = name
	}
	if s.RequestDelay < 0 {
		return s, fmt.Errorf("request_delay must not be negative")
	}
	return s, nil
}

func isKnownSource(name string) bool {
	for _, k := range knownSources {
		if k == name {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
