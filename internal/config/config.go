package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	AppEnv string `yaml:"app_env"`

	// GitHub
	Repo       string `yaml:"repo"`
	Host       string `yaml:"host"`
	Token      string `yaml:"-"`
	IssueLimit int    `yaml:"issue_limit"`
	IncludePRs bool   `yaml:"include_prs"`
	// FetchAttempts above 1 enables retry with backoff in the REST client.
	FetchAttempts int           `yaml:"fetch_attempts"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`

	// Dashboard
	HTTPAddr    string `yaml:"http_addr"`
	RefreshCron string `yaml:"refresh_cron"`

	TZ     string `yaml:"timezone"`
	LogDir string `yaml:"log_dir"`

	// Location is resolved from TZ.
	Location *time.Location `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		AppEnv:        "dev",
		IssueLimit:    100,
		FetchAttempts: 1,
		FetchTimeout:  30 * time.Second,
		HTTPAddr:      ":8080",
		RefreshCron:   "*/15 * * * *",
		Location:      time.Local,
	}
}

// Load builds the configuration from, in increasing priority: defaults, an
// optional YAML file (path, or ISSUEDASH_CONFIG when path is empty) and the
// environment, after .env has been loaded into it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables")
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("ISSUEDASH_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	applyEnv(&cfg)

	if cfg.IssueLimit <= 0 {
		cfg.IssueLimit = 100
	}
	if cfg.FetchAttempts <= 0 {
		cfg.FetchAttempts = 1
	}

	loc := time.Local
	if cfg.TZ != "" {
		l, err := time.LoadLocation(cfg.TZ)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.TZ, err)
		}
		loc = l
	}
	cfg.Location = loc

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.Host = getEnv("GH_HOST", cfg.Host)
	cfg.Token = firstEnv("GITHUB_TOKEN", "GH_TOKEN")

	// GITHUB_OWNER + GITHUB_REPO, or owner/repo in GITHUB_REPO or GH_REPO
	owner := os.Getenv("GITHUB_OWNER")
	repo := os.Getenv("GITHUB_REPO")
	switch {
	case owner != "" && repo != "" && !strings.Contains(repo, "/"):
		cfg.Repo = owner + "/" + repo
	case strings.Contains(repo, "/"):
		cfg.Repo = repo
	case os.Getenv("GH_REPO") != "":
		cfg.Repo = os.Getenv("GH_REPO")
	}

	cfg.IssueLimit = getEnvInt("ISSUE_LIMIT", cfg.IssueLimit)
	cfg.IncludePRs = getEnvBool("INCLUDE_PRS", cfg.IncludePRs)
	cfg.FetchAttempts = getEnvInt("FETCH_ATTEMPTS", cfg.FetchAttempts)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	// An empty REFRESH_CRON disables scheduled refresh.
	if v, ok := os.LookupEnv("REFRESH_CRON"); ok {
		cfg.RefreshCron = strings.TrimSpace(v)
	}
	cfg.TZ = getEnv("APP_TZ", cfg.TZ)
	cfg.LogDir = getEnv("LOGS_FOLDER", cfg.LogDir)
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "prod") || strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
