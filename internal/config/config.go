package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Local"
	defaultDatabase = "sag"
	dotenvPath      = ".env"

	configPathEnv      = "SHORTAGE_WATCHER_CONFIG"
	dbUserEnv          = "DB_USER"
	dbPasswordEnv      = "DB_PASSWORD"
	dbServerEnv        = "DB_SERVER"
	dbPortEnv          = "DB_PORT"
	dbNameEnv          = "DB_NAME"
	dbEncryptEnv       = "DB_ENCRYPT"
	dbTrustCertEnv     = "DB_TRUST_SERVER_CERTIFICATE"
	webhookURLEnv      = "SLACK_WEBHOOK"
	webhookTimeoutEnv  = "WEBHOOK_TIMEOUT"
	checkIntervalEnv   = "CHECK_INTERVAL"
	timezoneEnv        = "SCHEDULER_TIMEZONE"
	shutdownTimeoutEnv = "SHUTDOWN_TIMEOUT"
	reportsEnv         = "REPORTS"
	logLevelEnv        = "LOG_LEVEL"
	logFileEnv         = "LOG_FILE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reports   []string        `yaml:"reports"`
}

// DatabaseConfig describes SQL Server connection details.
type DatabaseConfig struct {
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Server                 string `yaml:"server"`
	Port                   int    `yaml:"port"`
	Name                   string `yaml:"name"`
	Encrypt                bool   `yaml:"encrypt"`
	TrustServerCertificate bool   `yaml:"trustServerCertificate"`
}

// WebhookConfig points at the chat webhook receiving alerts.
type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SchedulerConfig defines how often the checks run.
type SchedulerConfig struct {
	Interval        time.Duration  `yaml:"interval"`
	Timezone        string         `yaml:"timezone"`
	ShutdownTimeout time.Duration  `yaml:"shutdownTimeout"`
	location        *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.Local
}

// LoggingConfig controls verbosity and the optional rotating log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load applies defaults, an optional YAML file, .env and environment overrides, in that order.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.Database.User == "" {
		missing = append(missing, dbUserEnv)
	}
	if c.Database.Password == "" {
		missing = append(missing, dbPasswordEnv)
	}
	if c.Database.Server == "" {
		missing = append(missing, dbServerEnv)
	}
	if c.Webhook.URL == "" {
		missing = append(missing, webhookURLEnv)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", c.Scheduler.Interval)
	}
	if len(c.Reports) == 0 {
		return fmt.Errorf("no reports configured")
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(dbUserEnv); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv(dbPasswordEnv); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(dbServerEnv); v != "" {
		c.Database.Server = v
	}
	if v := os.Getenv(dbNameEnv); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv(dbPortEnv); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", dbPortEnv, err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv(dbEncryptEnv); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", dbEncryptEnv, err)
		}
		c.Database.Encrypt = b
	}
	if v := os.Getenv(dbTrustCertEnv); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", dbTrustCertEnv, err)
		}
		c.Database.TrustServerCertificate = b
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Webhook.URL = v
	}

	durations := []struct {
		env    string
		target *time.Duration
	}{
		{webhookTimeoutEnv, &c.Webhook.Timeout},
		{checkIntervalEnv, &c.Scheduler.Interval},
		{shutdownTimeoutEnv, &c.Scheduler.ShutdownTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.env, err)
		}
		*d.target = parsed
	}

	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(reportsEnv); v != "" {
		c.Reports = splitList(v)
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFileEnv); v != "" {
		c.Logging.File = v
	}

	return nil
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.Local
	}
	c.Scheduler.location = loc
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// mergeConfig overlays file values onto defaults. Booleans are taken only
// from the environment since YAML cannot tell false from absent here.
func mergeConfig(base, override Config) Config {
	if override.Database.User != "" {
		base.Database.User = override.Database.User
	}
	if override.Database.Password != "" {
		base.Database.Password = override.Database.Password
	}
	if override.Database.Server != "" {
		base.Database.Server = override.Database.Server
	}
	if override.Database.Port != 0 {
		base.Database.Port = override.Database.Port
	}
	if override.Database.Name != "" {
		base.Database.Name = override.Database.Name
	}

	if override.Webhook.URL != "" {
		base.Webhook.URL = override.Webhook.URL
	}
	if override.Webhook.Timeout != 0 {
		base.Webhook.Timeout = override.Webhook.Timeout
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.ShutdownTimeout != 0 {
		base.Scheduler.ShutdownTimeout = override.Scheduler.ShutdownTimeout
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	if len(override.Reports) > 0 {
		base.Reports = override.Reports
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Name:                   defaultDatabase,
			Encrypt:                true,
			TrustServerCertificate: true,
		},
		Webhook: WebhookConfig{Timeout: 10 * time.Second},
		Scheduler: SchedulerConfig{
			Interval:        time.Hour,
			Timezone:        defaultTimezone,
			ShutdownTimeout: 30 * time.Second,
			location:        time.Local,
		},
		Logging: LoggingConfig{Level: "info"},
		Reports: []string{"line", "lotin"},
	}
}
