package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone data for hosts without /usr/share/zoneinfo

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              string
	DBDSN             string
	LogFile           string
	SessionTTL        time.Duration
	AdminSeedPassword string
	AMQPURL           string
	CookieSecure      bool
	// TimeZone is the IANA zone the cooperative works in; it decides
	// which calendar day counts as today for bookings.
	TimeZone string
}

// fileConfig mirrors the optional YAML file; env vars win over it.
type fileConfig struct {
	Port              string `yaml:"port"`
	DBDSN             string `yaml:"db_dsn"`
	LogFile           string `yaml:"log_file"`
	SessionTTL        string `yaml:"session_ttl"`
	AdminSeedPassword string `yaml:"admin_seed_password"`
	AMQPURL           string `yaml:"amqp_url"`
	CookieSecure      *bool  `yaml:"cookie_secure"`
	TimeZone          string `yaml:"time_zone"`
}

func defaults() Config {
	return Config{
		Port:       "8080",
		DBDSN:      "coopsite.db", // sqlite file in project root
		LogFile:    "./coopsite.log",
		SessionTTL: 12 * time.Hour,
		TimeZone:   "Europe/Rome",
	}
}

// Load builds the config from defaults, then CONFIG_FILE (if set), then env.
func Load() Config {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := loadFile(path)
		if err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		} else {
			cfg = fc.apply(cfg)
		}
	}
	cfg = applyEnv(cfg)
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SESSION_TTL=%s AMQP=%s COOKIE_SECURE=%t TIME_ZONE=%s",
		cfg.Port, maskDSN(cfg.DBDSN), cfg.LogFile, cfg.SessionTTL, maskDSN(cfg.AMQPURL), cfg.CookieSecure, cfg.TimeZone)
	return cfg
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc := &fileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, err
	}
	return fc, nil
}

func (fc *fileConfig) apply(cfg Config) Config {
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.DBDSN != "" {
		cfg.DBDSN = fc.DBDSN
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if d, err := time.ParseDuration(fc.SessionTTL); err == nil && d > 0 {
		cfg.SessionTTL = d
	}
	if fc.AdminSeedPassword != "" {
		cfg.AdminSeedPassword = fc.AdminSeedPassword
	}
	if fc.AMQPURL != "" {
		cfg.AMQPURL = fc.AMQPURL
	}
	if fc.CookieSecure != nil {
		cfg.CookieSecure = *fc.CookieSecure
	}
	if fc.TimeZone != "" {
		cfg.TimeZone = fc.TimeZone
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		} else {
			log.Printf("[warn] ignoring invalid SESSION_TTL=%q", v)
		}
	}
	cfg.AdminSeedPassword = getEnv("ADMIN_SEED_PASSWORD", cfg.AdminSeedPassword)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CookieSecure = b
		}
	}
	cfg.TimeZone = getEnv("TIME_ZONE", cfg.TimeZone)
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		log.Printf("[warn] invalid TIME_ZONE=%q, falling back to UTC", cfg.TimeZone)
		cfg.TimeZone = "UTC"
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		log.Printf("[warn] invalid PORT=%q, falling back to 8080", cfg.Port)
		cfg.Port = "8080"
	}
	return cfg
}

// Location resolves TimeZone. An empty or unknown zone is UTC.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// maskDSN hides the password part of URL-style DSNs.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return dsn[:scheme+3] + creds[:i] + ":***" + dsn[at:]
	}
	return dsn
}
