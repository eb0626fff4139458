// Package config loads the runtime configuration of the nbazone API from
// built-in defaults, an optional TOML file, a .env file and the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	name    = "nbazone"
	version = "1.2.0"

	envPrefix     = "NBAZONE_"
	configFileEnv = envPrefix + "CONFIG"
)

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// Config is the complete application configuration.
type Config struct {
	Debug     bool     `toml:"debug" env:"DEBUG"`
	LogLevel  LogLevel `toml:"logLevel" env:"LOG_LEVEL"`
	LogFolder string   `toml:"logFolder" env:"LOG_FOLDER"`

	Web      WebConfig      `toml:"web" envPrefix:"WEB_"`
	Auth     AuthConfig     `toml:"auth" envPrefix:"AUTH_"`
	Cache    CacheConfig    `toml:"cache" envPrefix:"CACHE_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DB_"`
}

// WebConfig holds the HTTP listener settings.
type WebConfig struct {
	Listen   string `toml:"listen" env:"LISTEN"`
	Port     int    `toml:"port" env:"PORT"`
	CertFile string `toml:"certFile" env:"CERT_FILE"`
	KeyFile  string `toml:"keyFile" env:"KEY_FILE"`
	// Domain, when set, is the only Host header served.
	Domain   string `toml:"domain" env:"DOMAIN"`
}

// AuthConfig holds JWT and cookie settings.
type AuthConfig struct {
	JWTSecret     string        `toml:"jwtSecret" env:"JWT_SECRET"`
	JWTExpiration time.Duration `toml:"jwtExpiration" env:"JWT_EXPIRATION"`
	CookieName    string        `toml:"cookieName" env:"COOKIE_NAME"`
	CookieSecure  bool          `toml:"cookieSecure" env:"COOKIE_SECURE"`
	// SignInLimit is the number of failed sign-ins allowed per client IP and minute.
	SignInLimit   int           `toml:"signInLimit" env:"SIGNIN_LIMIT"`
}

// CacheConfig holds redis settings. An empty RedisAddr starts an embedded server.
type CacheConfig struct {
	RedisAddr     string        `toml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword string        `toml:"redisPassword" env:"REDIS_PASSWORD"`
	RedisDB       int           `toml:"redisDB" env:"REDIS_DB"`
	TTL           time.Duration `toml:"ttl" env:"TTL"`
}

func GetVersion() string {
	return version
}

func GetName() string {
	return name
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		LogLevel:  Info,
		LogFolder: "/var/log/" + name,
		Web: WebConfig{
			Port: 8080,
		},
		Auth: AuthConfig{
			JWTExpiration: 24 * time.Hour,
			CookieName:    name,
			SignInLimit:   5,
		},
		Cache: CacheConfig{
			TTL: 30 * time.Second,
		},
		Database: *GetDefaultDatabaseConfig(),
	}
}

// Load builds the configuration. Later sources override earlier ones:
// defaults, the TOML file named by NBAZONE_CONFIG, .env, the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(configFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case Debug, Info, Notice, Warn, Error:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535")
	}
	if (c.Web.CertFile == "") != (c.Web.KeyFile == "") {
		return fmt.Errorf("web cert file and key file must be set together")
	}
	if c.Auth.JWTExpiration <= 0 {
		return fmt.Errorf("jwt expiration must be positive")
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		return fmt.Errorf("cookie name cannot be empty")
	}
	if c.Auth.SignInLimit <= 0 {
		return fmt.Errorf("sign-in limit must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	return c.Database.ValidateConfig()
}

// EnsureJWTSecret fills in a random secret when none is configured and
// reports whether it did so. Tokens signed with it do not survive a restart.
func (c *Config) EnsureJWTSecret() (bool, error) {
	if c.Auth.JWTSecret != "" {
		return false, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return false, err
	}
	c.Auth.JWTSecret = hex.EncodeToString(b)
	return true, nil
}
