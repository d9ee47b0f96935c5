// Package config loads the immutable runtime configuration for the
// acquisitions API from the process environment. Every component receives
// the values it needs at construction time; nothing reads the environment
// after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/acquisitions/api/util/random"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// Config carries all startup settings. Treat as read-only after Load.
type Config struct {
	Environment Environment

	Listen string
	Port   int

	// JWTSecret signs bearer tokens. Required in production; a throwaway
	// secret is generated for development so tokens do not survive restarts.
	JWTSecret string
	TokenTTL  time.Duration

	DBPath string

	// SecurityKey identifies this deployment to the admission-control
	// engine. The engine runs its rules in dry-run outside production.
	SecurityKey   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// RulesJSON optionally overrides the built-in shield/bot rule set.
	RulesJSON []byte

	LogLevel  LogLevel
	LogFolder string
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   environment(),
		Listen:        getEnv("LISTEN", ""),
		Port:          getInt("PORT", 3000),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      24 * time.Hour,
		DBPath:        getEnv("DB_PATH", "acquisitions.db"),
		SecurityKey:   os.Getenv("SECURITY_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		LogLevel:      logLevel(),
		LogFolder:     getEnv("LOG_FOLDER", "log"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT is not a valid port: %d", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = random.Seq(32)
	}

	if path := os.Getenv("SECURITY_RULES_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read SECURITY_RULES_FILE: %w", err)
		}
		cfg.RulesJSON = data
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

func environment() Environment {
	if strings.EqualFold(os.Getenv("APP_ENV"), string(Production)) {
		return Production
	}
	return Development
}

func logLevel() LogLevel {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return Info
	}
	return LogLevel(strings.ToLower(level))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
