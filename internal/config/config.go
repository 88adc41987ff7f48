package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"workflow_api/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	AutoMigrate bool

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Per-IP fixed-window limits
	AuthRateLimit  int
	AuthRateWindow time.Duration
	APIRateLimit   int
	APIRateWindow  time.Duration

	CORSOrigins []string
}

// Load reads .env (if present) and the process environment.
// Missing DATABASE_URL or JWT_SECRET is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, missing := FromEnv(os.Getenv)
	if missing != "" {
		logger.Fatal(missing + " is not set")
	}
	return cfg
}

// FromEnv builds a Config from a lookup function. The second return value
// names the first required variable that is empty.
func FromEnv(getenv func(string) string) (*Config, string) {
	cfg := &Config{
		DatabaseURL:   getenv("DATABASE_URL"),
		JWTSecret:     getenv("JWT_SECRET"),
		LogLevel:      getenv("LOG_LEVEL"),
		LogJSON:       getenv("LOG_JSON") == "true",
		AutoMigrate:   getenv("AUTO_MIGRATE") == "true",
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return nil, "DATABASE_URL"
	}
	if cfg.JWTSecret == "" {
		return nil, "JWT_SECRET"
	}

	cfg.AppPort = getenv("PORT")
	if cfg.AppPort == "" {
		cfg.AppPort = getenv("APP_PORT")
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "5000"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.TokenTTL = time.Duration(positiveInt(getenv("TOKEN_TTL_HOURS"), 24)) * time.Hour
	cfg.RedisDB = positiveInt(getenv("REDIS_DB"), 0)

	cfg.AuthRateLimit = positiveInt(getenv("AUTH_RATE_LIMIT"), 5)
	cfg.AuthRateWindow = time.Duration(positiveInt(getenv("AUTH_RATE_WINDOW_SECONDS"), 60)) * time.Second
	cfg.APIRateLimit = positiveInt(getenv("API_RATE_LIMIT"), 120)
	cfg.APIRateWindow = time.Duration(positiveInt(getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second

	// comma separated; empty means reflect any Origin
	if v := getenv("CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg, ""
}

func positiveInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
