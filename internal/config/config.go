package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	Environment string

	JWTSecret                 string
	TokenLifetimeSeconds      int
	TokenRefreshWindowSeconds int

	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool
	RateLimitMaxKeys       int

	ProxyTimeoutSeconds int

	GoalsURL     string
	MetricsURL   string
	ChangesURL   string
	ProcessesURL string
	ScenariosURL string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                  addr,
		Environment:               envDefault("EDGE_ENV", "production"),
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		TokenLifetimeSeconds:      envIntDefault("TOKEN_LIFETIME_SECONDS", 86400),
		TokenRefreshWindowSeconds: envIntDefault("TOKEN_REFRESH_WINDOW_SECONDS", 3600),
		PostgresDSN:               os.Getenv("POSTGRES_DSN"),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:                   envIntDefault("REDIS_DB", 0),
		AllowedOrigins:            envListDefault("ALLOWED_ORIGINS", nil),
		RateLimitRequests:         envIntDefault("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindowSeconds:    envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 900),
		RateLimitFailClosed:       envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:          envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		ProxyTimeoutSeconds:       envIntDefault("PROXY_TIMEOUT_SECONDS", 30),
		GoalsURL:                  os.Getenv("GOALS_URL"),
		MetricsURL:                os.Getenv("METRICS_URL"),
		ChangesURL:                os.Getenv("CHANGES_URL"),
		ProcessesURL:              os.Getenv("PROCESSES_URL"),
		ScenariosURL:              os.Getenv("SCENARIOS_URL"),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment != "development"
}

func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeSeconds) * time.Second
}

func (c Config) TokenRefreshWindow() time.Duration {
	return time.Duration(c.TokenRefreshWindowSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c Config) ProxyTimeout() time.Duration {
	return time.Duration(c.ProxyTimeoutSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func envListDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
