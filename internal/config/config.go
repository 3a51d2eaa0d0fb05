package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pat-tracker/internal/season"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath      string
	ServerPort  string
	LogLevel    string
	CacheTTL    time.Duration
	CORSOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	Redis RedisConfig
	Steam SteamConfig

	SeasonsPath string
	Seasons     *season.Table
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type SteamConfig struct {
	APIKey     string
	BaseURL    string
	StaleAfter time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:            getEnv("DB_PATH", "pat.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CacheTTL:          getDurationEnv("CACHE_TTL", 0),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "pat"),
		},
		Steam: SteamConfig{
			APIKey:     getEnv("STEAM_API_KEY", ""),
			BaseURL:    getEnv("STEAM_API_URL", "https://api.steampowered.com"),
			StaleAfter: getDurationEnv("PROFILE_STALE_AFTER", 24*time.Hour),
		},
		SeasonsPath: getEnv("SEASONS_PATH", ""),
	}

	if cfg.ServerPort == "" {
		return nil, fmt.Errorf("SERVER_PORT must not be empty")
	}
	if cfg.RateLimitRequests < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}

	seasons, err := LoadSeasons(cfg.SeasonsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load seasons: %w", err)
	}
	cfg.Seasons = seasons

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Bool("redis", cfg.Redis.Enabled()).
		Int("seasons", len(seasons.All())).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
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

var Module = fx.Provide(Load)
