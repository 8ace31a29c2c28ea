package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SyncProfile groups sweep cadence and cache lifetimes for one deployment mode.
type SyncProfile struct {
	Name          string
	SweepSchedule string
	RoomsCacheTTL time.Duration
	StatsCacheTTL time.Duration
}

var syncProfiles = map[string]SyncProfile{
	"development": {Name: "development", SweepSchedule: "@every 1m", RoomsCacheTTL: 30 * time.Second, StatsCacheTTL: 60 * time.Second},
	"production":  {Name: "production", SweepSchedule: "@every 5m", RoomsCacheTTL: 2 * time.Minute, StatsCacheTTL: 5 * time.Minute},
	"economy":     {Name: "economy", SweepSchedule: "@every 10m", RoomsCacheTTL: 5 * time.Minute, StatsCacheTTL: 10 * time.Minute},
}

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	SeedData bool

	RedisAddr     string
	RedisUser     string
	RedisPassword string
	RedisDB       int

	Sync         SyncProfile
	SyncDebounce time.Duration
	Location     *time.Location

	CORSOrigins    string
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel string
	LogDir   string
}

// Load reads the configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          envOrDefault("PORT", "8080"),
		GinMode:       envOrDefault("GIN_MODE", "debug"),
		DBDriver:      strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		RedisAddr:     envOrDefault("REDIS_ADDR", ""),
		RedisUser:     envOrDefault("REDIS_USER", ""),
		RedisPassword: envOrDefault("REDIS_PASSWORD", ""),
		CORSOrigins:   envOrDefault("CORS_ORIGINS", "*"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogDir:        envOrDefault("LOG_DIR", "logs"),
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or memory)", cfg.DBDriver)
	}

	var err error
	if cfg.SeedData, err = envBool("DB_SEED", true); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	rps, err := envInt("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitRPS = float64(rps)

	mode := strings.ToLower(envOrDefault("SYNC_MODE", "development"))
	profile, ok := syncProfiles[mode]
	if !ok {
		return nil, fmt.Errorf("unknown SYNC_MODE %q", mode)
	}
	profile.SweepSchedule = envOrDefault("SYNC_CRON", profile.SweepSchedule)
	cfg.Sync = profile

	if cfg.SyncDebounce, err = envDuration("SYNC_DEBOUNCE", time.Minute); err != nil {
		return nil, err
	}

	tz := envOrDefault("HOTEL_TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid HOTEL_TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envInt(key string, def int) (int, error) {
	raw := envOrDefault(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := envOrDefault(key, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := envOrDefault(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
