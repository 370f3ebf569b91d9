package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read once at startup from the environment (and .env, loaded by main).
type Config struct {
	Port string

	DBDriver   string // mysql, postgres or sqlite
	SQLitePath string
	DBLogLevel string

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RoomCacheTTL  time.Duration

	RabbitMQURL string
	EventsQueue string

	DueOutSweepInterval time.Duration
	Location            *time.Location
}

func Load() Config {
	cfg := Config{
		Port:          envOrDefault("PORT", "8080"),
		DBDriver:      strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		SQLitePath:    envOrDefault("SQLITE_PATH", "frontdesk.db"),
		DBLogLevel:    strings.ToLower(envOrDefault("DB_LOG_LEVEL", "warn")),
		CORSOrigins:   parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RoomCacheTTL:  envDuration("ROOM_CACHE_TTL", 30*time.Second),
		RabbitMQURL:   strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		EventsQueue:   envOrDefault("EVENTS_QUEUE", "hotel.lifecycle"),

		DueOutSweepInterval: envDuration("DUE_OUT_SWEEP_INTERVAL", time.Hour),
		Location:            time.Local,
	}

	if tz := strings.TrimSpace(os.Getenv("HOTEL_TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("[WARN] HOTEL_TIMEZONE %q: %v; using local time", tz, err)
		} else {
			cfg.Location = loc
		}
	}
	return cfg
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a number; using %d", key, v, def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if v == "0" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[WARN] %s=%q is not a valid duration; using %s", key, v, def)
		return def
	}
	return d
}
