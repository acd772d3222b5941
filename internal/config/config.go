package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port              int
	NatsURL           string
	NatsToken         string
	DatabaseURL       string
	RedisURL          string
	LogLevel          string
	APIToken          string
	AllowedOrigin     string
	RateLimit         int
	SessionTTL        time.Duration
	WeatherCondition  string
	SpeakerTimeout    time.Duration
	TripMinMinutes    int
	TripMaxMinutes    int
	PreferredCuisines []string
	MaxPriceLevel     int
}

func Load() Config {
	return Config{
		Port:              envInt("WAYFARER_PORT", 8760),
		NatsURL:           envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		RedisURL:          envStr("REDIS_URL", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		APIToken:          envStr("WAYFARER_API_TOKEN", ""),
		AllowedOrigin:     envStr("WAYFARER_ALLOWED_ORIGIN", "*"),
		RateLimit:         envInt("WAYFARER_RATE_LIMIT", 10),
		SessionTTL:        envDuration("SESSION_TTL", 30*time.Minute),
		WeatherCondition:  envStr("WEATHER_CONDITION", "raining"),
		SpeakerTimeout:    envDuration("SPEAKER_TIMEOUT", 60*time.Second),
		TripMinMinutes:    envInt("TRIP_MIN_MINUTES", 30),
		TripMaxMinutes:    envInt("TRIP_MAX_MINUTES", 90),
		PreferredCuisines: envList("PREFERRED_CUISINES", []string{"vegetarian", "indian"}),
		MaxPriceLevel:     envInt("MAX_PRICE_LEVEL", 2),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings such as "45s" or "30m".
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated value, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
