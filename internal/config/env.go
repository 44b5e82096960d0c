package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr        string
	GinMode        string
	DBDSN          string
	RedisURL       string
	KafkaBrokers   []string
	KafkaTopic     string
	JWTSecret      string
	SearchCacheTTL time.Duration
	ReserveRetries int
}

func LoadEnv() Env {
	env := Env{
		AppAddr:        getenv("APP_ADDR", ":8080"),
		GinMode:        strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:          strings.TrimSpace(os.Getenv("DB_DSN")),
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
		KafkaTopic:     getenv("KAFKA_TOPIC", "booking-events"),
		JWTSecret:      getenv("JWT_SECRET", "super-secret-key-change-me"),
		SearchCacheTTL: 30 * time.Second,
		ReserveRetries: 3,
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				env.KafkaBrokers = append(env.KafkaBrokers, b)
			}
		}
	}

	if ttl := strings.TrimSpace(os.Getenv("SEARCH_CACHE_TTL_SECONDS")); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n >= 0 {
			env.SearchCacheTTL = time.Duration(n) * time.Second
		}
	}

	return env
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
