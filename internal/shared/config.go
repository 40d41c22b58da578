package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SourceBase  string
	SourceKey   string
	Workers     int
	ReviewCount int
	PlaceIDs    []int64
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewsvisor?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		SourceBase:  env("SOURCE_BASE_URL", "https://api.reviews-source.example/v1"),
		SourceKey:   env("SOURCE_API_KEY", ""),
		Workers:     atoi("IMPORT_WORKERS", 8),
		ReviewCount: atoi("IMPORT_REVIEW_COUNT", 100),
		PlaceIDs:    placeIDs("IMPORT_PLACE_IDS"),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.SourceKey == "" {
		log.Warn().Msg("SOURCE_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// placeIDs parses a comma-separated id list; bad entries are logged and skipped.
func placeIDs(k string) []int64 {
	raw := os.Getenv(k)
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("value", part).Msg("skipping invalid place id")
			continue
		}
		out = append(out, id)
	}
	return out
}
