package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// empty DBURL means the in-memory store
	DBURL    string
	RedisURL string

	CORSOrigins []string
	CacheTTL    time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	OTELEndpoint string

	StaticDir string
	IndexFile string
}

func Load() Config {
	// .env is a dev convenience; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return Config{
		Env:            getEnv("APP_ENV", "dev"),
		Port:           getEnvInt("PORT", 8080),
		DBURL:          buildDBURL(),
		RedisURL:       getEnv("REDIS_URL", ""),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		CacheTTL:       time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
		OTELEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		StaticDir:      getEnv("STATIC_DIR", "public"),
		IndexFile:      getEnv("INDEX_FILE", "views/index.html"),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "fitlog")
	pass := getEnv("DB_PASSWORD", "fitlog")
	name := getEnv("DB_NAME", "fitlog")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if num, err := strconv.Atoi(v); err == nil {
			return num
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if num, err := strconv.ParseFloat(v, 64); err == nil {
			return num
		}
	}
	return fallback
}
