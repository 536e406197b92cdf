package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	BlogAPIURL     string
	BlogAPITimeout time.Duration

	CacheBackend   string
	CacheStaleTime time.Duration
	CacheGCTime    time.Duration
	RenderWait     time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SessionSecret string
	SessionTTL    time.Duration

	CORSAllowedOrigins []string
	OTLPEndpoint       string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		BlogAPIURL:     strings.TrimRight(getEnv("BLOG_API_URL", "http://localhost:3001"), "/"),
		BlogAPITimeout: getDuration("BLOG_API_TIMEOUT", 10*time.Second),

		CacheBackend:   getEnv("CACHE_BACKEND", "memory"),
		CacheStaleTime: getDuration("CACHE_STALE_TIME", 30*time.Second),
		CacheGCTime:    getDuration("CACHE_GC_TIME", 5*time.Minute),
		RenderWait:     getDuration("RENDER_WAIT", 2*time.Second),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "dailyread"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SessionSecret: getEnv("SESSION_SECRET", "default-secret"),
		SessionTTL:    getDuration("SESSION_TTL", 30*24*time.Hour),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// DatabaseURL is the postgres DSN, or the file path when DBDriver is sqlite.
func (c *Config) DatabaseURL() string {
	if c.DBDriver == "sqlite" {
		return c.DBName
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return d
}

func getInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
