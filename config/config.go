package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	JWTSecret      string
	Redis          RedisConfig
	Mongo          MongoConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MongoConfig points at the application database that backs identity and
// documents. The coordinator only pings it so hosted instances don't idle
// out; an empty URI disables the probe.
type MongoConfig struct {
	URI          string
	Database     string
	PingInterval time.Duration
}

func Load() *Config {
	// Optional .env for local development; real env vars win in deployment.
	_ = godotenv.Load()

	// Parse allowed origins (comma-separated)
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	origins := strings.Split(originsStr, ",")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: origins,
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Mongo: MongoConfig{
			URI:          getEnv("MONGO_URI", ""),
			Database:     getEnv("MONGO_DATABASE", "pairpad"),
			PingInterval: getEnvSeconds("MONGO_PING_INTERVAL_SECONDS", 60),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	seconds := defaultSeconds
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			seconds = n
		}
	}
	return time.Duration(seconds) * time.Second
}
