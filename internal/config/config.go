package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	HTTPPort      string
	LogMode       string

	AdminUsername string
	AdminPassword string
	JWTSecret     string

	ClientTokenTTL time.Duration

	CORSOrigins     string
	CatalogCacheTTL time.Duration
	ReportCacheTTL  time.Duration

	AI *AIConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "garmentscore"),
		RedisAddr:       strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		HTTPPort:        getEnv("PORT", "8080"),
		LogMode:         getEnv("LOG_MODE", "dev"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "password123"),
		JWTSecret:       getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		ClientTokenTTL:  getDuration("CLIENT_TOKEN_TTL", 72*time.Hour),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		ReportCacheTTL:  getDuration("REPORT_CACHE_TTL", 24*time.Hour),
		AI:              DefaultAIConfig(),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
