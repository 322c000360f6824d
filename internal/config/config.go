package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Queue     QueueConfig
	Engine    EngineConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	WorkerLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type QueueConfig struct {
	TopicName   string
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

type EngineConfig struct {
	Provider string // "http" or "template"
	BaseURL  string
	ApiKey   string
	Timeout  time.Duration
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			WorkerLogFilePath:  getEnv("WORKER_LOG_FILE_PATH", "worker.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Queue: QueueConfig{
			TopicName:   getEnv("GENERATION_TOPIC_NAME", "SECTION_GENERATION"),
			MaxAttempts: getEnvAsInt("GENERATION_MAX_ATTEMPTS", 3),
			MinBackoff:  getEnvAsDuration("GENERATION_MIN_BACKOFF", 5*time.Second),
			MaxBackoff:  getEnvAsDuration("GENERATION_MAX_BACKOFF", 60*time.Second),
		},
		Engine: EngineConfig{
			Provider: getEnv("GENERATION_PROVIDER", "http"),
			BaseURL:  getEnv("GENERATION_BASE_URL", "http://localhost:8081"),
			ApiKey:   getEnv("GENERATION_API_KEY", ""),
			Timeout:  getEnvAsDuration("GENERATION_TIMEOUT", 120*time.Second),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 5),
			Window:      getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
