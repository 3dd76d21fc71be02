package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis
	RedisURL string

	// Session tokens
	SessionSecret string
	SessionTTL    time.Duration

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	GeminiTimeout        time.Duration

	// Pipeline
	MaxUploadBytes  int64
	MinTextLength   int
	UploadRateLimit int

	// Frontend
	FrontendURL string
}

// Load reads everything the HTTP server needs. Missing required keys panic.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := LoadGenerator()
	cfg.Port = getEnvOrDefault("PORT", "8080")
	cfg.Env = getEnvOrDefault("ENV", "development")
	cfg.RedisURL = mustGetEnv("REDIS_URL")
	cfg.SessionSecret = mustGetEnv("SESSION_SECRET")
	cfg.SessionTTL = getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour)
	cfg.MaxUploadBytes = int64(getEnvAsIntOrDefault("MAX_UPLOAD_BYTES", 25*1024*1024))
	cfg.UploadRateLimit = getEnvAsIntOrDefault("UPLOAD_RATE_LIMIT", 10)
	cfg.FrontendURL = getEnvOrDefault("FRONTEND_URL", "http://localhost:5173")

	return cfg
}

// LoadGenerator reads only the keys the document-to-quiz pipeline needs,
// for the command-line tool.
func LoadGenerator() *Config {
	godotenv.Load()

	return &Config{
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiTimeout:        getEnvAsDurationOrDefault("GEMINI_TIMEOUT", 90*time.Second),
		MinTextLength:        getEnvAsIntOrDefault("MIN_TEXT_LENGTH", 100),
	}
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
