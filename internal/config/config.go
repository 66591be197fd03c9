package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env                string
	Port               string
	CORSAllowedOrigins []string
	InternalAPIKey     string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Calendar
	Timezone string
	Location *time.Location

	// Scheduler
	SchedulerTimes        []string
	SchedulerWorkers      int
	SchedulerQueueSize    int
	SchedulerRunOnStartup bool

	// Realtime
	RealtimeEnabled bool

	// Push
	FirebaseCredentialsFile string

	// AI capture
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIWhisper     string
	OpenAILLMModel    string
	OpenAIVisionModel string

	// Entitlements
	FreeFeatureLimit int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		InternalAPIKey:     getEnv("INTERNAL_API_KEY", ""),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finaudy"),
		DBPassword: getEnv("DB_PASSWORD", "finaudy"),
		DBName:     getEnv("DB_NAME", "finaudy"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Calendar
		Timezone: getEnv("APP_TIMEZONE", "America/Sao_Paulo"),

		// Scheduler
		SchedulerTimes:        splitList(getEnv("SCHEDULER_TIMES", "08:00,19:50")),
		SchedulerWorkers:      getEnvInt("SCHEDULER_WORKERS", 4),
		SchedulerQueueSize:    getEnvInt("SCHEDULER_QUEUE_SIZE", 1000),
		SchedulerRunOnStartup: getEnvBool("SCHEDULER_RUN_ON_STARTUP", false),

		// Realtime
		RealtimeEnabled: getEnvBool("REALTIME_ENABLED", true),

		// Push
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		// AI capture
		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIWhisper:     getEnv("OPENAI_WHISPER_MODEL", "whisper-1"),
		OpenAILLMModel:    getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o"),

		// Entitlements
		FreeFeatureLimit: getEnvInt("FREE_FEATURE_LIMIT", 3),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		log.Printf("Warning: unknown APP_TIMEZONE '%s', falling back to UTC\n", config.Timezone)
		loc = time.UTC
	}
	config.Location = loc

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
