package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Session   SessionConfig
	OAuth     OAuthConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port        string
	BaseURL     string
	Environment string
	LogFilePath string
	NatsURL     string
	RedisURL    string
}

type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
}

type BackendConfig struct {
	BaseURL string
}

type SessionConfig struct {
	Backend        string // "memory" or "redis"
	CookieName     string
	CookieSecure   bool
	RetentionHours int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FirebaseAPIKey     string // empty disables the Firebase token exchange
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	baseURL := getEnv("APP_BASE_URL", "http://localhost:3000")

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "3000"),
			BaseURL:     baseURL,
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/queridoc-web.log"),
			NatsURL:     getEnv("NATS_URL", ""),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		},
		Session: SessionConfig{
			Backend:        getEnv("SESSION_BACKEND", "memory"),
			CookieName:     getEnv("SESSION_COOKIE_NAME", "queridoc_sid"),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", false),
			RetentionHours: getEnvAsInt("SESSION_RETENTION_HOURS", 24*30),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", baseURL+"/auth/google/callback"),
			FirebaseAPIKey:     getEnv("FIREBASE_API_KEY", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
