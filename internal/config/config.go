package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AdminToken string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string

	VideoAPIURL     string
	VideoAPIKey     string
	VideoCDNBaseURL string

	WebhookSecrets WebhookSecrets
}

// WebhookSecrets carries per-provider webhook verification material.
type WebhookSecrets struct {
	Stripe   string
	Paystack string
	PayPal   string
	Mpesa    string
	Wise     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "kairah"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		AdminToken: strings.TrimSpace(getenv("ADMIN_TOKEN", "")),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "kairah"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		VideoAPIURL:     strings.TrimSpace(getenv("VIDEO_API_URL", "")),
		VideoAPIKey:     strings.TrimSpace(getenv("VIDEO_API_KEY", "")),
		VideoCDNBaseURL: getenv("VIDEO_CDN_BASE_URL", "https://cdn.kairahstudio.com/videos"),

		WebhookSecrets: WebhookSecrets{
			Stripe:   strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
			Paystack: strings.TrimSpace(getenv("PAYSTACK_WEBHOOK_SECRET", "")),
			PayPal:   strings.TrimSpace(getenv("PAYPAL_WEBHOOK_SECRET", "")),
			Mpesa:    strings.TrimSpace(getenv("MPESA_WEBHOOK_SECRET", "")),
			Wise:     strings.TrimSpace(getenv("WISE_WEBHOOK_SECRET", "")),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewBillingConfigHolder),
)
