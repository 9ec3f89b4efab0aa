package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool
	AuthCookieDomain string

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

	RedisAddr     string
	RedisPassword string

	OTLPEndpoint string

	StripeAPIKey        string
	StripeSigningSecret string

	AssetBucket    string
	AssetRegion    string
	AssetEndpoint  string
	AssetAccessKey string
	AssetSecretKey string
	AssetPublicURL string

	// LowStockThreshold marks products as low stock when current_stock
	// drops to or below this value after a sale.
	LowStockThreshold int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:          getenv("APP_SERVICE", "vendly"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,
		AuthCookieDomain: strings.TrimSpace(getenv("AUTH_COOKIE_DOMAIN", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "vendly"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		StripeAPIKey:        strings.TrimSpace(getenv("STRIPE_API_KEY", "")),
		StripeSigningSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SIGNING_SECRET", "")),

		AssetBucket:    getenv("ASSET_BUCKET", "vendly-assets"),
		AssetRegion:    getenv("ASSET_REGION", "us-east-1"),
		AssetEndpoint:  strings.TrimSpace(getenv("ASSET_ENDPOINT", "")),
		AssetAccessKey: getenv("ASSET_ACCESS_KEY", ""),
		AssetSecretKey: getenv("ASSET_SECRET_KEY", ""),
		AssetPublicURL: strings.TrimRight(getenv("ASSET_PUBLIC_URL", ""), "/"),

		LowStockThreshold: getenvInt("LOW_STOCK_THRESHOLD", 3),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
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
