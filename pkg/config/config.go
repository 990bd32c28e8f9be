package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTP     HTTPConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig
	Webhook  WebhookConfig
	Gateway  GatewayConfig
	Admin    AdminConfig

	GRPCPort int
}

type HTTPConfig struct {
	Port               string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	SessionTTL         time.Duration
	SecureCookies      bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CatalogConfig struct {
	DBPath         string
	MigrationsPath string
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	CheckoutMigrationsPath string
	OrdersMigrationsPath   string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type WebhookConfig struct {
	URL            string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type GatewayConfig struct {
	KeyID         string
	KeySecret     string
	BaseURL       string
	Currency      string
	MerchantName  string
	ThemeColor    string
	PaymentWindow time.Duration
	Timeout       time.Duration
}

type AdminConfig struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Port:               getEnv("HTTP_PORT", "8080"),
			RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 45*time.Second),
			ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxRequestBodySize: 1 << 20, // 1MB
			SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
			SecureCookies:      getEnvBool("SECURE_COOKIES", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Catalog: CatalogConfig{
			DBPath:         getEnv("CATALOG_DB_PATH", "catalog.db"),
			MigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/repository/migrations"),
		},
		Postgres: PostgresConfig{
			Host:                   getEnv("DB_HOST", "localhost"),
			Port:                   getEnvInt("DB_PORT", 5432),
			User:                   getEnv("DB_USER", "postgres"),
			Password:               getEnv("DB_PASSWORD", "postgres"),
			DBName:                 getEnv("DB_NAME", "bakehouse"),
			CheckoutMigrationsPath: getEnv("CHECKOUT_MIGRATIONS_PATH", "./internal/checkout/repository/migrations"),
			OrdersMigrationsPath:   getEnv("ORDERS_MIGRATIONS_PATH", "./internal/orders/repository/migrations"),
		},
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB_NAME", "bakehouse"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_ORDERS_TOPIC", "orders-outbox"),
			GroupID: getEnv("KAFKA_GROUP_ID", "orders-consumer"),
		},
		Webhook: WebhookConfig{
			URL:            getEnv("WEBHOOK_URL", ""),
			Timeout:        getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
			MaxAttempts:    getEnvInt("WEBHOOK_MAX_ATTEMPTS", 3),
			InitialBackoff: getEnvDuration("WEBHOOK_INITIAL_BACKOFF", time.Second),
			MaxBackoff:     getEnvDuration("WEBHOOK_MAX_BACKOFF", 10*time.Second),
		},
		Gateway: GatewayConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:       getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Currency:      getEnv("PAYMENT_CURRENCY", "INR"),
			MerchantName:  getEnv("MERCHANT_NAME", "Neha's Bakehouse"),
			ThemeColor:    getEnv("PAYMENT_THEME_COLOR", "#F97316"),
			PaymentWindow: getEnvDuration("PAYMENT_WINDOW", 15*time.Minute),
			Timeout:       getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Admin: AdminConfig{
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 8*time.Hour),
		},
		GRPCPort: getEnvInt("GRPC_PORT", 50055),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
