package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yashrajoria/food-ordering-backend/awsx"
)

type Config struct {
	Env  string
	Port string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL     string
	CartCacheTTL time.Duration

	KafkaBrokers string
	KafkaTopic   string

	StripeSecretKey  string
	StripeWebhookKey string
	PaymentCurrency  string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	// PaymentBaseURL is the frontend payment page; the order id is appended
	// to build the payment link returned at checkout.
	PaymentBaseURL string

	TemplateDir string
}

func Load() (*Config, error) {
	// .env is optional; system environment wins in deployed environments.
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		RedisURL:     getEnv("REDIS_URL", ""),
		CartCacheTTL: time.Hour * 24 * 7,

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("ORDER_EVENTS_TOPIC", "order.events"),

		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_KEY"),
		PaymentCurrency:  getEnv("PAYMENT_CURRENCY", "usd"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		PaymentBaseURL: getEnv("PAYMENT_BASE_URL", "http://localhost:3000/pay"),

		TemplateDir: getEnv("TEMPLATE_DIR", "templates"),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := cfg.applySecrets(context.Background()); err != nil {
			return nil, err
		}
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}

	return cfg, nil
}

// applySecrets overrides DB and Stripe credentials from Secrets Manager.
// Missing secrets are not fatal; env values stay in place.
func (c *Config) applySecrets(ctx context.Context) error {
	awsCfg, err := awsx.LoadConfig(ctx)
	if err != nil {
		return err
	}
	sm := awsx.NewSecretsClient(awsCfg)

	if raw, err := sm.GetSecret(ctx, "foodapp/DB_CREDENTIALS"); err == nil && raw != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			setIfPresent(&c.PostgresUser, m, "POSTGRES_USER")
			setIfPresent(&c.PostgresPassword, m, "POSTGRES_PASSWORD")
			setIfPresent(&c.PostgresDB, m, "POSTGRES_DB")
			setIfPresent(&c.PostgresHost, m, "POSTGRES_HOST")
			setIfPresent(&c.PostgresPort, m, "POSTGRES_PORT")
		}
	}

	if raw, err := sm.GetSecret(ctx, "foodapp/STRIPE_KEYS"); err == nil && raw != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			setIfPresent(&c.StripeSecretKey, m, "STRIPE_SECRET_KEY")
			setIfPresent(&c.StripeWebhookKey, m, "STRIPE_WEBHOOK_KEY")
		}
	}

	return nil
}

func setIfPresent(dst *string, m map[string]string, key string) {
	if v, ok := m[key]; ok && v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
