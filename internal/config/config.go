package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	StripeSecretKey string

	UPIGatewayURL    string
	UPIGatewayAPIKey string

	NetBankingGatewayURL string
	NetBankingMerchantID string
	NetBankingAPIKey     string
}

// Load reads configuration from the environment, with .env as an optional
// local override for development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		StripeSecretKey: os.Getenv("STRIPE_API_KEY"),

		UPIGatewayURL:    os.Getenv("UPI_GATEWAY_URL"),
		UPIGatewayAPIKey: os.Getenv("UPI_GATEWAY_API_KEY"),

		NetBankingGatewayURL: os.Getenv("NETBANKING_GATEWAY_URL"),
		NetBankingMerchantID: os.Getenv("NETBANKING_MERCHANT_ID"),
		NetBankingAPIKey:     os.Getenv("NETBANKING_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
