package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// OTP lifecycle.
	OTPTTL          time.Duration
	OTPMaxAttempts  int
	SweepInterval   time.Duration
	DeliveryTimeout time.Duration

	// DeliveryChannel selects the transport: "smtp" (default) or "sns".
	DeliveryChannel string

	// DebugEchoCode returns the generated code in the send response.
	// Only honored outside production; see main.
	DebugEchoCode bool

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		OTPTTL:          getEnvDur("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts:  getEnvInt("OTP_MAX_ATTEMPTS", 5),
		SweepInterval:   getEnvDur("OTP_SWEEP_INTERVAL", 30*time.Minute),
		DeliveryTimeout: getEnvDur("DELIVERY_TIMEOUT", 15*time.Second),

		DeliveryChannel: getEnv("DELIVERY_CHANNEL", "smtp"),
		DebugEchoCode:   getEnv("DEBUG_ECHO_CODE", "") == "true",

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
