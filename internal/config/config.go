package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Session slot resolution
	SessionDuration time.Duration
	EventTimeZone   string

	// Google Calendar
	GoogleCalendarID  string
	GoogleClientEmail string
	GooglePrivateKey  string

	// Email delivery. Provider is one of "smtp", "sendgrid", "ses", "stub".
	EmailProvider string
	EmailFrom     string
	EmailFromName string
	AdminEmail    string

	SMTPHost   string
	SMTPPort   int
	SMTPSecure bool
	SMTPUser   string
	SMTPPass   string

	SendGridAPIKey string

	AWSRegion string

	// Duplicate-submission guard
	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	// Outbound call budget for calendar and mail operations
	ExternalCallTimeout time.Duration

	// Per-IP submission rate limit. Zero disables limiting.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		SessionDuration: getEnvAsDuration("SESSION_DURATION", 30*time.Minute),
		EventTimeZone:   getEnv("EVENT_TIMEZONE", "Europe/London"),

		GoogleCalendarID:  getEnv("GOOGLE_CALENDAR_ID", ""),
		GoogleClientEmail: getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:  getEnv("GOOGLE_PRIVATE_KEY", ""),

		EmailProvider: strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "smtp"))),
		EmailFrom:     getEnv("EMAIL_FROM", ""),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Scailer Booking"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),

		SMTPHost:   getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:   getEnvAsInt("SMTP_PORT", 587),
		SMTPSecure: getEnvAsBool("SMTP_SECURE", false),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		ExternalCallTimeout: getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", 10*time.Second),

		RateLimitPerSec: getEnvAsFloat("RATE_LIMIT_PER_SEC", 1),
		RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 5),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that required settings are present. In production a
// misconfigured mail or calendar integration must fail at startup rather
// than at the first booking.
func (c *Config) Validate() error {
	var missing []string

	if c.IsProduction() {
		if c.GoogleCalendarID == "" {
			missing = append(missing, "GOOGLE_CALENDAR_ID")
		}
		if c.GoogleClientEmail == "" {
			missing = append(missing, "GOOGLE_CLIENT_EMAIL")
		}
		if c.GooglePrivateKey == "" {
			missing = append(missing, "GOOGLE_PRIVATE_KEY")
		}
		if c.EmailFrom == "" {
			missing = append(missing, "EMAIL_FROM")
		}
		if c.AdminEmail == "" {
			missing = append(missing, "ADMIN_EMAIL")
		}
		if c.EmailProvider == "stub" {
			return fmt.Errorf("config: stub email provider is not allowed in production")
		}
	}

	switch c.EmailProvider {
	case "smtp":
		if c.IsProduction() && (c.SMTPUser == "" || c.SMTPPass == "") {
			missing = append(missing, "SMTP_USER/SMTP_PASS")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			missing = append(missing, "SENDGRID_API_KEY")
		}
	case "ses", "stub":
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}

	if c.SessionDuration <= 0 {
		return fmt.Errorf("config: SESSION_DURATION must be positive, got %s", c.SessionDuration)
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, trimming
// whitespace and dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
