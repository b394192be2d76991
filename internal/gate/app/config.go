package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harborchat/harbor/internal/gate/session"
)

type Config struct {
	IdPURL        string // Required: base URL of the Casdoor-compatible provider
	ClientID      string // Required: OAuth2 client id registered at the provider
	ClientSecret  string // Required: OAuth2 client secret
	Organization  string // Required: provider organization owning the user accounts
	Application   string // Required: provider application name
	ApplicationID string // Optional: application id for send-code/captcha calls
	AdminUser     string // Optional: built-in admin account for registration
	AdminPassword string // Optional: built-in admin password

	SessionSecret string        // Required: secret the session signing key derives from
	SessionTTL    time.Duration // Optional: session lifetime (default: 168h)
	PublicOrigin  string        // Required: scheme+host the browser reaches this service at

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./gate.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 3005)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		IdPURL:        os.Getenv("GATE_IDP_URL"),
		ClientID:      os.Getenv("GATE_CLIENT_ID"),
		ClientSecret:  os.Getenv("GATE_CLIENT_SECRET"),
		Organization:  os.Getenv("GATE_ORGANIZATION"),
		Application:   os.Getenv("GATE_APPLICATION"),
		ApplicationID: os.Getenv("GATE_APPLICATION_ID"),
		AdminUser:     getEnvOrDefault("GATE_ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("GATE_ADMIN_PASSWORD"),

		SessionSecret: os.Getenv("GATE_SESSION_SECRET"),
		SessionTTL:    getEnvDurationOrDefault("GATE_SESSION_TTL", session.DefaultTTL),
		PublicOrigin:  os.Getenv("GATE_PUBLIC_ORIGIN"),

		DatabaseFile:        getEnvOrDefault("GATE_DATABASE_FILE", "gate.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 3005),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports the first missing required setting. The process
// refuses to start misconfigured rather than failing on first login.
func (cfg Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GATE_IDP_URL", cfg.IdPURL},
		{"GATE_CLIENT_ID", cfg.ClientID},
		{"GATE_CLIENT_SECRET", cfg.ClientSecret},
		{"GATE_ORGANIZATION", cfg.Organization},
		{"GATE_APPLICATION", cfg.Application},
		{"GATE_SESSION_SECRET", cfg.SessionSecret},
		{"GATE_PUBLIC_ORIGIN", cfg.PublicOrigin},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required configuration: %s", r.name)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are taken as hours, matching how the TTL is
	// usually written in deployment manifests.
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}

	return defaultValue
}
