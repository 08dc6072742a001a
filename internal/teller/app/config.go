package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/service"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

type Config struct {
	Store         string // Optional: credential store driver, sqlite or mongo (default: sqlite)
	DatabaseFile  string // Optional: path to SQLite database file (default: ./teller.db)
	MongoURI      string // Required for the mongo store
	MongoDatabase string // Optional: mongo database name (default: teller)
	RedisAddr     string // Optional: enables login, MFA and reset throttling and logout revocation
	RabbitMQURI   string // Optional: publish notifications to RabbitMQ instead of the log

	PepperFile     string // Optional: path to password pepper (default: ./pepper)
	MasterKeyFile  string // Optional: path to the key sealing MFA secrets and SSNs (default: ./master.key)
	SessionKeyFile string // Optional: path to the Ed25519 session signing key (default: ./session.pem)

	Issuer       string        // Optional: iss claim of session tokens (default: teller)
	SessionTTL   time.Duration // Optional: session lifetime (default: 1h)
	CookieSecure bool          // Optional: mark the session cookie Secure (default: true outside dev)

	MFAPolicy           service.MFAPolicy // Optional: optional or enforce (default: optional)
	EnableOnFirstVerify bool              // Optional: first correct TOTP code enables MFA (default: true)
	RequireApproval     bool              // Optional: new users wait for operator approval (default: false)
	AdminToken          string            // Optional: X-Admin-Token for operator endpoints; empty disables them
	AuthAttemptLimit    int               // Optional: logins per identifier and MFA codes per user each 15 minutes (default: 10)
	TrustProxyHeaders   bool              // Optional: take the client IP from X-Forwarded-For/X-Real-IP (default: false)

	ResetRevealUnknown bool          // Optional: forgot-password reports unknown emails (default: false)
	ResetTTL           time.Duration // Optional: reset link lifetime (default: 1h)
	ClientURL          string        // Optional: base URL of reset links (default: http://localhost:3000)

	AccountNumberPrefix   string // Optional (default: 1998)
	AccountNumberDigits   int    // Optional (default: 7)
	AccountNumberAttempts int    // Optional (default: 10)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	return Config{
		Store:         strings.ToLower(getEnvOrDefault("TELLER_STORE", StoreSQLite)),
		DatabaseFile:  getEnvOrDefault("TELLER_DATABASE_FILE", "teller.db"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "teller"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RabbitMQURI:   os.Getenv("RABBITMQ_URI"),

		PepperFile:     getEnvOrDefault("TELLER_PEPPER_FILE", "pepper"),
		MasterKeyFile:  getEnvOrDefault("TELLER_MASTER_KEY_FILE", "master.key"),
		SessionKeyFile: getEnvOrDefault("TELLER_SESSION_KEY_FILE", "session.pem"),

		Issuer:       getEnvOrDefault("TELLER_ISSUER", "teller"),
		SessionTTL:   getEnvDurationOrDefault("TELLER_SESSION_TTL", time.Hour),
		CookieSecure: getEnvBoolOrDefault("TELLER_COOKIE_SECURE", env != "dev"),

		MFAPolicy:           service.MFAPolicy(strings.ToLower(getEnvOrDefault("TELLER_MFA_POLICY", string(service.MFAPolicyOptional)))),
		EnableOnFirstVerify: getEnvBoolOrDefault("TELLER_MFA_ENABLE_ON_FIRST_VERIFY", true),
		RequireApproval:     getEnvBoolOrDefault("TELLER_REQUIRE_APPROVAL", false),
		AdminToken:          os.Getenv("ADMIN_TOKEN"),
		AuthAttemptLimit:    getEnvIntOrDefault("TELLER_AUTH_ATTEMPT_LIMIT", 10),
		TrustProxyHeaders:   getEnvBoolOrDefault("TELLER_TRUST_PROXY_HEADERS", false),

		ResetRevealUnknown: getEnvBoolOrDefault("TELLER_RESET_REVEAL_UNKNOWN", false),
		ResetTTL:           getEnvDurationOrDefault("TELLER_RESET_TTL", service.DefaultResetTTL),
		ClientURL:          strings.TrimSuffix(getEnvOrDefault("CLIENT_URL", "http://localhost:3000"), "/"),

		AccountNumberPrefix:   getEnvOrDefault("ACCOUNT_NUMBER_PREFIX", service.DefaultAccountNumberPrefix),
		AccountNumberDigits:   getEnvIntOrDefault("ACCOUNT_NUMBER_DIGITS", service.DefaultAccountNumberDigits),
		AccountNumberAttempts: getEnvIntOrDefault("ACCOUNT_NUMBER_ATTEMPTS", service.DefaultAccountNumberAttempts),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when TELLER_STORE=%s", StoreMongo)
		}
	default:
		return fmt.Errorf("unknown TELLER_STORE %q", c.Store)
	}

	if !c.MFAPolicy.Valid() {
		return fmt.Errorf("unknown TELLER_MFA_POLICY %q", c.MFAPolicy)
	}
	if c.AccountNumberDigits < 1 || c.AccountNumberDigits > 18 {
		return fmt.Errorf("ACCOUNT_NUMBER_DIGITS must be between 1 and 18")
	}
	if c.AccountNumberAttempts < 1 {
		return fmt.Errorf("ACCOUNT_NUMBER_ATTEMPTS must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
