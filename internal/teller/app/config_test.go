package app

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"TELLER_STORE", "TELLER_MFA_POLICY", "TELLER_SESSION_TTL", "TELLER_RESET_TTL",
		"TELLER_COOKIE_SECURE", "ENV", "PORT", "CLIENT_URL", "ADMIN_TOKEN",
		"TELLER_AUTH_ATTEMPT_LIMIT", "TELLER_TRUST_PROXY_HEADERS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	require.Equal(t, StoreSQLite, cfg.Store)
	require.Equal(t, service.MFAPolicyOptional, cfg.MFAPolicy)
	require.True(t, cfg.EnableOnFirstVerify)
	require.False(t, cfg.RequireApproval)
	require.False(t, cfg.ResetRevealUnknown)
	require.Equal(t, time.Hour, cfg.SessionTTL)
	require.Equal(t, time.Hour, cfg.ResetTTL)
	require.Equal(t, "1998", cfg.AccountNumberPrefix)
	require.Equal(t, 7, cfg.AccountNumberDigits)
	require.Equal(t, 10, cfg.AccountNumberAttempts)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.False(t, cfg.CookieSecure, "dev serves plain http")
	require.Empty(t, cfg.AdminToken)
	require.Equal(t, 10, cfg.AuthAttemptLimit)
	require.False(t, cfg.TrustProxyHeaders, "proxy headers are spoofable without a proxy")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TELLER_STORE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("TELLER_MFA_POLICY", "enforce")
	t.Setenv("TELLER_MFA_ENABLE_ON_FIRST_VERIFY", "false")
	t.Setenv("TELLER_REQUIRE_APPROVAL", "true")
	t.Setenv("TELLER_RESET_TTL", "30")
	t.Setenv("TELLER_SESSION_TTL", "15m")
	t.Setenv("CLIENT_URL", "https://bank.example/")
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "not-a-port")

	cfg := LoadConfig()

	require.Equal(t, StoreMongo, cfg.Store)
	require.Equal(t, service.MFAPolicyEnforce, cfg.MFAPolicy)
	require.False(t, cfg.EnableOnFirstVerify)
	require.True(t, cfg.RequireApproval)
	require.Equal(t, 30*time.Minute, cfg.ResetTTL, "bare integers are minutes")
	require.Equal(t, 15*time.Minute, cfg.SessionTTL)
	require.Equal(t, "https://bank.example", cfg.ClientURL)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, 8080, cfg.Port, "unparsable values fall back to the default")
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:                 StoreSQLite,
			MFAPolicy:             service.MFAPolicyOptional,
			AccountNumberDigits:   7,
			AccountNumberAttempts: 10,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Store = StoreMongo }},
		{"unknown policy", func(c *Config) { c.MFAPolicy = "sometimes" }},
		{"zero digits", func(c *Config) { c.AccountNumberDigits = 0 }},
		{"too many digits", func(c *Config) { c.AccountNumberDigits = 19 }},
		{"zero attempts", func(c *Config) { c.AccountNumberAttempts = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
