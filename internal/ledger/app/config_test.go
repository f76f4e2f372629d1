package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	t.Setenv("LEDGER_JWT_ALGORITHM", "HS256")
	t.Setenv("LEDGER_JWT_SECRET", "secret")
	t.Setenv("LEDGER_STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 168*time.Hour, cfg.InviteTTL)
	require.Equal(t, 3, cfg.TeamBaseSeats)
	require.Equal(t, int64(1), cfg.SignupCredits)
	require.Equal(t, int64(10), cfg.PackCredits)
	require.Equal(t, 90*24*time.Hour, cfg.PackTTL)
	require.Equal(t, int64(25), cfg.LongPackCredits)
	require.Equal(t, 365*24*time.Hour, cfg.LongPackTTL)
	require.Equal(t, int64(30), cfg.ProCredits)
	require.Equal(t, int64(100), cfg.CrewCredits)
	require.Equal(t, 1000, cfg.SignatureMinBytes)
	require.Equal(t, "log", cfg.Notifier)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	env := "LEDGER_JWT_ALGORITHM=HS256\nLEDGER_JWT_SECRET=from-file\nLEDGER_STRIPE_SECRET_KEY=sk\nLEDGER_TEAM_BASE_SEATS=5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	// godotenv writes straight into the process environment.
	t.Cleanup(func() {
		for _, k := range []string{"LEDGER_JWT_ALGORITHM", "LEDGER_JWT_SECRET", "LEDGER_STRIPE_SECRET_KEY", "LEDGER_TEAM_BASE_SEATS"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.JWTSecret)
	require.Equal(t, 5, cfg.TeamBaseSeats)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		DBDriver:        "sqlite",
		JWTAlgorithm:    "EdDSA",
		JWKSURL:         "https://id.test/.well-known/jwks.json",
		JWKSRefresh:     time.Minute,
		Notifier:        "log",
		StripeSecretKey: "sk",
		TeamBaseSeats:   3,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"hs256 without secret", func(c *Config) { c.JWTAlgorithm = "HS256" }},
		{"jwks without url", func(c *Config) { c.JWKSURL = "" }},
		{"zero jwks refresh", func(c *Config) { c.JWKSRefresh = 0 }},
		{"unknown algorithm", func(c *Config) { c.JWTAlgorithm = "none" }},
		{"pubsub without project", func(c *Config) { c.Notifier = "pubsub" }},
		{"unknown notifier", func(c *Config) { c.Notifier = "smtp" }},
		{"missing stripe key", func(c *Config) { c.StripeSecretKey = "" }},
		{"zero base seats", func(c *Config) { c.TeamBaseSeats = 0 }},
		{"negative signup credits", func(c *Config) { c.SignupCredits = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfigCatalogSkipsUnpricedPlans(t *testing.T) {
	t.Parallel()

	cfg := Config{
		PricePack:   "price_pack",
		PackCredits: 10,
		PackTTL:     time.Hour,
		PricePro:    "price_pro",
		ProCredits:  30,
	}
	catalog := cfg.Catalog()

	require.Len(t, catalog, 2)
	require.Equal(t, int64(10), catalog[payments.PlanPack].Credits)
	require.Equal(t, time.Hour, catalog[payments.PlanPack].TTL)
	require.Zero(t, catalog[payments.PlanPro].TTL)
	_, ok := catalog[payments.PlanSeats]
	require.False(t, ok)
}
