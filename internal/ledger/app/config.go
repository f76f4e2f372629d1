package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
)

// Config is read from LEDGER_* environment variables. Process-level settings
// (ENV, LOG_*, PORT, ...) keep the names the rest of the fleet uses.
type Config struct {
	Env                  string        `envconfig:"ENV" default:"dev"`
	LogLevel             string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat            string        `envconfig:"LOG_FORMAT" default:"json"`
	Port                 int           `envconfig:"PORT" default:"8080"`
	ShutdownGracePeriod  time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`
	HousekeepingInterval time.Duration `envconfig:"HOUSEKEEPING_INTERVAL" default:"1h"`

	PublicBaseURL string `envconfig:"LEDGER_PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// Storage
	DBDriver string `envconfig:"LEDGER_DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"LEDGER_DB_DSN" default:"ledger.db"`

	// Identity provider. HS256 uses JWTSecret, EdDSA/RS256 fetch JWKSURL.
	JWTAlgorithm string        `envconfig:"LEDGER_JWT_ALGORITHM" default:"EdDSA"`
	JWTSecret    string        `envconfig:"LEDGER_JWT_SECRET"`
	JWKSURL      string        `envconfig:"LEDGER_JWKS_URL"`
	JWKSRefresh  time.Duration `envconfig:"LEDGER_JWKS_REFRESH" default:"15m"`
	JWTIssuer    string        `envconfig:"LEDGER_JWT_ISSUER"`
	JWTAudience  []string      `envconfig:"LEDGER_JWT_AUDIENCE"`
	JWTLeeway    time.Duration `envconfig:"LEDGER_JWT_LEEWAY" default:"30s"`

	// Ledger policy
	InviteTTL         time.Duration `envconfig:"LEDGER_INVITE_TTL" default:"168h"`
	TeamBaseSeats     int           `envconfig:"LEDGER_TEAM_BASE_SEATS" default:"3"`
	SignupCredits     int64         `envconfig:"LEDGER_SIGNUP_CREDITS" default:"1"`
	SignatureMinBytes int           `envconfig:"LEDGER_SIGNATURE_MIN_BYTES" default:"1000"`
	PackCredits       int64         `envconfig:"LEDGER_PACK_CREDITS" default:"10"`
	PackTTL           time.Duration `envconfig:"LEDGER_PACK_TTL" default:"2160h"`
	LongPackCredits   int64         `envconfig:"LEDGER_LONG_PACK_CREDITS" default:"25"`
	LongPackTTL       time.Duration `envconfig:"LEDGER_LONG_PACK_TTL" default:"8760h"`
	ProCredits        int64         `envconfig:"LEDGER_PRO_CREDITS" default:"30"`
	CrewCredits       int64         `envconfig:"LEDGER_CREW_CREDITS" default:"100"`

	// Payments
	StripeSecretKey     string `envconfig:"LEDGER_STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"LEDGER_STRIPE_WEBHOOK_SECRET"`
	PricePack           string `envconfig:"LEDGER_PRICE_PACK"`
	PriceLongPack       string `envconfig:"LEDGER_PRICE_LONG_PACK"`
	PricePro            string `envconfig:"LEDGER_PRICE_PRO"`
	PriceCrew           string `envconfig:"LEDGER_PRICE_CREW"`
	PriceSeat           string `envconfig:"LEDGER_PRICE_SEAT"`

	// Notifications: "log" or "pubsub"
	Notifier      string `envconfig:"LEDGER_NOTIFIER" default:"log"`
	PubSubProject string `envconfig:"LEDGER_PUBSUB_PROJECT"`
	PubSubTopic   string `envconfig:"LEDGER_PUBSUB_TOPIC" default:"ledger-notifications"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations that would only fail later at startup.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported LEDGER_DB_DRIVER %q", c.DBDriver)
	}

	switch c.JWTAlgorithm {
	case "HS256":
		if c.JWTSecret == "" {
			return errors.New("LEDGER_JWT_SECRET is required for HS256")
		}
	case "EdDSA", "RS256":
		if c.JWKSURL == "" {
			return fmt.Errorf("LEDGER_JWKS_URL is required for %s", c.JWTAlgorithm)
		}
		if c.JWKSRefresh <= 0 {
			return errors.New("LEDGER_JWKS_REFRESH must be positive")
		}
	default:
		return fmt.Errorf("unsupported LEDGER_JWT_ALGORITHM %q", c.JWTAlgorithm)
	}

	switch c.Notifier {
	case "log":
	case "pubsub":
		if c.PubSubProject == "" {
			return errors.New("LEDGER_PUBSUB_PROJECT is required for the pubsub notifier")
		}
	default:
		return fmt.Errorf("unsupported LEDGER_NOTIFIER %q", c.Notifier)
	}

	if c.StripeSecretKey == "" {
		return errors.New("LEDGER_STRIPE_SECRET_KEY is required")
	}
	if c.TeamBaseSeats < 1 {
		return errors.New("LEDGER_TEAM_BASE_SEATS must be at least 1")
	}
	if c.SignupCredits < 0 {
		return errors.New("LEDGER_SIGNUP_CREDITS must not be negative")
	}
	return nil
}

// Catalog builds the checkout offers. Plans without a configured price are
// left out, so checkout for them fails with invalid input.
func (c Config) Catalog() service.Catalog {
	offers := map[payments.Plan]service.Offer{
		payments.PlanPack:     {PriceID: c.PricePack, Credits: c.PackCredits, TTL: c.PackTTL},
		payments.PlanLongPack: {PriceID: c.PriceLongPack, Credits: c.LongPackCredits, TTL: c.LongPackTTL},
		payments.PlanPro:      {PriceID: c.PricePro, Credits: c.ProCredits},
		payments.PlanCrew:     {PriceID: c.PriceCrew, Credits: c.CrewCredits},
		payments.PlanSeats:    {PriceID: c.PriceSeat},
	}

	catalog := service.Catalog{}
	for plan, offer := range offers {
		if offer.PriceID != "" {
			catalog[plan] = offer
		}
	}
	return catalog
}
