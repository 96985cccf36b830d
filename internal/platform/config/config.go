package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// Ledger behavior
	SigningKey      []byte
	MaxTxnAmount    decimal.Decimal
	AccountLockWait time.Duration

	// Intake surface
	RateLimit string // ulule/limiter format, e.g. "100-M"
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("LEDGER_SIGNING_KEY", "")
	viper.SetDefault("MAX_TXN_AMOUNT", "1000000")
	viper.SetDefault("ACCOUNT_LOCK_WAIT", "3s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	signingKey := viper.GetString("LEDGER_SIGNING_KEY")
	if signingKey == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("LEDGER_SIGNING_KEY must be set in production")
		}
		signingKey = "dev-only-ledger-signing-key"
		log.Println("Warning: LEDGER_SIGNING_KEY not set. Using insecure development key.")
	}
	cfg.SigningKey = []byte(signingKey)

	maxTxnStr := viper.GetString("MAX_TXN_AMOUNT")
	maxTxn, err := decimal.NewFromString(maxTxnStr)
	if err != nil || !maxTxn.IsPositive() {
		return nil, fmt.Errorf("invalid MAX_TXN_AMOUNT %q: must be a positive decimal", maxTxnStr)
	}
	cfg.MaxTxnAmount = maxTxn

	lockWaitStr := viper.GetString("ACCOUNT_LOCK_WAIT")
	lockWait, err := time.ParseDuration(lockWaitStr)
	if err != nil || lockWait <= 0 {
		lockWait = 3 * time.Second
		log.Printf("Warning: Invalid value for ACCOUNT_LOCK_WAIT (%q). Defaulting to %s.\n", lockWaitStr, lockWait)
	}
	cfg.AccountLockWait = lockWait

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
