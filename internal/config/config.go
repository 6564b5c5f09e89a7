// Package config loads the engine's ambient configuration from environment
// variables: env vars win over defaults, and secrets are masked before
// they ever reach a log line.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/barforge/engine/pkg/execution"
)

// Config is the engine's full ambient configuration: backtest execution
// settings plus the optional Postgres DSN for a strategies.ConfigProvider.
type Config struct {
	// BacktestSettings configures every SimulatedExecutor the orchestrator
	// constructs.
	Backtest execution.BacktestSettings

	// DatabaseURL is the Postgres DSN for strategies.PostgresConfigProvider.
	// Empty means the caller should fall back to an InMemoryConfigProvider.
	DatabaseURL string

	// DefaultPipSize seeds the domain.PipTable used to translate
	// suggested stop-loss/take-profit pips into price levels.
	DefaultPipSize float64
}

// Load reads BACKTEST_* / EXEC_* / DATABASE_URL environment variables into
// a Config, falling back to the same defaults execution.DefaultBacktestSettings
// uses wherever a variable is unset or unparsable.
func Load() Config {
	defaults := execution.DefaultBacktestSettings()

	cfg := Config{
		Backtest: execution.BacktestSettings{
			SpreadPoints:     parseFloatEnv("EXEC_SPREAD_POINTS", defaults.SpreadPoints),
			SlippagePoints:   parseFloatEnv("EXEC_SLIPPAGE_POINTS", defaults.SlippagePoints),
			CommissionPerLot: parseFloatEnv("EXEC_COMMISSION_PER_LOT", defaults.CommissionPerLot),
			InitialBalance:   parseFloatEnv("BACKTEST_INITIAL_BALANCE", defaults.InitialBalance),
			AccountCurrency:  os.Getenv("BACKTEST_ACCOUNT_CURRENCY"),
		},
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DefaultPipSize: parseFloatEnv("ENGINE_DEFAULT_PIP_SIZE", 0.0001),
	}

	if cfg.Backtest.AccountCurrency == "" {
		cfg.Backtest.AccountCurrency = defaults.AccountCurrency
	}

	if cfg.DatabaseURL == "" {
		log.Println("config: DATABASE_URL not set, strategy definitions must come from an in-memory provider")
	}

	return cfg
}

// MaskedDatabaseURL returns a form of the DSN safe to put in a log line.
func MaskedDatabaseURL(cfg Config) string {
	if cfg.DatabaseURL == "" {
		return "(none)"
	}
	return "postgresql://***:***@<host>/<database>"
}

func parseFloatEnv(key string, defaultValue float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("config: invalid %s value %q, using default %.6f", key, val, defaultValue)
		return defaultValue
	}
	return parsed
}
