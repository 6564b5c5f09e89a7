// Command backtest runs a single strategy over a CSV candle file and prints
// the resulting trading metrics as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barforge/engine/internal/config"
	"github.com/barforge/engine/pkg/backtest"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/observability"
	"github.com/barforge/engine/pkg/strategies"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
)

func main() {
	strategyName := flag.String("strategy", "", "strategy name to resolve from the config provider")
	symbolFlag := flag.String("symbol", "", "numeric symbol id")
	csvPath := flag.String("csv", "", "path to an OHLCV CSV file for the symbol")
	startFlag := flag.String("start", "", "backtest start date, RFC3339 or 2006-01-02")
	endFlag := flag.String("end", "", "backtest end date, RFC3339 or 2006-01-02")
	flag.Parse()

	if *strategyName == "" || *symbolFlag == "" || *csvPath == "" {
		log.Fatal("backtest: -strategy, -symbol, and -csv are required")
	}

	start, err := parseDate(*startFlag)
	if err != nil {
		log.Fatalf("backtest: invalid -start: %v", err)
	}
	end, err := parseDate(*endFlag)
	if err != nil {
		log.Fatalf("backtest: invalid -end: %v", err)
	}

	var symbolID uint64
	if _, err := fmt.Sscanf(*symbolFlag, "%d", &symbolID); err != nil {
		log.Fatalf("backtest: invalid -symbol %q: %v", *symbolFlag, err)
	}
	symbol := domain.SymbolID(symbolID)

	cfg := config.Load()
	log.Printf("starting barforge backtest v%s (built: %s)", version, buildTime)
	log.Printf("database: %s", config.MaskedDatabaseURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := observability.NewRunID()
	ctx = observability.WithRunInfo(ctx, observability.RunInfo{RunID: runID, Symbol: *symbolFlag})

	registry := strategies.NewDefaultRegistry()
	strategyVersion := 0
	if provider := resolveConfigProvider(ctx, cfg); provider != nil {
		if def, err := provider.LoadByName(*strategyName); err != nil {
			log.Printf("backtest: config provider lookup failed, using the built-in strategy as-is: %v", err)
		} else if def != nil {
			strategyVersion = def.Version
			log.Printf("backtest: resolved %q to config provider version %d", *strategyName, strategyVersion)
		}
	}

	catalog := backtest.NewCSVCandleCatalog()
	if err := catalog.RegisterFile(symbol, *csvPath); err != nil {
		log.Fatalf("backtest: register candle file: %v", err)
	}

	pips := domain.NewPipTable(cfg.DefaultPipSize)
	orch := backtest.New(registry, catalog, cfg.Backtest, pips)

	result := orch.Run(ctx, backtest.Job{
		JobID:           runID,
		StrategyName:    *strategyName,
		StrategyVersion: strategyVersion,
		Symbols:         []domain.SymbolID{symbol},
		StartDate:       start,
		EndDate:         end,
		RequestedAt:     time.Now().UTC(),
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("backtest: marshal result: %v", err)
	}
	os.Stdout.Write(out)
	os.Stdout.WriteString("\n")

	if !result.Success {
		os.Exit(1)
	}
}

func resolveConfigProvider(ctx context.Context, cfg config.Config) strategies.ConfigProvider {
	if cfg.DatabaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("backtest: could not connect to database, using built-in strategies only: %v", err)
		return nil
	}
	return strategies.NewPostgresConfigProvider(pool)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
