package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/barforge/engine/pkg/clock"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/engine"
	"github.com/barforge/engine/pkg/eventsink"
	"github.com/barforge/engine/pkg/execution"
	"github.com/barforge/engine/pkg/strategies"
)

// Job is a single backtest run specification.
type Job struct {
	JobID           string
	StrategyName    string
	StrategyVersion int
	Symbols         []domain.SymbolID
	StartDate       time.Time
	EndDate         time.Time
	Parameters      map[string]any
	RequestedAt     time.Time
}

// Result is the outcome of a backtest run.
type Result struct {
	JobID              string
	Success            bool
	Error              string
	InitialBalance     float64
	FinalBalance       float64
	TotalTrades        int
	WinningTrades      int
	LosingTrades       int
	ProfitFactor       float64
	MaxDrawdownPercent float64
	WinRate            float64
	CompletedAt        time.Time
}

// Orchestrator constructs a fresh clock, executor, ledger, and engine per run
// and drives them serially to completion. Each run owns its own instances
// end to end, so concurrent runs never share mutable state.
type Orchestrator struct {
	registry *strategies.Registry
	catalog  HistoricalCandleCatalog
	settings execution.BacktestSettings
	pips     *domain.PipTable
}

// New constructs an orchestrator. registry resolves strategy names; catalog
// supplies historical bars; settings configures the simulated executor.
func New(registry *strategies.Registry, catalog HistoricalCandleCatalog, settings execution.BacktestSettings, pips *domain.PipTable) *Orchestrator {
	return &Orchestrator{registry: registry, catalog: catalog, settings: settings, pips: pips}
}

// Run executes job to completion or to cancellation, following a fixed
// six-step procedure: resolve the strategy, construct fresh collaborators,
// fetch and merge bars, replay them bar by bar, and reduce the result.
func (o *Orchestrator) Run(ctx context.Context, job Job) Result {
	unsuccessful := func(errMsg string) Result {
		return Result{
			JobID:       job.JobID,
			Success:     false,
			Error:       errMsg,
			CompletedAt: time.Now().UTC(),
		}
	}

	// Step 1: resolve strategy.
	def := domain.StrategyDefinition{Name: job.StrategyName, Version: job.StrategyVersion, Symbols: job.Symbols}
	strategy, ok := o.registry.CreateFromDefinition(def)
	if !ok {
		return unsuccessful(fmt.Sprintf("Unknown strategy: %s", job.StrategyName))
	}

	// Step 2: construct a fresh clock, executor, ledger, and engine. The
	// clock starts one second before the job's nominal start so the first
	// bar (which may land exactly on job.StartDate) still advances it.
	simClock, clockCtl := clock.NewSimClock(job.StartDate.Add(-time.Second))
	ledger := NewLedger(domain.NewMoney(o.settings.InitialBalance, o.settings.AccountCurrency))
	executor := execution.NewSimulatedExecutor(simClock, o.settings, eventsink.NullSink{})
	tradingEngine := engine.New(executor, simClock, eventsink.NullSink{}, o.pips, ledger)
	tradingEngine.RegisterStrategy(strategy)

	// Step 3 & 4: fetch and merge bars chronologically, stable by symbol id.
	bars, err := o.loadAndMergeBars(ctx, job, strategy.MainTimeframe())
	if err != nil {
		return unsuccessful(err.Error())
	}

	// Step 5: replay, advancing the clock and checking cancellation between bars.
	accountedPositions := make(map[string]bool)
	for _, b := range bars {
		if err := ctx.Err(); err != nil {
			return unsuccessful("Backtest cancelled")
		}
		// Bars of different symbols can share a close time; the clock only
		// moves when the timestamp changes.
		if barTime := time.Unix(b.Timestamp, 0).UTC(); !barTime.Equal(simClock.Now()) {
			if err := clockCtl.AdvanceTo(barTime); err != nil {
				return unsuccessful(err.Error())
			}
		}
		executor.ProcessBar(ctx, b)
		tradingEngine.OnBarClosed(ctx, b)
		o.applyNewlyClosedPnL(executor, ledger, accountedPositions)
	}

	// Step 6: reduce trades into metrics.
	metrics := ReduceMetrics(executor.Trades(), o.settings.InitialBalance)
	return Result{
		JobID:              job.JobID,
		Success:            true,
		InitialBalance:     metrics.InitialBalance,
		FinalBalance:       metrics.FinalBalance,
		TotalTrades:        metrics.TotalTrades,
		WinningTrades:      metrics.WinningTrades,
		LosingTrades:       metrics.LosingTrades,
		ProfitFactor:       metrics.ProfitFactor,
		MaxDrawdownPercent: metrics.MaxDrawdownPercent,
		WinRate:            metrics.WinRate,
		CompletedAt:        time.Now().UTC(),
	}
}

// applyNewlyClosedPnL credits the ledger with the P&L of any position that
// closed on the bar just processed, keeping account_balance current for
// risk-percent sizing decisions on later bars.
func (o *Orchestrator) applyNewlyClosedPnL(executor *execution.SimulatedExecutor, ledger *Ledger, accounted map[string]bool) {
	trades := executor.Trades()
	byOrder := make(map[string][]domain.Trade, len(trades))
	for _, t := range trades {
		byOrder[t.OrderID] = append(byOrder[t.OrderID], t)
	}
	for _, pos := range executor.ClosedPositions() {
		if accounted[pos.PositionID] {
			continue
		}
		pair := byOrder[pos.PositionID]
		if len(pair) < 2 {
			continue
		}
		accounted[pos.PositionID] = true
		pnl := positionPnL(pair[0], pair[1])
		_ = ledger.ApplyPnL(domain.NewMoney(pnl, o.settings.AccountCurrency))
	}
}

// hashVerifiedCatalog is implemented by catalogs that can confirm their
// backing data hasn't drifted since registration, e.g. CSVCandleCatalog.
// loadAndMergeBars verifies before every run when the catalog supports it.
type hashVerifiedCatalog interface {
	VerifyHash(symbol domain.SymbolID) error
}

func (o *Orchestrator) loadAndMergeBars(ctx context.Context, job Job, tf domain.Timeframe) ([]domain.Bar, error) {
	var all []domain.Bar
	verifier, verifiable := o.catalog.(hashVerifiedCatalog)
	for _, symbol := range job.Symbols {
		if verifiable {
			if err := verifier.VerifyHash(symbol); err != nil {
				return nil, fmt.Errorf("verify candle data for symbol %s: %w", symbol, err)
			}
		}
		bars, err := o.catalog.GetHistory(ctx, symbol, tf, job.StartDate, job.EndDate)
		if err != nil {
			return nil, fmt.Errorf("fetch history for symbol %s: %w", symbol, err)
		}
		all = append(all, bars...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp < all[j].Timestamp
		}
		return all[i].SymbolID < all[j].SymbolID
	})
	return all, nil
}
