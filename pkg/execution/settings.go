package execution

// BacktestSettings configures the simulated order execution engine, in
// price units, not pips. DefaultBacktestSettings returns the seed-scenario
// defaults.
type BacktestSettings struct {
	// SpreadPoints is applied to the buy-entry price and to derive bid
	// from ask within a bar's range.
	SpreadPoints float64
	// SlippagePoints is applied only on stop-loss exits, adverse to the
	// position.
	SlippagePoints float64
	// CommissionPerLot is charged on both entry and exit, proportional to
	// lot volume, in account currency.
	CommissionPerLot float64
	// InitialBalance is informational here; real accounting happens in
	// the orchestrator's ledger.
	InitialBalance float64
	// AccountCurrency is the currency commission Money is denominated in.
	AccountCurrency string
}

// DefaultBacktestSettings returns the baseline seed-scenario defaults:
// spread 0.0004, slippage 0.0001, commission 3/lot, initial balance 10000.
func DefaultBacktestSettings() BacktestSettings {
	return BacktestSettings{
		SpreadPoints:     0.0004,
		SlippagePoints:   0.0001,
		CommissionPerLot: 3.0,
		InitialBalance:   10000,
		AccountCurrency:  "USD",
	}
}
