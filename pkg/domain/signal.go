package domain

// SignalContext is the input to a strategy's evaluate call. MarketData
// holds, for each timeframe the strategy declared in RequiredTimeframes,
// the last N bars in chronological order — built fresh by the engine on
// every bar close, never mutated by the strategy.
type SignalContext struct {
	SymbolID       SymbolID
	Symbol         string
	MarketData     map[Timeframe][]Bar
	AccountBalance Money
	Timestamp      int64
}

// Signal is the direction a strategy emits on evaluation.
type Signal string

const (
	SignalNone Signal = "None"
	SignalBuy  Signal = "Buy"
	SignalSell Signal = "Sell"
)

// SignalResult is a strategy's evaluation output. The suggested fields are
// advisory; the engine and risk policies decide how to turn them into an
// order (pkg/engine, pkg/strategies).
type SignalResult struct {
	Signal                  Signal
	SuggestedStopLossPips   *float64
	SuggestedTakeProfitPips *float64
	SuggestedVolume         *float64
	Reason                  string
}
