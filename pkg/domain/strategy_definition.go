package domain

// RiskBlock names a pluggable policy (stop-loss, take-profit, or position
// sizing) by its type tag plus free-form constructor parameters, as stored
// by the external strategy-configuration provider.
type RiskBlock struct {
	TypeTag    string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

// RiskConfig bundles the three pluggable policy blocks a strategy
// definition composes with its signal strategy.
type RiskConfig struct {
	StopLoss       RiskBlock `json:"stop_loss"`
	TakeProfit     RiskBlock `json:"take_profit"`
	PositionSizing RiskBlock `json:"position_sizing"`
}

// StrategyDefinition is a versioned, JSON-parameterized description of a
// strategy instance: its signal strategy, the risk policies it composes
// with, and the symbols/timeframes it runs against. Multiple versions may
// share a name; provider lookups resolve to the latest version.
type StrategyDefinition struct {
	Name               string            `json:"name"`
	Version            int               `json:"version"`
	MainTimeframe      Timeframe         `json:"main_timeframe"`
	RequiredTimeframes map[Timeframe]int `json:"required_timeframes"`
	Parameters         map[string]any    `json:"parameters"`
	Risk               RiskConfig        `json:"risk"`
	Symbols            []SymbolID        `json:"symbols"`
	Enabled            bool              `json:"enabled"`
}
