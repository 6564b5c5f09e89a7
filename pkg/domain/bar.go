package domain

// Bar is an OHLCV aggregation over a fixed Timeframe, timestamped by its
// close time (epoch seconds). low ≤ open,close ≤ high is a producer-side
// invariant; the engine treats violations as data errors but does not
// police them.
type Bar struct {
	SymbolID  SymbolID  `json:"symbol_id"`
	Timeframe Timeframe `json:"timeframe"`
	Timestamp int64     `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Tick is a bid/ask quote. Not used by the bar-only simulated execution;
// no package in this module produces or consumes it.
type Tick struct {
	Timestamp int64    `json:"timestamp"`
	SymbolID  SymbolID `json:"symbol_id"`
	Bid       float64  `json:"bid"`
	Ask       float64  `json:"ask"`
}
