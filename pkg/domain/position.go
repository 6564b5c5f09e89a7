package domain

// Position is an open (or, once projected into a closed record, formerly
// open) holding. entry_bar_timestamp is the timestamp of the bar on which
// the position was filled and is the sole input to the T+1 exit rule: SL/TP
// are evaluated only on bars whose timestamp is strictly greater than this
// value.
type Position struct {
	PositionID        string    `json:"position_id"`
	SymbolID          SymbolID  `json:"symbol_id"`
	Side              OrderSide `json:"side"`
	Volume            Quantity  `json:"volume"`
	EntryPrice        float64   `json:"entry_price"`
	StopLoss          *float64  `json:"stop_loss,omitempty"`
	TakeProfit        *float64  `json:"take_profit,omitempty"`
	EntryBarTimestamp int64     `json:"entry_bar_timestamp"`
	OpenedAt          int64     `json:"opened_at"`
	StrategyName      string    `json:"strategy_name,omitempty"`
}
