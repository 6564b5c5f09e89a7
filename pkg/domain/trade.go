package domain

// Trade is an immutable record of a fill or a position close. Closing
// trades carry the opposite side of the position and, by convention, set
// OrderID to the position's id rather than the original entry order's id,
// since the metrics reducer groups entry+exit pairs by OrderID, which
// requires the entry order's id to equal the position id (see pkg/execution).
type Trade struct {
	TradeID    string    `json:"trade_id"`
	OrderID    string    `json:"order_id"`
	SymbolID   SymbolID  `json:"symbol_id"`
	Side       OrderSide `json:"side"`
	Volume     Quantity  `json:"volume"`
	Price      float64   `json:"price"`
	Commission Money     `json:"commission"`
	ExecutedAt int64     `json:"executed_at"`
}
