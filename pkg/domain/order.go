package domain

// OrderSide is the direction of an order or position.
type OrderSide string

const (
	Buy  OrderSide = "Buy"
	Sell OrderSide = "Sell"
)

// Opposite returns the other side, used when synthesizing a closing trade.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType distinguishes how an order is meant to fill. Market is the only
// type the simulated executor fully implements; Limit and Stop share the
// wire shape but are rejected at the executor boundary.
type OrderType string

const (
	Market OrderType = "Market"
	Limit  OrderType = "Limit"
	Stop   OrderType = "Stop"
)

// OrderStatus tracks an order through its lifecycle: Pending (on place) ->
// Filled (at next bar open) or Cancelled. Rejected is reserved for
// adapter-side validation failures, not produced by the simulated executor.
type OrderStatus string

const (
	StatusPending         OrderStatus = "Pending"
	StatusFilled          OrderStatus = "Filled"
	StatusPartiallyFilled OrderStatus = "PartiallyFilled"
	StatusCancelled       OrderStatus = "Cancelled"
	StatusRejected        OrderStatus = "Rejected"
)

// Order is the caller-visible result of placing an order request.
type Order struct {
	OrderID       string      `json:"order_id"`
	SymbolID      SymbolID    `json:"symbol_id"`
	Side          OrderSide   `json:"side"`
	Type          OrderType   `json:"type"`
	Volume        Quantity    `json:"volume"`
	Price         *float64    `json:"price,omitempty"`
	StopLoss      *float64    `json:"stop_loss,omitempty"`
	TakeProfit    *float64    `json:"take_profit,omitempty"`
	Status        OrderStatus `json:"status"`
	CreatedAt     int64       `json:"created_at"`
	ClientOrderID string      `json:"client_order_id,omitempty"`
}

// PendingOrder is the executor's internal bookkeeping record for an order
// that has not yet filled. It carries the same fields as Order plus the
// symbol needed to match it against an incoming bar.
type PendingOrder struct {
	OrderID       string
	SymbolID      SymbolID
	Side          OrderSide
	Type          OrderType
	Volume        Quantity
	StopLoss      *float64
	TakeProfit    *float64
	CreatedAt     int64
	ClientOrderID string
}
