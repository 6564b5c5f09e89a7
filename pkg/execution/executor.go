package execution

import (
	"context"

	"github.com/barforge/engine/pkg/domain"
)

// OrderExecutor is the capability the trading engine holds to place and
// manage orders, whether backed by the deterministic simulator or a live
// broker adapter.
type OrderExecutor interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error)
	ModifyOrder(ctx context.Context, orderID string, stopLoss, takeProfit *float64) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	ClosePosition(ctx context.Context, positionID string) error
	GetPositions(ctx context.Context) ([]domain.Position, error)
}

// PlaceOrderRequest bundles an order placement's parameters. Price is only
// meaningful for Limit/Stop types, which the simulator rejects.
type PlaceOrderRequest struct {
	SymbolID      domain.SymbolID
	Side          domain.OrderSide
	Type          domain.OrderType
	Volume        domain.Quantity
	Price         *float64
	StopLoss      *float64
	TakeProfit    *float64
	ClientOrderID string
}
