package eventsink

import (
	"context"

	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/observability"
)

// LogSink publishes every event as a structured log line. Used by the live
// and paper-trading services, which otherwise have no message bus wired in
// this module.
type LogSink struct{}

func (LogSink) PublishTrade(ctx context.Context, trade domain.Trade) {
	observability.LogEvent(ctx, "info", "trade", map[string]any{
		"trade_id":  trade.TradeID,
		"order_id":  trade.OrderID,
		"symbol_id": trade.SymbolID,
		"side":      trade.Side,
		"volume":    trade.Volume.Float64(),
		"price":     trade.Price,
	})
}

func (LogSink) PublishOrder(ctx context.Context, order domain.Order) {
	observability.LogEvent(ctx, "info", "order", map[string]any{
		"order_id":  order.OrderID,
		"symbol_id": order.SymbolID,
		"side":      order.Side,
		"status":    order.Status,
	})
}

func (LogSink) PublishPosition(ctx context.Context, position domain.Position) {
	observability.LogEvent(ctx, "info", "position", map[string]any{
		"position_id": position.PositionID,
		"symbol_id":   position.SymbolID,
		"side":        position.Side,
		"entry_price": position.EntryPrice,
	})
}

func (LogSink) PublishEngineStatus(ctx context.Context, message string) {
	observability.LogEvent(ctx, "info", "engine_status", map[string]any{
		"message": message,
	})
}
