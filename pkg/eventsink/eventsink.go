// Package eventsink defines the fire-and-forget publishing contract the
// engine core holds to report trades, orders, positions, and status
// messages, without depending on whatever transport a given deployment
// uses to carry them onward.
package eventsink

import (
	"context"

	"github.com/barforge/engine/pkg/domain"
)

// Sink is consumed by the trading engine and the simulated/live executors.
// All methods are fire-and-forget: a sink must not block the caller on a
// downstream failure, and implementations are expected to log and swallow
// their own errors.
type Sink interface {
	PublishTrade(ctx context.Context, trade domain.Trade)
	PublishOrder(ctx context.Context, order domain.Order)
	PublishPosition(ctx context.Context, position domain.Position)
	PublishEngineStatus(ctx context.Context, message string)
}

// NullSink discards everything. Used by the backtest orchestrator, which
// has no downstream subscriber and derives its results purely from the
// executor's closed-position ledger.
type NullSink struct{}

func (NullSink) PublishTrade(context.Context, domain.Trade)       {}
func (NullSink) PublishOrder(context.Context, domain.Order)       {}
func (NullSink) PublishPosition(context.Context, domain.Position) {}
func (NullSink) PublishEngineStatus(context.Context, string)      {}
