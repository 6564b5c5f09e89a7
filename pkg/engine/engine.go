// Package engine holds the bar-driven trading engine: the rolling
// multi-timeframe bar cache, strategy dispatch on bar close, and
// signal-to-order translation.
package engine

import (
	"context"
	"fmt"

	"github.com/barforge/engine/pkg/clock"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/eventsink"
	"github.com/barforge/engine/pkg/execution"
	"github.com/barforge/engine/pkg/observability"
	"github.com/barforge/engine/pkg/strategies"
)

// BalanceProvider sources the account_balance field of a SignalContext.
// The backtest orchestrator backs this with a running ledger of closed
// positions; a live deployment backs it with the broker's reported equity.
type BalanceProvider interface {
	AccountBalance() domain.Money
}

// Engine holds one run's bar cache and registered strategies. It is not
// safe for concurrent use — OnBarClosed is driven serially by whichever
// orchestrator owns it.
type Engine struct {
	cache      *cache
	executor   execution.OrderExecutor
	clk        clock.Clock
	sink       eventsink.Sink
	pips       *domain.PipTable
	balance    BalanceProvider
	strategies []strategies.Strategy
}

// New wires the five collaborators the engine needs: an order executor
// (simulated or live), a clock, an event sink, a pip table for converting
// suggested SL/TP offsets to price levels, and a balance provider.
func New(executor execution.OrderExecutor, clk clock.Clock, sink eventsink.Sink, pips *domain.PipTable, balance BalanceProvider) *Engine {
	return &Engine{
		cache:    newCache(),
		executor: executor,
		clk:      clk,
		sink:     sink,
		pips:     pips,
		balance:  balance,
	}
}

// RegisterStrategy appends s to the active strategy list.
func (e *Engine) RegisterStrategy(s strategies.Strategy) {
	e.strategies = append(e.strategies, s)
}

// CachedBarCount is an observability hook used by tests.
func (e *Engine) CachedBarCount(symbol domain.SymbolID, tf domain.Timeframe) int {
	return e.cache.count(symbol, tf)
}

// OnBarClosed is the engine's only ingress point. It updates the cache,
// then evaluates every registered strategy whose main timeframe matches
// bar.Timeframe. Cache updates never fail; context-build failures are
// silent per-strategy skips; order-placement failures become status events
// and never propagate out of this call.
func (e *Engine) OnBarClosed(ctx context.Context, bar domain.Bar) {
	e.cache.append(bar)

	for _, s := range e.strategies {
		if s.MainTimeframe() != bar.Timeframe {
			continue
		}
		sigCtx, ok := e.buildContext(bar, s)
		if !ok {
			continue
		}
		result := s.Evaluate(sigCtx)
		if result.Signal == domain.SignalNone {
			continue
		}
		e.placeFromSignal(ctx, bar, s, result)
	}
}

func (e *Engine) buildContext(bar domain.Bar, s strategies.Strategy) (domain.SignalContext, bool) {
	marketData := make(map[domain.Timeframe][]domain.Bar, len(s.RequiredTimeframes()))
	for tf, count := range s.RequiredTimeframes() {
		bars, ok := e.cache.lastN(bar.SymbolID, tf, count)
		if !ok {
			return domain.SignalContext{}, false
		}
		marketData[tf] = bars
	}
	return domain.SignalContext{
		SymbolID:       bar.SymbolID,
		Symbol:         bar.SymbolID.String(),
		MarketData:     marketData,
		AccountBalance: e.balance.AccountBalance(),
		Timestamp:      e.clk.UnixSeconds(),
	}, true
}

func (e *Engine) placeFromSignal(ctx context.Context, bar domain.Bar, s strategies.Strategy, result domain.SignalResult) {
	side := domain.Buy
	if result.Signal == domain.SignalSell {
		side = domain.Sell
	}

	volume := 0.01
	if result.SuggestedVolume != nil {
		volume = *result.SuggestedVolume
	}

	stopLoss, takeProfit := e.resolveLevels(bar, side, result)

	clientOrderID := fmt.Sprintf("%s-%d", s.Name(), e.clk.UnixSeconds())
	order, err := e.executor.PlaceOrder(ctx, execution.PlaceOrderRequest{
		SymbolID:      bar.SymbolID,
		Side:          side,
		Type:          domain.Market,
		Volume:        domain.NewQuantity(volume),
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
		ClientOrderID: clientOrderID,
	})
	if err != nil {
		observability.LogEvent(ctx, "error", "order_failed", map[string]any{"error": err})
		e.sink.PublishEngineStatus(ctx, fmt.Sprintf("Order failed: %v", err))
		return
	}
	e.sink.PublishOrder(ctx, order)
	e.sink.PublishEngineStatus(ctx, fmt.Sprintf("Order placed: %s %v @ %s", side, volume, bar.SymbolID))
}

// resolveLevels converts a signal's suggested pip offsets into absolute
// price levels, anchored on the closing bar's close as the best available
// estimate of the fill price.
func (e *Engine) resolveLevels(bar domain.Bar, side domain.OrderSide, result domain.SignalResult) (stopLoss, takeProfit *float64) {
	pipSize := e.pips.PipSize(bar.SymbolID)
	refPrice := bar.Close

	direction := 1.0
	if side == domain.Sell {
		direction = -1.0
	}

	if result.SuggestedStopLossPips != nil {
		v := refPrice - direction*(*result.SuggestedStopLossPips)*pipSize
		stopLoss = &v
	}
	if result.SuggestedTakeProfitPips != nil {
		v := refPrice + direction*(*result.SuggestedTakeProfitPips)*pipSize
		takeProfit = &v
	}
	return stopLoss, takeProfit
}
