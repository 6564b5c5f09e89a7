package execution

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/barforge/engine/pkg/clock"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/eventsink"
)

// SimulatedExecutor is the deterministic bar-level broker simulation: T+1
// fills, bid/ask spread, adverse slippage on stops, per-lot commission, and
// the SL/TP state machine on open positions. A single instance is
// exclusive to one run; it holds no shared mutable state across runs.
type SimulatedExecutor struct {
	mu       sync.Mutex
	clock    clock.Clock
	settings BacktestSettings
	sink     eventsink.Sink

	pendingOrders   []domain.PendingOrder
	openPositions   []domain.Position
	closedPositions []domain.Position
	trades          []domain.Trade
}

// NewSimulatedExecutor constructs an executor bound to clk. sink may be
// eventsink.NullSink{} for pure backtests.
func NewSimulatedExecutor(clk clock.Clock, settings BacktestSettings, sink eventsink.Sink) *SimulatedExecutor {
	return &SimulatedExecutor{clock: clk, settings: settings, sink: sink}
}

// PlaceOrder constructs a PendingOrder and returns an Order with
// status=Pending. No fill occurs synchronously.
func (e *SimulatedExecutor) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	if req.Type != domain.Market {
		return domain.Order{}, fmt.Errorf("%w: simulated executor only fills Market orders, got %s", domain.ErrInvalidArgument, req.Type)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	orderID := uuid.NewString()
	now := e.clock.UnixSeconds()

	pending := domain.PendingOrder{
		OrderID:       orderID,
		SymbolID:      req.SymbolID,
		Side:          req.Side,
		Type:          req.Type,
		Volume:        req.Volume,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		CreatedAt:     now,
		ClientOrderID: req.ClientOrderID,
	}
	e.pendingOrders = append(e.pendingOrders, pending)

	order := domain.Order{
		OrderID:       orderID,
		SymbolID:      req.SymbolID,
		Side:          req.Side,
		Type:          req.Type,
		Volume:        req.Volume,
		Price:         req.Price,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		ClientOrderID: req.ClientOrderID,
	}
	return order, nil
}

// ModifyOrder mutates a pending order's stop-loss/take-profit in place.
// Missing (nil) parameters leave existing values untouched. It never
// affects open positions — see ClosePosition's sibling ModifyPosition for
// that.
func (e *SimulatedExecutor) ModifyOrder(ctx context.Context, orderID string, stopLoss, takeProfit *float64) (domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.pendingOrders {
		p := &e.pendingOrders[i]
		if p.OrderID != orderID {
			continue
		}
		if stopLoss != nil {
			p.StopLoss = stopLoss
		}
		if takeProfit != nil {
			p.TakeProfit = takeProfit
		}
		return domain.Order{
			OrderID:       p.OrderID,
			SymbolID:      p.SymbolID,
			Side:          p.Side,
			Type:          p.Type,
			Volume:        p.Volume,
			StopLoss:      p.StopLoss,
			TakeProfit:    p.TakeProfit,
			Status:        domain.StatusPending,
			CreatedAt:     p.CreatedAt,
			ClientOrderID: p.ClientOrderID,
		}, nil
	}
	return domain.Order{}, fmt.Errorf("%w: order %s", ErrNotPending, orderID)
}

// ModifyPosition updates the stop-loss/take-profit of an already-open
// position, distinct from ModifyOrder which only ever touches pending
// orders.
func (e *SimulatedExecutor) ModifyPosition(positionID string, stopLoss, takeProfit *float64) (domain.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.openPositions {
		p := &e.openPositions[i]
		if p.PositionID != positionID {
			continue
		}
		if stopLoss != nil {
			p.StopLoss = stopLoss
		}
		if takeProfit != nil {
			p.TakeProfit = takeProfit
		}
		return *p, nil
	}
	return domain.Position{}, fmt.Errorf("execution: no open position %s", positionID)
}

// CancelOrder removes a pending order. Idempotent on unknown ids.
func (e *SimulatedExecutor) CancelOrder(ctx context.Context, orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, p := range e.pendingOrders {
		if p.OrderID == orderID {
			e.pendingOrders = append(e.pendingOrders[:i], e.pendingOrders[i+1:]...)
			break
		}
	}
	return nil
}

// ClosePosition moves a position from open to closed with no synthetic
// trade record — the engine attributes a flat close to an out-of-band
// decision. Idempotent on unknown ids.
func (e *SimulatedExecutor) ClosePosition(ctx context.Context, positionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, p := range e.openPositions {
		if p.PositionID == positionID {
			e.openPositions = append(e.openPositions[:i], e.openPositions[i+1:]...)
			e.closedPositions = append(e.closedPositions, p)
			e.sink.PublishPosition(ctx, p)
			break
		}
	}
	return nil
}

// GetPositions returns a snapshot of open positions.
func (e *SimulatedExecutor) GetPositions(ctx context.Context) ([]domain.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Position, len(e.openPositions))
	copy(out, e.openPositions)
	return out, nil
}

// PendingOrders, OpenPositions, ClosedPositions, and Trades are the
// simulated-only read-only side channel used by the orchestrator's metrics
// reduction and by tests.

func (e *SimulatedExecutor) PendingOrders() []domain.PendingOrder {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.PendingOrder, len(e.pendingOrders))
	copy(out, e.pendingOrders)
	return out
}

func (e *SimulatedExecutor) OpenPositions() []domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Position, len(e.openPositions))
	copy(out, e.openPositions)
	return out
}

func (e *SimulatedExecutor) ClosedPositions() []domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Position, len(e.closedPositions))
	copy(out, e.closedPositions)
	return out
}

func (e *SimulatedExecutor) Trades() []domain.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// ProcessBar runs the two-phase fill-then-exit pass for bar: fill pending
// orders at this bar's open, then evaluate SL/TP against this bar's range.
// Called by the orchestrator before the trading engine's OnBarClosed for
// the same bar.
func (e *SimulatedExecutor) ProcessBar(ctx context.Context, bar domain.Bar) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.fillPendingOrders(ctx, bar)
	e.evaluateExits(ctx, bar)
}

func (e *SimulatedExecutor) fillPendingOrders(ctx context.Context, bar domain.Bar) {
	remaining := e.pendingOrders[:0:0]
	for _, p := range e.pendingOrders {
		if p.SymbolID != bar.SymbolID {
			remaining = append(remaining, p)
			continue
		}

		fillPrice := bar.Open
		if p.Side == domain.Buy {
			fillPrice += e.settings.SpreadPoints
		}
		now := e.clock.UnixSeconds()

		position := domain.Position{
			PositionID:        p.OrderID,
			SymbolID:          p.SymbolID,
			Side:              p.Side,
			Volume:            p.Volume,
			EntryPrice:        fillPrice,
			StopLoss:          p.StopLoss,
			TakeProfit:        p.TakeProfit,
			EntryBarTimestamp: bar.Timestamp,
			OpenedAt:          now,
		}
		e.openPositions = append(e.openPositions, position)

		trade := domain.Trade{
			TradeID:    uuid.NewString(),
			OrderID:    p.OrderID,
			SymbolID:   p.SymbolID,
			Side:       p.Side,
			Volume:     p.Volume,
			Price:      fillPrice,
			Commission: domain.NewMoney(e.settings.CommissionPerLot*p.Volume.Float64(), e.settings.AccountCurrency),
			ExecutedAt: now,
		}
		e.trades = append(e.trades, trade)
		e.sink.PublishTrade(ctx, trade)
		e.sink.PublishPosition(ctx, position)
	}
	e.pendingOrders = remaining
}

func (e *SimulatedExecutor) evaluateExits(ctx context.Context, bar domain.Bar) {
	spread := e.settings.SpreadPoints
	slippage := e.settings.SlippagePoints

	survivors := e.openPositions[:0:0]
	for _, pos := range e.openPositions {
		if pos.SymbolID != bar.SymbolID {
			survivors = append(survivors, pos)
			continue
		}
		// T+1 rule: a bar at or before the entry bar can never close it.
		if bar.Timestamp <= pos.EntryBarTimestamp {
			survivors = append(survivors, pos)
			continue
		}

		exitPrice, reason, closed := e.checkExit(pos, bar, spread, slippage)
		if !closed {
			survivors = append(survivors, pos)
			continue
		}

		e.closedPositions = append(e.closedPositions, pos)
		trade := domain.Trade{
			TradeID:    uuid.NewString(),
			OrderID:    pos.PositionID,
			SymbolID:   pos.SymbolID,
			Side:       pos.Side.Opposite(),
			Volume:     pos.Volume,
			Price:      exitPrice,
			Commission: domain.NewMoney(e.settings.CommissionPerLot*pos.Volume.Float64(), e.settings.AccountCurrency),
			ExecutedAt: e.clock.UnixSeconds(),
		}
		e.trades = append(e.trades, trade)
		e.sink.PublishTrade(ctx, trade)
		e.sink.PublishPosition(ctx, pos)
		e.sink.PublishEngineStatus(ctx, fmt.Sprintf("Position %s closed on %s at %.5f", pos.PositionID, reason, exitPrice))
	}
	e.openPositions = survivors
}

// checkExit applies the per-side SL/TP exit logic. SL is checked before
// TP; a bar range covering both closes on the stop.
func (e *SimulatedExecutor) checkExit(pos domain.Position, bar domain.Bar, spread, slippage float64) (exitPrice float64, reason string, closed bool) {
	if pos.Side == domain.Buy {
		bidLow := bar.Low - spread
		bidHigh := bar.High - spread
		if pos.StopLoss != nil && bidLow <= *pos.StopLoss {
			return *pos.StopLoss - slippage, "SL", true
		}
		if pos.TakeProfit != nil && bidHigh >= *pos.TakeProfit {
			return *pos.TakeProfit, "TP", true
		}
		return 0, "", false
	}

	askLow := bar.Low + spread
	askHigh := bar.High + spread
	if pos.StopLoss != nil && askHigh >= *pos.StopLoss {
		return *pos.StopLoss + slippage, "SL", true
	}
	if pos.TakeProfit != nil && askLow <= *pos.TakeProfit {
		return *pos.TakeProfit, "TP", true
	}
	return 0, "", false
}
