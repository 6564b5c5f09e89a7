package execution

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/barforge/engine/pkg/clock"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/eventsink"
)

func newTestExecutor(t *testing.T) (*SimulatedExecutor, *clock.ClockController) {
	t.Helper()
	c, ctl := clock.NewSimClock(time.Unix(1705315000, 0).UTC())
	return NewSimulatedExecutor(c, DefaultBacktestSettings(), eventsink.NullSink{}), ctl
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptr(f float64) *float64 { return &f }

// S1 — entry fill at open + spread.
func TestSimulatedExecutor_S1_EntryFillAtOpenPlusSpread(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Buy, Type: domain.Market, Volume: domain.NewQuantity(0.01)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0990, Close: 1.1005}
	if err := ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.ProcessBar(ctx, b1)

	open := e.OpenPositions()
	if len(open) != 1 {
		t.Fatalf("expected one open position, got %d", len(open))
	}
	if !almostEqual(open[0].EntryPrice, 1.1004) {
		t.Errorf("expected entry price 1.1004, got %v", open[0].EntryPrice)
	}
	if len(e.Trades()) != 1 {
		t.Fatalf("expected one entry trade, got %d", len(e.Trades()))
	}
	if len(e.ClosedPositions()) != 0 {
		t.Errorf("expected no exit on the entry bar, got %d closed", len(e.ClosedPositions()))
	}
}

// S2 — T+1 stop does not trigger on the entry bar.
func TestSimulatedExecutor_S2_T1StopDoesNotTriggerOnEntryBar(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	sl := 1.0950
	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Buy, Type: domain.Market, Volume: domain.NewQuantity(0.01), StopLoss: &sl}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0900, Close: 1.1000}
	if err := ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.ProcessBar(ctx, b1)

	if len(e.OpenPositions()) != 1 {
		t.Fatalf("expected exactly one open position, got %d", len(e.OpenPositions()))
	}
	if len(e.ClosedPositions()) != 0 {
		t.Fatalf("expected zero closed positions on the entry bar even though the range covers the stop, got %d", len(e.ClosedPositions()))
	}
}

// S3 — long SL on a subsequent bar, with slippage.
func TestSimulatedExecutor_S3_LongStopLossWithSlippage(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	sl := 1.0950
	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Buy, Type: domain.Market, Volume: domain.NewQuantity(0.01), StopLoss: &sl}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0995, Close: 1.1000}
	ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b1)

	b2 := domain.Bar{SymbolID: 1, Timestamp: 1705315800, Open: 1.0980, High: 1.0985, Low: 1.0940, Close: 1.0960}
	ctl.AdvanceTo(time.Unix(b2.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b2)

	closed := e.ClosedPositions()
	if len(closed) != 1 {
		t.Fatalf("expected one closed position, got %d", len(closed))
	}
	trades := e.Trades()
	exit := trades[len(trades)-1]
	if !almostEqual(exit.Price, 1.0949) {
		t.Errorf("expected exit price ~1.0949, got %v", exit.Price)
	}
	if exit.OrderID != closed[0].PositionID {
		t.Errorf("expected closing trade's OrderID to equal the position id (linkage convention), got %q vs %q", exit.OrderID, closed[0].PositionID)
	}
	if exit.Side != domain.Sell {
		t.Errorf("expected closing trade on the opposite side, got %v", exit.Side)
	}
}

// S4 — short SL on ask-high.
func TestSimulatedExecutor_S4_ShortStopLossOnAskHigh(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	sl := 1.1050
	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Sell, Type: domain.Market, Volume: domain.NewQuantity(0.01), StopLoss: &sl}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0995, Close: 1.1000}
	ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b1)

	b2 := domain.Bar{SymbolID: 1, Timestamp: 1705315800, Open: 1.1020, High: 1.1060, Low: 1.1010, Close: 1.1040}
	ctl.AdvanceTo(time.Unix(b2.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b2)

	trades := e.Trades()
	exit := trades[len(trades)-1]
	if !almostEqual(exit.Price, 1.1051) {
		t.Errorf("expected exit price ~1.1051, got %v", exit.Price)
	}
}

// S5 — long TP, no slippage, exact price.
func TestSimulatedExecutor_S5_LongTakeProfit(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	tp := 1.1100
	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Buy, Type: domain.Market, Volume: domain.NewQuantity(0.01), TakeProfit: &tp}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0995, Close: 1.1000}
	ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b1)

	b2 := domain.Bar{SymbolID: 1, Timestamp: 1705315800, Open: 1.1050, High: 1.1150, Low: 1.1040, Close: 1.1100}
	ctl.AdvanceTo(time.Unix(b2.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b2)

	trades := e.Trades()
	exit := trades[len(trades)-1]
	if exit.Price != 1.1100 {
		t.Errorf("expected exact exit price 1.11, got %v", exit.Price)
	}
}

// S6 — short TP, exact price.
func TestSimulatedExecutor_S6_ShortTakeProfit(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	tp := 1.0900
	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Sell, Type: domain.Market, Volume: domain.NewQuantity(0.01), TakeProfit: &tp}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0995, Close: 1.1000}
	ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b1)

	b2 := domain.Bar{SymbolID: 1, Timestamp: 1705315800, Open: 1.0950, High: 1.0970, Low: 1.0850, Close: 1.0900}
	ctl.AdvanceTo(time.Unix(b2.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b2)

	trades := e.Trades()
	exit := trades[len(trades)-1]
	if exit.Price != 1.0900 {
		t.Errorf("expected exact exit price 1.09, got %v", exit.Price)
	}
}

func TestSimulatedExecutor_Commission(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Buy, Type: domain.Market, Volume: domain.NewQuantity(0.5)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0995, Close: 1.1000}
	ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b1)

	trades := e.Trades()
	if !almostEqual(trades[0].Commission.Amount.InexactFloat64(), 1.5) {
		t.Errorf("expected commission 3.0*0.5=1.5, got %v", trades[0].Commission.Amount)
	}
}

func TestSimulatedExecutor_ModifyOrder_RejectsUnknownOrUnpendingID(t *testing.T) {
	e, _ := newTestExecutor(t)
	ctx := context.Background()
	if _, err := e.ModifyOrder(ctx, "does-not-exist", ptr(1.0), nil); err == nil {
		t.Error("expected an error for an unknown order id")
	}
}

func TestSimulatedExecutor_CancelAndClose_AreIdempotentOnUnknownIDs(t *testing.T) {
	e, _ := newTestExecutor(t)
	ctx := context.Background()
	if err := e.CancelOrder(ctx, "missing"); err != nil {
		t.Errorf("expected idempotent no-op, got %v", err)
	}
	if err := e.ClosePosition(ctx, "missing"); err != nil {
		t.Errorf("expected idempotent no-op, got %v", err)
	}
}

func TestSimulatedExecutor_DuplicateBar_DoesNotDoubleFill(t *testing.T) {
	e, ctl := newTestExecutor(t)
	ctx := context.Background()

	if _, err := e.PlaceOrder(ctx, PlaceOrderRequest{SymbolID: 1, Side: domain.Buy, Type: domain.Market, Volume: domain.NewQuantity(0.01)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b1 := domain.Bar{SymbolID: 1, Timestamp: 1705315500, Open: 1.1000, High: 1.1010, Low: 1.0995, Close: 1.1000}
	ctl.AdvanceTo(time.Unix(b1.Timestamp, 0).UTC())
	e.ProcessBar(ctx, b1)
	// Redelivering the same bar must be a no-op: no more pending orders to fill.
	e.ProcessBar(ctx, b1)

	if len(e.OpenPositions()) != 1 {
		t.Fatalf("expected exactly one open position after redelivery, got %d", len(e.OpenPositions()))
	}
	if len(e.Trades()) != 1 {
		t.Fatalf("expected exactly one trade after redelivery, got %d", len(e.Trades()))
	}
}
