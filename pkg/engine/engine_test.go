package engine

import (
	"context"
	"testing"
	"time"

	"github.com/barforge/engine/pkg/clock"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/eventsink"
	"github.com/barforge/engine/pkg/execution"
	"github.com/barforge/engine/pkg/strategies"
)

type fixedBalance struct{ balance domain.Money }

func (f fixedBalance) AccountBalance() domain.Money { return f.balance }

func newTestEngine(t *testing.T) (*Engine, *execution.SimulatedExecutor, *clock.ClockController) {
	t.Helper()
	c, ctl := clock.NewSimClock(time.Unix(1705315000, 0).UTC())
	exec := execution.NewSimulatedExecutor(c, execution.DefaultBacktestSettings(), eventsink.NullSink{})
	e := New(exec, c, eventsink.NullSink{}, domain.NewPipTable(0.0001), fixedBalance{balance: domain.NewMoney(10000, "USD")})
	return e, exec, ctl
}

func bar(ts int64, symbol domain.SymbolID, tf domain.Timeframe, o, h, l, c float64) domain.Bar {
	return domain.Bar{SymbolID: symbol, Timeframe: tf, Timestamp: ts, Open: o, High: h, Low: l, Close: c}
}

func TestCache_ChronologyAndCap(t *testing.T) {
	c := newCache()
	for i := int64(1); i <= 1005; i++ {
		ok := c.append(bar(i, 1, domain.M5, 1, 1.1, 0.9, 1))
		if !ok {
			t.Fatalf("expected strictly increasing timestamp %d to append", i)
		}
	}
	if got := c.count(1, domain.M5); got != maxBarsPerSeries {
		t.Fatalf("expected cache capped at %d, got %d", maxBarsPerSeries, got)
	}
	last, ok := c.lastN(1, domain.M5, 1)
	if !ok || last[0].Timestamp != 1005 {
		t.Fatalf("expected the latest bar (1005) to survive eviction, got %+v ok=%v", last, ok)
	}
}

func TestCache_DuplicateTimestampIsDropped(t *testing.T) {
	c := newCache()
	c.append(bar(10, 1, domain.M5, 1, 1, 1, 1))
	if c.append(bar(10, 1, domain.M5, 1, 1, 1, 1)) {
		t.Error("expected a duplicate timestamp to be rejected")
	}
	if c.append(bar(5, 1, domain.M5, 1, 1, 1, 1)) {
		t.Error("expected an out-of-order timestamp to be rejected")
	}
	if got := c.count(1, domain.M5); got != 1 {
		t.Errorf("expected exactly one retained bar, got %d", got)
	}
}

func TestEngine_OnBarClosed_DispatchesToMatchingStrategyAndPlacesOrder(t *testing.T) {
	e, exec, ctl := newTestEngine(t)
	s, err := strategies.NewBuyOnFirstBar(domain.StrategyDefinition{Name: "BuyOnFirstBar", MainTimeframe: domain.M5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.RegisterStrategy(s)

	b := bar(1705315500, 1, domain.M5, 1.1000, 1.1010, 1.0990, 1.1005)
	ctl.AdvanceTo(time.Unix(b.Timestamp, 0).UTC())
	e.OnBarClosed(context.Background(), b)

	if got := e.CachedBarCount(1, domain.M5); got != 1 {
		t.Fatalf("expected one cached bar, got %d", got)
	}
	if len(exec.PendingOrders()) != 1 {
		t.Fatalf("expected the strategy's Buy signal to place one order, got %d", len(exec.PendingOrders()))
	}
}

func TestEngine_OnBarClosed_SkipsStrategyOnDifferentTimeframe(t *testing.T) {
	e, exec, ctl := newTestEngine(t)
	s, _ := strategies.NewBuyOnFirstBar(domain.StrategyDefinition{Name: "BuyOnFirstBar", MainTimeframe: domain.H1})
	e.RegisterStrategy(s)

	b := bar(1705315500, 1, domain.M5, 1.1, 1.1, 1.1, 1.1)
	ctl.AdvanceTo(time.Unix(b.Timestamp, 0).UTC())
	e.OnBarClosed(context.Background(), b)

	if len(exec.PendingOrders()) != 0 {
		t.Errorf("expected no order for a non-matching main timeframe, got %d", len(exec.PendingOrders()))
	}
}

func TestEngine_OnBarClosed_InsufficientHistoryIsASilentSkip(t *testing.T) {
	e, exec, ctl := newTestEngine(t)
	s, _ := strategies.NewBuyOnFirstBar(domain.StrategyDefinition{
		Name:               "needs-3",
		MainTimeframe:      domain.M5,
		RequiredTimeframes: map[domain.Timeframe]int{domain.M5: 3},
	})
	e.RegisterStrategy(s)

	b := bar(1705315500, 1, domain.M5, 1.1, 1.1, 1.1, 1.1)
	ctl.AdvanceTo(time.Unix(b.Timestamp, 0).UTC())
	e.OnBarClosed(context.Background(), b)

	if len(exec.PendingOrders()) != 0 {
		t.Errorf("expected insufficient history to suppress evaluation, got %d orders", len(exec.PendingOrders()))
	}
}

func TestEngine_OnBarClosed_DefinitionRiskBlockDrivesTheEmittedOrder(t *testing.T) {
	e, exec, ctl := newTestEngine(t)
	s, err := strategies.NewRiskManagedBuyOnFirstBar(domain.StrategyDefinition{
		Name:          "BuyOnFirstBar",
		MainTimeframe: domain.M5,
		Risk: domain.RiskConfig{
			StopLoss:       domain.RiskBlock{TypeTag: "FixedPips", Parameters: map[string]any{"pips": 50.0}},
			TakeProfit:     domain.RiskBlock{TypeTag: "RiskReward", Parameters: map[string]any{"ratio": 3.0}},
			PositionSizing: domain.RiskBlock{TypeTag: "FixedLot", Parameters: map[string]any{"lots": 0.5}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.RegisterStrategy(s)

	b := bar(1705315500, 1, domain.M5, 1.1000, 1.1010, 1.0990, 1.1005)
	ctl.AdvanceTo(time.Unix(b.Timestamp, 0).UTC())
	e.OnBarClosed(context.Background(), b)

	orders := exec.PendingOrders()
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
	order := orders[0]

	if got := order.Volume.Float64(); got != 0.5 {
		t.Errorf("expected the definition's FixedLot 0.5 to size the order, got %v", got)
	}

	pipSize := domain.NewPipTable(0.0001).PipSize(1)
	wantSL := b.Close - 50*pipSize
	wantTP := b.Close + 150*pipSize // RiskReward ratio 3 over a 50-pip stop
	if order.StopLoss == nil || *order.StopLoss != wantSL {
		t.Errorf("expected stop-loss %v from the definition's 50-pip risk block, got %v", wantSL, order.StopLoss)
	}
	if order.TakeProfit == nil || *order.TakeProfit != wantTP {
		t.Errorf("expected take-profit %v from the definition's risk-reward block, got %v", wantTP, order.TakeProfit)
	}
}

func TestEngine_OnBarClosed_DuplicateBarIsIdempotent(t *testing.T) {
	e, exec, ctl := newTestEngine(t)
	s, _ := strategies.NewBuyOnFirstBar(domain.StrategyDefinition{Name: "BuyOnFirstBar", MainTimeframe: domain.M5})
	e.RegisterStrategy(s)

	b := bar(1705315500, 1, domain.M5, 1.1, 1.1, 1.1, 1.1)
	ctl.AdvanceTo(time.Unix(b.Timestamp, 0).UTC())
	e.OnBarClosed(context.Background(), b)
	e.OnBarClosed(context.Background(), b)

	if got := e.CachedBarCount(1, domain.M5); got != 1 {
		t.Errorf("expected cache size unchanged after redelivery, got %d", got)
	}
	if len(exec.PendingOrders()) != 1 {
		t.Errorf("expected order count unchanged after redelivery, got %d", len(exec.PendingOrders()))
	}
}
