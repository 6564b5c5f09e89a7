package walkforward_test

import (
	"context"
	"testing"
	"time"

	"github.com/barforge/engine/pkg/backtest"
	"github.com/barforge/engine/pkg/domain"
	"github.com/barforge/engine/pkg/execution"
	"github.com/barforge/engine/pkg/strategies"
	"github.com/barforge/engine/pkg/walkforward"
)

type fakeCatalog struct {
	bars []domain.Bar
}

func (c fakeCatalog) GetHistory(ctx context.Context, symbol domain.SymbolID, tf domain.Timeframe, from, to time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for _, b := range c.bars {
		if b.SymbolID != symbol || b.Timeframe != tf {
			continue
		}
		ts := time.Unix(b.Timestamp, 0).UTC()
		if ts.Before(from) || ts.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// dailyBars generates n daily M5-tagged bars (the M5 label is irrelevant to
// the math here; only chronology matters) on a gentle uptrend so that
// BuyOnFirstBar has something to act on.
func dailyBars(symbol domain.SymbolID, start time.Time, n int) []domain.Bar {
	var bars []domain.Bar
	price := 100.0
	for i := 0; i < n; i++ {
		price += 0.05
		bars = append(bars, domain.Bar{
			SymbolID:  symbol,
			Timeframe: domain.M5,
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour).Unix(),
			Open:      price - 0.03,
			High:      price + 0.10,
			Low:       price - 0.15,
			Close:     price,
			Volume:    500000,
		})
	}
	return bars
}

func newTestEngine(bars []domain.Bar) *walkforward.Engine {
	registry := strategies.NewDefaultRegistry()
	catalog := fakeCatalog{bars: bars}
	orch := backtest.New(registry, catalog, execution.DefaultBacktestSettings(), domain.NewPipTable(0.0001))
	return walkforward.New(orch)
}

// buildWindows is unexported, so this test re-derives the window count with
// the same sliding rule (each window advances by the OOS period) rather than
// calling it.
func TestWindowSliding_PeriodArithmetic(t *testing.T) {
	is := 252 * 24 * time.Hour
	oos := 63 * 24 * time.Hour
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(is + 3*oos)

	windowCount := 0
	for cursor := start; ; {
		isEnd := cursor.Add(is)
		oosEnd := isEnd.Add(oos)
		if oosEnd.After(end) {
			break
		}
		windowCount++
		cursor = cursor.Add(oos)
	}
	if windowCount < 2 {
		t.Errorf("expected at least 2 windows, counted %d", windowCount)
	}
}

func TestEngine_Run_ReturnsResult(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(1, start, 600)
	eng := newTestEngine(bars)

	result, err := eng.Run(context.Background(), walkforward.Config{
		StrategyName: "BuyOnFirstBar",
		Symbols:      []domain.SymbolID{1},
		FullStart:    start,
		FullEnd:      start.Add(500 * 24 * time.Hour),
		ISPeriod:     252 * 24 * time.Hour,
		OOSPeriod:    63 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Windows) == 0 {
		t.Error("expected at least one window result")
	}
	if result.WFER != result.WFER {
		t.Error("WFER is NaN")
	}
	if result.PassRate < 0 || result.PassRate > 1 {
		t.Errorf("PassRate out of [0,1]: %f", result.PassRate)
	}
	if result.StabilityScore < 0 || result.StabilityScore > 1 {
		t.Errorf("StabilityScore out of [0,1]: %f", result.StabilityScore)
	}
}

func TestEngine_Run_RangeTooShortReturnsError(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(1, start, 20)
	eng := newTestEngine(bars)

	_, err := eng.Run(context.Background(), walkforward.Config{
		StrategyName: "BuyOnFirstBar",
		Symbols:      []domain.SymbolID{1},
		FullStart:    start,
		FullEnd:      start.Add(10 * 24 * time.Hour),
		ISPeriod:     252 * 24 * time.Hour,
		OOSPeriod:    63 * 24 * time.Hour,
	})
	if err == nil {
		t.Fatal("expected error for a range too short to form any window")
	}
}

func TestWFERVerdict(t *testing.T) {
	tests := []struct {
		wfer    float64
		contain string
	}{
		{0.8, "EXCELLENT"},
		{0.6, "GOOD"},
		{0.2, "MARGINAL"},
		{-0.3, "FAIL"},
	}
	for _, tc := range tests {
		r := &walkforward.Result{WFER: tc.wfer}
		v := walkforward.WFERVerdict(r)
		if len(v) < len(tc.contain) || v[:len(tc.contain)] != tc.contain {
			t.Errorf("WFER=%.1f: got %q, want prefix %q", tc.wfer, v, tc.contain)
		}
	}
}
