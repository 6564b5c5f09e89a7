package backtest

import (
	"sort"

	"github.com/barforge/engine/pkg/domain"
)

// closedPositionPnL is one entry+exit trade pair reduced to a realized P&L.
type closedPositionPnL struct {
	pnl      float64
	closedAt int64
}

// Metrics is the standard set of trading statistics the orchestrator
// computes from a run's closed-position trades.
type Metrics struct {
	TotalTrades        int
	WinningTrades      int
	LosingTrades       int
	GrossProfit        float64
	GrossLoss          float64
	ProfitFactor       float64
	WinRate            float64
	MaxDrawdownPercent float64
	InitialBalance     float64
	FinalBalance       float64
	EquityCurve        []float64
}

// positionPnL computes one closed position's realized P&L from its entry
// and exit trades, net of both commissions.
func positionPnL(entry, exit domain.Trade) float64 {
	var pnl float64
	if entry.Side == domain.Buy {
		pnl = (exit.Price - entry.Price) * entry.Volume.Float64()
	} else {
		pnl = (entry.Price - exit.Price) * entry.Volume.Float64()
	}
	return pnl - entry.Commission.Float64() - exit.Commission.Float64()
}

// ReduceMetrics groups trades by OrderID (the closing-trade linkage
// convention) into entry+exit pairs and computes the standard aggregate
// statistics.
func ReduceMetrics(trades []domain.Trade, initialBalance float64) Metrics {
	groups := make(map[string][]domain.Trade)
	for _, t := range trades {
		groups[t.OrderID] = append(groups[t.OrderID], t)
	}

	var pairs []closedPositionPnL
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		sort.Slice(g, func(i, j int) bool { return g[i].ExecutedAt < g[j].ExecutedAt })
		entry, exit := g[0], g[len(g)-1]

		pairs = append(pairs, closedPositionPnL{pnl: positionPnL(entry, exit), closedAt: exit.ExecutedAt})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].closedAt < pairs[j].closedAt })

	m := Metrics{InitialBalance: initialBalance}
	equity := initialBalance
	peak := initialBalance
	m.EquityCurve = append(m.EquityCurve, equity)

	for _, p := range pairs {
		m.TotalTrades++
		if p.pnl > 0 {
			m.WinningTrades++
			m.GrossProfit += p.pnl
		} else {
			m.LosingTrades++
			m.GrossLoss += -p.pnl
		}
		equity += p.pnl
		m.EquityCurve = append(m.EquityCurve, equity)
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > m.MaxDrawdownPercent {
				m.MaxDrawdownPercent = dd
			}
		}
	}
	m.MaxDrawdownPercent *= 100

	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	m.FinalBalance = equity
	return m
}
